package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"annodocs/internal/config"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteDocument writes an export built from blocks to the configured
// document path and returns that path.
func WriteDocument(t testing.TB, cfg *config.Config, blocks ...string) string {
	t.Helper()

	WriteFile(t, cfg.Paths.Document, HTML(blocks...))
	return cfg.Paths.Document
}

// ReadFile returns the content at path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
