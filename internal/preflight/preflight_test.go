package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"annodocs/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_Creatable(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope", "deeper"))
	if !result.Passed {
		t.Fatalf("expected missing dir under writable parent to pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	result = CheckDirectoryAccess("test", filepath.Join(f, "child"))
	if result.Passed {
		t.Fatal("expected failure when parent is a file")
	}
}

func TestCheckDirectoryAccess_Empty(t *testing.T) {
	if CheckDirectoryAccess("test", "").Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckDocument(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.html")
	if err := os.WriteFile(doc, []byte("<html><body><p>a</p><p>b</p></body></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := CheckDocument(doc)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "2 blocks") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}

	if CheckDocument("").Passed {
		t.Fatal("expected failure when not configured")
	}
	if CheckDocument(filepath.Join(dir, "missing.html")).Passed {
		t.Fatal("expected failure for missing document")
	}
	if CheckDocument(dir).Passed {
		t.Fatal("expected failure for directory")
	}
}

func TestCheckDirectoryFiles(t *testing.T) {
	dir := t.TempDir()
	speakers := filepath.Join(dir, "speakers.csv")
	if err := os.WriteFile(speakers, []byte("name,class\nLESTER HOLT,speaker\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckSpeakers(speakers); !r.Passed || !strings.Contains(r.Detail, "1 speakers") {
		t.Fatalf("unexpected speakers result: %+v", r)
	}

	if r := CheckAuthors(filepath.Join(dir, "authors.json")); r.Passed || !strings.Contains(r.Detail, "unsupported extension") {
		t.Fatalf("unexpected authors result: %+v", r)
	}
	if r := CheckAuthors(filepath.Join(dir, "authors.toml")); r.Passed || !strings.Contains(r.Detail, "does not exist") {
		t.Fatalf("unexpected missing authors result: %+v", r)
	}
}

func TestCheckTemplates(t *testing.T) {
	if r := CheckTemplates(""); !r.Passed {
		t.Fatalf("embedded templates must pass: %s", r.Detail)
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "page.html"), []byte("{{if}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckTemplates(dir); r.Passed {
		t.Fatal("expected broken override to fail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Document = filepath.Join(base, "doc.html")
	cfg.Paths.OutputDir = filepath.Join(base, "www")
	cfg.Paths.StateDir = base
	if err := os.WriteFile(cfg.Paths.Document, []byte("<p>x</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := RunAll(&cfg)
	// document + output + state + templates
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if failed := Failed(results); failed != 0 {
		t.Fatalf("expected all checks to pass, %d failed: %+v", failed, results)
	}
}
