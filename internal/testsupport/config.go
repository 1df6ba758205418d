package testsupport

import (
	"path/filepath"
	"testing"

	"annodocs/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The document path points at doc.html inside the temp root; nothing is
// written there until a test does so.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Document = filepath.Join(base, "doc.html")
	cfgVal.Paths.OutputDir = filepath.Join(base, "www")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDirectoryFiles writes the given speaker and author directory contents
// into the temp root and points the config at them. The extension picks
// the format, for example "speakers.toml" or "authors.csv". An empty name
// leaves that directory on its defaults.
func WithDirectoryFiles(speakersName, speakers, authorsName, authors string) ConfigOption {
	return func(b *configBuilder) {
		if speakersName != "" {
			path := filepath.Join(b.baseDir, speakersName)
			WriteFile(b.t, path, speakers)
			b.cfg.Directories.Speakers = path
		}
		if authorsName != "" {
			path := filepath.Join(b.baseDir, authorsName)
			WriteFile(b.t, path, authors)
			b.cfg.Directories.Authors = path
		}
	}
}

// WithTemplatesDir points the renderer at a template override directory.
func WithTemplatesDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.TemplatesDir = dir
	}
}

// WithoutExtras disables the embed pages and the share list.
func WithoutExtras() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Render.Embeds = false
		b.cfg.Render.ShareList = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
