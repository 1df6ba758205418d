package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"annodocs/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndUsesEnvDocument(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.DocumentEnv, "~/debate.html")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "annodocs", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, "debate.html"); cfg.Paths.Document != want {
		t.Fatalf("document: got %q want %q", cfg.Paths.Document, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "annodocs", "www"); cfg.Paths.OutputDir != want {
		t.Fatalf("output dir: got %q want %q", cfg.Paths.OutputDir, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "annodocs", "annodocs.db"); cfg.DatabasePath() != want {
		t.Fatalf("database path: got %q want %q", cfg.DatabasePath(), want)
	}
	if cfg.Directories.DefaultSpeakerClass != "speaker" {
		t.Fatalf("unexpected default speaker class %q", cfg.Directories.DefaultSpeakerClass)
	}
	if !cfg.Render.Embeds || !cfg.Render.ShareList {
		t.Fatal("expected embeds and share list enabled by default")
	}
	if cfg.PollInterval().Seconds() != 10 {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval())
	}
}

func TestLoadReadsFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "annodocs.toml")
	content := `
[paths]
document = "` + filepath.Join(dir, "doc.html") + `"
output_dir = "` + filepath.Join(dir, "www") + `"
state_dir = "` + filepath.Join(dir, "state") + `"

[directories]
speakers = "` + filepath.Join(dir, "speakers.yaml") + `"
default_speaker_class = "  speaker   moderator "

[watch]
poll_interval_seconds = 3

[logging]
format = "JSON"
level = " Debug "
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %q, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Directories.DefaultSpeakerClass != "speaker moderator" {
		t.Fatalf("speaker class not normalized: %q", cfg.Directories.DefaultSpeakerClass)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.Watch.PollIntervalSeconds != 3 {
		t.Fatalf("poll interval = %d", cfg.Watch.PollIntervalSeconds)
	}
	if doc, err := cfg.RequireDocument(); err != nil || doc != filepath.Join(dir, "doc.html") {
		t.Fatalf("RequireDocument = (%q, %v)", doc, err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"poll interval": "[watch]\npoll_interval_seconds = 0\n",
		"log format":    "[logging]\nformat = \"xml\"\n",
		"log level":     "[logging]\nlevel = \"verbose\"\n",
		"directory ext": "[directories]\nauthors = \"/tmp/authors.json\"\n",
		"unknown key":   "[paths]\nstaging_dir = \"/tmp\"\n",
		"same dirs":     "[paths]\noutput_dir = \"/tmp/x\"\nstate_dir = \"/tmp/x\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected Load to fail")
			}
		})
	}
}

func TestRequireDocumentExplainsMissingPath(t *testing.T) {
	t.Setenv(config.DocumentEnv, "")
	cfg := config.Default()
	_, err := cfg.RequireDocument()
	if err == nil || !strings.Contains(err.Error(), config.DocumentEnv) {
		t.Fatalf("expected hint mentioning %s, got %v", config.DocumentEnv, err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	want := config.Default()
	if decoded.Watch != want.Watch || decoded.Logging != want.Logging || decoded.Render != want.Render {
		t.Fatalf("sample drifted from defaults: %+v", decoded)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("Load(sample): %v", err)
	}
}
