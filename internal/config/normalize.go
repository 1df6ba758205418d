package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDirectories()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.Document) == "" {
		c.Paths.Document = strings.TrimSpace(os.Getenv(DocumentEnv))
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"paths.document", &c.Paths.Document},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"directories.speakers", &c.Directories.Speakers},
		{"directories.authors", &c.Directories.Authors},
		{"render.templates_dir", &c.Render.TemplatesDir},
	}
	for _, field := range fields {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			*field.value = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeDirectories() {
	c.Directories.DefaultSpeakerClass = strings.Join(strings.Fields(c.Directories.DefaultSpeakerClass), " ")
	if c.Directories.DefaultSpeakerClass == "" {
		c.Directories.DefaultSpeakerClass = defaultSpeakerClass
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
