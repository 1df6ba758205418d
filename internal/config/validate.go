package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable. A missing document path is
// not an error here; commands that need one check it themselves.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDirectories(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.OutputDir == c.Paths.StateDir {
		return errors.New("paths.output_dir and paths.state_dir must differ")
	}
	return nil
}

func (c *Config) validateDirectories() error {
	for name, path := range map[string]string{
		"directories.speakers": c.Directories.Speakers,
		"directories.authors":  c.Directories.Authors,
	} {
		if path == "" {
			continue
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml", ".yaml", ".yml", ".csv":
		default:
			return fmt.Errorf("%s must be a .toml, .yaml, .yml or .csv file, got %q", name, path)
		}
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.PollIntervalSeconds <= 0 {
		return errors.New("watch.poll_interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// RequireDocument reports a helpful error when no document is configured.
func (c *Config) RequireDocument() (string, error) {
	if c.Paths.Document == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return "", fmt.Errorf("paths.document is required. Pass a document argument, set %s, or edit %s (create with 'annodocs config init')", DocumentEnv, defaultPath)
	}
	return c.Paths.Document, nil
}
