package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"annodocs/internal/config"
	"annodocs/internal/directory"
	"annodocs/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = fmt.Errorf("--log-level: %w", err)
					return
				}
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// useDocument applies an optional document argument over the configured
// path and returns the document to read.
func (c *commandContext) useDocument(args []string) (*config.Config, string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		expanded, err := config.ExpandPath(strings.TrimSpace(args[0]))
		if err != nil {
			return nil, "", fmt.Errorf("resolve document path: %w", err)
		}
		cfg.Paths.Document = expanded
	}
	document, err := cfg.RequireDocument()
	if err != nil {
		return nil, "", err
	}
	return cfg, document, nil
}

// commandLogger logs to the command's stderr so stdout stays clean for
// tables and JSON.
func (c *commandContext) commandLogger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
}

func (c *commandContext) directories() (directory.Set, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return directory.Set{}, err
	}
	return directory.Load(cfg.Directories.Speakers, cfg.Directories.Authors, cfg.Directories.DefaultSpeakerClass)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
