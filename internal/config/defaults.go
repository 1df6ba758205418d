package config

const (
	defaultConfigPath          = "~/.config/annodocs/config.toml"
	projectConfigName          = "annodocs.toml"
	defaultOutputDir           = "~/.local/share/annodocs/www"
	defaultStateDir            = "~/.local/share/annodocs"
	defaultSpeakerClass        = "speaker"
	defaultPollIntervalSeconds = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"

	// DocumentEnv overrides paths.document when the file leaves it empty.
	DocumentEnv = "ANNODOCS_DOCUMENT"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Directories: Directories{
			DefaultSpeakerClass: defaultSpeakerClass,
		},
		Render: Render{
			Embeds:    true,
			ShareList: true,
		},
		Watch: Watch{
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
