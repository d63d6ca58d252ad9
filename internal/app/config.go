package app

// Config carries the command-line options that shape a flowbridge process.
type Config struct {
	// ConfigPath is the configuration file to load. Empty selects
	// environment-only configuration.
	ConfigPath string

	// Debug enables verbose logging.
	Debug bool

	// Silent suppresses log output entirely. Useful for scripted runs
	// where only the MCP traffic matters.
	Silent bool
}

// NewConfig creates an application config from command-line flags.
func NewConfig(configPath string, debug, silent bool) *Config {
	return &Config{
		ConfigPath: configPath,
		Debug:      debug,
		Silent:     silent,
	}
}
