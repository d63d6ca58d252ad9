package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"flowbridge/pkg/logging"
)

// Environment variables recognized as overrides. Each one overlays the
// corresponding file setting when set.
const (
	EnvCoreAPI        = "FLOWBRIDGE_CORE_API"
	EnvStartAPI       = "FLOWBRIDGE_START_API"
	EnvToken          = "FLOWBRIDGE_TOKEN"
	EnvTimeoutSeconds = "FLOWBRIDGE_TIMEOUT_SECONDS"
	EnvHost           = "FLOWBRIDGE_HOST"
	EnvPort           = "FLOWBRIDGE_PORT"
	EnvTransport      = "FLOWBRIDGE_TRANSPORT"
)

// LoadSettings builds the effective configuration: defaults, overlaid with
// the YAML file at path when one exists, overlaid with the environment.
// The result is validated; any problem is returned as a startup error.
//
// An empty path skips the file layer entirely. A non-empty path that does
// not exist is not an error, so a default path can be passed unconditionally.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		if err := loadFile(path, &settings); err != nil {
			return Settings{}, err
		}
	}

	applyEnvironment(&settings)

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func loadFile(path string, settings *Settings) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logging.Debug("Config", "No configuration file at %s, using defaults and environment", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading configuration file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return fmt.Errorf("parsing configuration file %s: %w", path, err)
	}
	logging.Debug("Config", "Loaded configuration from %s", path)
	return nil
}

func applyEnvironment(settings *Settings) {
	if v := os.Getenv(EnvCoreAPI); v != "" {
		settings.Platform.CoreAPI = v
	}
	if v := os.Getenv(EnvStartAPI); v != "" {
		settings.Platform.StartAPI = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		settings.Platform.Token = v
	}
	if v := os.Getenv(EnvTimeoutSeconds); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			settings.Platform.TimeoutSeconds = seconds
		} else {
			logging.Warn("Config", "Ignoring non-numeric %s=%q", EnvTimeoutSeconds, v)
		}
	}
	if v := os.Getenv(EnvHost); v != "" {
		settings.Server.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			settings.Server.Port = port
		} else {
			logging.Warn("Config", "Ignoring non-numeric %s=%q", EnvPort, v)
		}
	}
	if v := os.Getenv(EnvTransport); v != "" {
		settings.Server.Transport = Transport(v)
	}
}
