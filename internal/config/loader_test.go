package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
platform:
  coreApi: https://core.example.com/api/v1
  token: file-token
`)

	settings, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "https://core.example.com/api/v1", settings.Platform.CoreAPI)
	assert.Equal(t, "file-token", settings.Platform.Token)
	assert.Equal(t, DefaultTimeoutSeconds, settings.Platform.TimeoutSeconds)
	assert.Equal(t, 20*time.Second, settings.Platform.Timeout())
	assert.Equal(t, TransportStreamableHTTP, settings.Server.Transport)
	assert.Equal(t, DefaultPort, settings.Server.Port)
}

func TestLoadSettings_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
platform:
  coreApi: https://core.example.com/api/v1
  token: file-token
  timeoutSeconds: 30
server:
  transport: sse
`)

	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvStartAPI, "https://start.example.com/api/v1")
	t.Setenv(EnvTimeoutSeconds, "45")
	t.Setenv(EnvTransport, "stdio")

	settings, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", settings.Platform.Token)
	assert.Equal(t, "https://start.example.com/api/v1", settings.Platform.StartAPI)
	assert.Equal(t, 45, settings.Platform.TimeoutSeconds)
	assert.Equal(t, TransportStdio, settings.Server.Transport)
}

func TestLoadSettings_EnvironmentOnly(t *testing.T) {
	t.Setenv(EnvCoreAPI, "https://core.example.com/api/v1")
	t.Setenv(EnvToken, "env-token")

	settings, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "env-token", settings.Platform.Token)
}

func TestLoadSettings_MissingFileIsNotAnError(t *testing.T) {
	t.Setenv(EnvCoreAPI, "https://core.example.com/api/v1")
	t.Setenv(EnvToken, "env-token")

	_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}

func TestLoadSettings_FailsFast(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing token", `
platform:
  coreApi: https://core.example.com/api/v1
`},
		{"missing core api", `
platform:
  token: t
`},
		{"malformed core api", `
platform:
  coreApi: not a url
  token: t
`},
		{"unknown transport", `
platform:
  coreApi: https://core.example.com/api/v1
  token: t
server:
  transport: carrier-pigeon
`},
		{"timeout out of range", `
platform:
  coreApi: https://core.example.com/api/v1
  token: t
  timeoutSeconds: 0
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoadSettings_MalformedYAML(t *testing.T) {
	_, err := LoadSettings(writeConfig(t, "platform: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing configuration file")
}
