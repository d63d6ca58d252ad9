// Package config defines the flowbridge settings and their loading order:
// built-in defaults, then an optional YAML file, then environment
// variables. Settings are pass-through for the platform client and the
// server transport, validated for presence and shape at startup so a
// misconfiguration fails fast instead of mid-investigation.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Transport selects how the MCP server is exposed.
type Transport string

const (
	TransportStdio          Transport = "stdio"
	TransportSSE            Transport = "sse"
	TransportStreamableHTTP Transport = "streamable-http"
)

const (
	// DefaultPort is the default listen port for HTTP transports.
	DefaultPort = 8092

	// DefaultTimeoutSeconds bounds each platform request.
	DefaultTimeoutSeconds = 20
)

// Settings is the complete flowbridge configuration.
type Settings struct {
	Platform PlatformSettings `yaml:"platform"`
	Server   ServerSettings   `yaml:"server"`
}

// PlatformSettings configures the platform client.
type PlatformSettings struct {
	// CoreAPI is the base URL for reads and flow import.
	CoreAPI string `yaml:"coreApi" validate:"required,url"`

	// StartAPI is the base URL for run triggering. Optional; start_flow
	// fails at call time when unset.
	StartAPI string `yaml:"startApi" validate:"omitempty,url"`

	// Token is the bearer token for both APIs.
	Token string `yaml:"token" validate:"required"`

	// TimeoutSeconds bounds each outbound request.
	TimeoutSeconds int `yaml:"timeoutSeconds" validate:"gte=1,lte=300"`
}

// ServerSettings configures the MCP server transport.
type ServerSettings struct {
	Host      string    `yaml:"host"`
	Port      int       `yaml:"port" validate:"gte=1,lte=65535"`
	Transport Transport `yaml:"transport" validate:"oneof=stdio sse streamable-http"`
}

// Timeout returns the configured platform request timeout as a duration.
func (p PlatformSettings) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// DefaultSettings returns the built-in defaults. The platform section is
// intentionally incomplete; CoreAPI and Token must come from the config
// file or the environment.
func DefaultSettings() Settings {
	return Settings{
		Platform: PlatformSettings{
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Server: ServerSettings{
			Host:      "localhost",
			Port:      DefaultPort,
			Transport: TransportStreamableHTTP,
		},
	}
}

// Validate checks the settings and returns a descriptive error for the
// first problem found. Called once at startup.
func (s Settings) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
			fe := fieldErrors[0]
			return fmt.Errorf("invalid configuration: %s failed %q validation (value %v)",
				fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
