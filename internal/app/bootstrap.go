// Package app bootstraps a flowbridge process: configuration, logging,
// the platform client, the handler registrations, and the MCP server.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"flowbridge/internal/api"
	"flowbridge/internal/config"
	"flowbridge/internal/flowdoc"
	"flowbridge/internal/flowtools"
	"flowbridge/internal/investigate"
	"flowbridge/internal/platform"
	"flowbridge/internal/server"
	"flowbridge/pkg/logging"
)

// Application encapsulates one configured flowbridge instance.
//
// Bootstrap happens in NewApplication: load and validate settings, build
// the platform client, register every handler and tool provider with the
// API layer, and prepare the MCP server. Run then serves until the context
// is cancelled.
type Application struct {
	settings config.Settings
	server   *server.Server
}

// NewApplication creates and initializes an application instance. Any
// configuration problem fails here, at startup, never mid-investigation.
func NewApplication(cfg *Config, version string) (*Application, error) {
	logLevel := logging.LevelInfo
	if cfg.Debug {
		logLevel = logging.LevelDebug
	}

	// Logs go to stderr: with stdio transport, stdout carries the MCP
	// protocol stream.
	var logOutput io.Writer = os.Stderr
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.Init(logLevel, logOutput)

	settings, err := config.LoadSettings(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration")
		return nil, err
	}

	client, err := platform.NewClient(platform.Options{
		CoreURL:  settings.Platform.CoreAPI,
		StartURL: settings.Platform.StartAPI,
		Token:    settings.Platform.Token,
		Timeout:  settings.Platform.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating platform client: %w", err)
	}

	platform.NewAdapter(client).Register()
	flowdoc.NewAdapter().Register()
	investigate.NewAdapter(investigate.NewOrchestrator(client)).Register()
	api.RegisterToolProvider("flowtools", flowtools.NewProvider())

	logging.Info("Bootstrap", "Registered handlers, core API %s, transport %s",
		settings.Platform.CoreAPI, settings.Server.Transport)

	return &Application{
		settings: settings,
		server:   server.New(settings.Server, version),
	}, nil
}

// Settings returns the effective configuration.
func (a *Application) Settings() config.Settings {
	return a.settings
}

// Run serves the MCP tool surface until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.server.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Stop(stopCtx)
}
