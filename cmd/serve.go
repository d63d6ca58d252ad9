package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"flowbridge/internal/app"

	"github.com/spf13/cobra"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveSilent suppresses log output. Useful with stdio transport when the
// driver captures stderr.
var serveSilent bool

// serveConfigPath specifies the configuration file to load. When empty,
// settings come from defaults and the environment only.
var serveConfigPath string

// serveCmd starts the flowbridge MCP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the flowbridge MCP server",
	Long: `Starts the MCP server exposing the flowbridge tool catalogue.

The transport (stdio, sse, or streamable-http), the platform endpoints,
and the authentication token come from the configuration file and the
FLOWBRIDGE_* environment variables. The server runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveConfigPath, serveDebug, serveSilent)

	application, err := app.NewApplication(cfg, GetVersion())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveSilent, "silent", false, "Suppress log output")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Configuration file path")
}
