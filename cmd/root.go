package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the flowbridge application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "flowbridge",
	Short: "Assistant-facing automation layer for a workflow platform",
	Long: `flowbridge puts an AI assistant in front of a workflow platform.

It serves a fixed catalogue of MCP tools: building and validating
flow-import documents from natural-language prompts or partial documents,
querying flows and runs, and investigating failures by following logs,
payloads, and alert-flow chains back to the originating flow.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This is called from the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "flowbridge version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
