package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expectedbehaviors/organizr-tab-controller/internal/app"
)

// serveConfigPath points at the optional YAML config file. Environment
// variables override whatever the file provides.
var serveConfigPath string

// serveCmd starts the controller: watch streams, the reconciliation
// loop, and (when enabled) leader election.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the controller",
	Long: `Starts the controller loop: connects to the Kubernetes API, begins
watching the configured resource types for the opt-in annotation, and
reconciles the Organizr dashboard's tabs on every change and on a
periodic timer.

Configuration is resolved from the config file (--config), then
ORGANIZR_* environment variables, then the mounted API key secret.
At minimum the Organizr URL and an API key must be provided.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := app.NewApplication(serveConfigPath)
	if err != nil {
		return &ConfigError{Err: fmt.Errorf("failed to initialize: %w", err)}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config", "/etc/organizr-tab-controller/config.yaml",
		"Path to the YAML configuration file")
}
