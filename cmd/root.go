package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/expectedbehaviors/organizr-tab-controller/internal/organizr"
)

// Exit codes for CLI commands. These follow common conventions so the
// controller behaves predictably under process supervisors.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates invalid or incomplete configuration.
	ExitCodeConfig = 2
	// ExitCodeAPIAuth indicates the Organizr API rejected the credentials.
	ExitCodeAPIAuth = 3
)

// rootCmd represents the base command for the controller binary.
var rootCmd = &cobra.Command{
	Use:   "organizr-tab-controller",
	Short: "Sync Kubernetes resources into Organizr dashboard tabs",
	Long: `organizr-tab-controller watches Kubernetes resources (Ingresses,
Services, Deployments, StatefulSets, DaemonSets) for opt-in annotations
and keeps an Organizr dashboard's tabs in sync with them: annotated
resources get a tab, changed resources get their tab updated, and under
the sync policy removed resources get their tab deleted.`,
	// SilenceUsage prevents Cobra from printing the usage message on
	// errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the
// main package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "organizr-tab-controller version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to semantic exit codes.
func getExitCode(err error) int {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return ExitCodeConfig
	}

	var apiErr *organizr.APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403) {
		return ExitCodeAPIAuth
	}

	return ExitCodeError
}

// ConfigError marks a failure to load or validate configuration, so the
// process can exit with a distinct code.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }
