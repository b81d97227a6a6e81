package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kfroeb/thorium-manager/internal/logger"
	"github.com/kfroeb/thorium-manager/internal/service/manager"
	"github.com/kfroeb/thorium-manager/internal/version"
)

var (
	// configPath stores the path to the optional settings YAML file.
	configPath string
	// logLevel selects the minimum log level.
	logLevel string
	// assumeYes forwards automatic confirmation to the package manager.
	assumeYes bool
	// checkOnly reports the update decision without acting.
	checkOnly bool

	// rootCmd represents the base command managing the browser package.
	rootCmd = &cobra.Command{
		Use:   "thorium-manager",
		Short: "Install, update or remove the Thorium browser package.",
		Long: `Manage the Thorium browser on Debian-based systems.

Queries the GitHub releases of Thorium for the latest .deb package, compares
it against the version recorded in the dpkg database, downloads the asset to
a temporary file when needed and delegates installation to a package-manager
front-end (nala by default, with a dpkg fallback).

Dependency resolution stays entirely with the package manager; this tool
only automates the fetch-compare-install sequence.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
	}
)

// Execute runs the thorium-manager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runCommand wires a cobra invocation into the manager service with
// graceful shutdown handling. An interrupt cancels the context so
// in-flight downloads abort and their temp files are removed.
func runCommand(command manager.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	options := &manager.Options{
		Command:    command,
		ConfigPath: configPath,
		CheckOnly:  checkOnly,
		AssumeYes:  assumeYes,
		Progress:   isatty.IsTerminal(os.Stderr.Fd()),
	}

	return manager.Run(ctx, options)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer package-manager prompts automatically")

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the browser package if absent or outdated.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCommand(manager.CommandInstall)
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update the browser package, intended for unattended runs.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCommand(manager.CommandUpdate)
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the browser package.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCommand(manager.CommandRemove)
		},
	}

	for _, c := range []*cobra.Command{installCmd, updateCmd} {
		c.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
	}

	rootCmd.AddCommand(installCmd, updateCmd, removeCmd)
}
