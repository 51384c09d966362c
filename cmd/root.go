// Package cmd provides the CLI commands for Sharp Timer.
package cmd

import (
	"fmt"
	"os"

	"github.com/manuelminca/sharp-timer-speckit/internal/adapters/history"
	"github.com/manuelminca/sharp-timer-speckit/internal/adapters/store"
	"github.com/manuelminca/sharp-timer-speckit/internal/config"
	"github.com/manuelminca/sharp-timer-speckit/internal/ports"
	"github.com/spf13/cobra"
)

var (
	// Version info (set at build time via ldflags)
	Version = "dev"

	// Global flags
	dataDirFlag string

	// Global dependencies
	appConfig  *config.Config
	docStore   *store.FileStore
	historyLog ports.HistoryLog
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sharp-timer",
	Short: "Sharp Timer - a work/rest countdown timer that survives restarts",
	Long: `Sharp Timer is a countdown timer for work and rest cycles.

An in-progress session is checkpointed to disk continuously, so a
crash, quit, or system sleep never loses more than a few seconds of
countdown. Run "sharp-timer" with no arguments to open the timer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: runTimer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Path to the data directory (default: ~/.sharp-timer)")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("Sharp Timer\nVersion: {{.Version}}\n")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resetCmd)
}

// initializeServices sets up the stores every command depends on.
func initializeServices() error {
	var err error
	appConfig, err = config.Load()
	if err != nil {
		// If config loading fails, use defaults
		appConfig = config.DefaultConfig()
		if home, herr := os.UserHomeDir(); herr == nil {
			appConfig.Storage.DataDir = home + "/.sharp-timer"
		}
	}

	dataDir := appConfig.Storage.DataDir
	if dataDirFlag != "" {
		dataDir = dataDirFlag
		appConfig.Storage.DataDir = dataDirFlag
	}

	docStore, err = store.New(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open data directory: %w", err)
	}

	historyLog, err = history.New(config.GetHistoryPath(appConfig))
	if err != nil {
		// History is best-effort; the timer works without it.
		fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
		historyLog = nil
	}
	return nil
}

// cleanupServices closes everything initializeServices opened.
func cleanupServices() error {
	if historyLog != nil {
		return historyLog.Close()
	}
	return nil
}
