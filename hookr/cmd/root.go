// Package cmd provides the command-line interface for hookr.
package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/hookr/hooking"
)

// Environment variables that provide flag defaults. They can also be set in a
// .env file in the working directory.
const (
	envDB          = "HOOKR_DB"
	envDriver      = "HOOKR_DRIVER"
	envMonitorPort = "HOOKR_MONITOR_PORT"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hookr",
	Short: "hookr inspects and exercises hook manifests.",
	Long: `hookr loads the entity types declared in a YAML manifest. It can ` +
		`validate the manifest, print the type tree, and raise hooks on ` +
		`an entity while tracing the dispatch.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogger(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

// The .env file is loaded during variable initialization so that flag
// defaults, set in init functions, see its values. A missing file is not an
// error.
var _ = godotenv.Load()

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"Log every hook declaration and callback.")
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level}))

	slog.SetDefault(logger)
	hooking.SetLogger(logger)
}
