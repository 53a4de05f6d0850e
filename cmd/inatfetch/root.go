package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"inatfetch/pkg/ui"
)

var (
	// Version information
	version   = "0.3.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
)

// rootCmd runs the pipeline when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "inatfetch",
	Short: "Download labelled iNaturalist images for a set of taxa",
	Long: `inatfetch builds an image dataset from the iNaturalist open-data export.

It reads the observations table, keeps the observations whose taxon is in the
configured allow-list, finds the first photo of each in the photos table and
downloads it to <output>/<label>/<photo_id>.<extension>. Images already on disk
are skipped, so an interrupted run can simply be started again.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFetch,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("inatfetch", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./inatfetch.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors and skip the summary")

	rootCmd.SetVersionTemplate(`inatfetch {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
