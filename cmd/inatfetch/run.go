package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"inatfetch/pkg/config"
	"inatfetch/pkg/fetch"
	"inatfetch/pkg/logger"
	"inatfetch/pkg/pipeline"
	"inatfetch/pkg/ui"
)

var (
	// Run command flags
	observationsPath string
	photosPath       string
	outputDir        string
	fetcherName      string
	uriTemplate      string
	taxonPairs       []string
	hasHeader        bool
	requestsPerSec   float64
	showProgress     bool
	notify           bool
	saveMetadata     bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Filter, join and download images",
	Long: `Filter the observations table by taxon, join the photos table and download
one image per matching observation.

Exactly one line, "<N> observations found", is written to stdout. Logs and the
progress bar go to stderr. Images that fail to download are reported but do
not change the exit status.`,
	Example: `  # Use the default tick taxa and the public bucket
  inatfetch run --observations observations.csv --photos photos.csv

  # Custom taxa, gzipped inputs with a header row
  inatfetch run --observations observations.csv.gz --photos photos.csv.gz --header \
    --taxon 47157=butterflies --taxon 47158=insects

  # Fetch over https instead of the S3 API
  inatfetch run --fetcher http \
    --template 'https://inaturalist-open-data.s3.amazonaws.com/photos/[photo_id]/small.[extension]'`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(runCmd)

	addRunFlags(runCmd.Flags())
	// The root command runs the pipeline too
	addRunFlags(rootCmd.Flags())
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.StringVar(&observationsPath, "observations", "", "observations table (tab separated, optionally .gz)")
	fs.StringVar(&photosPath, "photos", "", "photos table (tab separated, optionally .gz)")
	fs.StringVarP(&outputDir, "output", "o", "", "output root directory")
	fs.StringVar(&fetcherName, "fetcher", "", "remote fetcher (s3, awscli, http)")
	fs.StringVar(&uriTemplate, "template", "", "object uri template with [photo_id] and [extension]")
	fs.StringArrayVar(&taxonPairs, "taxon", nil, "taxon id and label as id=label (repeatable, replaces configured taxa)")
	fs.BoolVar(&hasHeader, "header", false, "input files start with a header row")
	fs.Float64Var(&requestsPerSec, "rate", 0, "maximum fetches per second (0 for no limit)")
	fs.BoolVarP(&showProgress, "progress", "p", false, "show a progress bar on stderr")
	fs.BoolVar(&saveMetadata, "metadata", false, "write a .json attribution sidecar next to each image")
	fs.BoolVar(&notify, "notify", false, "send a desktop notification when the run finishes")
}

// collectFlags returns only the flags set on the command line so they do not
// shadow values from the file or environment.
func collectFlags(cmd *cobra.Command) (map[string]interface{}, error) {
	flags := make(map[string]interface{})
	fs := cmd.Flags()

	for _, name := range []string{"observations", "photos", "output", "fetcher", "template", "log-level"} {
		if fs.Changed(name) {
			value, err := fs.GetString(name)
			if err != nil {
				return nil, err
			}
			flags[name] = value
		}
	}
	for _, name := range []string{"header", "metadata"} {
		if fs.Changed(name) {
			value, err := fs.GetBool(name)
			if err != nil {
				return nil, err
			}
			flags[name] = value
		}
	}
	if fs.Changed("rate") {
		value, err := fs.GetFloat64("rate")
		if err != nil {
			return nil, err
		}
		flags["rate"] = value
	}
	if fs.Changed("taxon") {
		pairs, err := fs.GetStringArray("taxon")
		if err != nil {
			return nil, err
		}
		taxa, err := config.ParseTaxa(pairs)
		if err != nil {
			return nil, err
		}
		flags["taxa"] = taxa
	}
	if quiet {
		flags["log-level"] = "error"
	}

	return flags, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	flags, err := collectFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}

	if err := logger.InitializeWithWriter(&cfg.Logging, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithFields(map[string]interface{}{
		"version": version,
		"taxa":    cfg.TaxonIDs(),
	}).Info("inatfetch starting")

	opts := pipeline.Options{
		Stdout: cmd.OutOrStdout(),
		Logger: log,
	}

	var bar *ui.DownloadProgress
	if showProgress && !quiet {
		opts.Progress = func(total int) fetch.Progress {
			bar = ui.NewDownloadProgress(total, cmd.ErrOrStderr())
			return bar
		}
	}

	summary, err := pipeline.Run(cmd.Context(), cfg, opts)
	if bar != nil {
		_ = bar.Finish()
	}

	var notifier *ui.Notifier
	if notify {
		notifier = ui.NewNotifier()
	}

	// Execute prints the error itself
	if err != nil {
		if notifier != nil {
			notifier.SendError("inatfetch", err.Error())
		}
		return err
	}

	if !quiet {
		printSummary(cfg, summary, bar)
	}
	if notifier != nil {
		notifier.SendSuccess("inatfetch", fmt.Sprintf("%d images downloaded, %d failed", summary.Downloaded, summary.Failed))
	}
	return nil
}

func printSummary(cfg *config.Config, summary *fetch.Summary, bar *ui.DownloadProgress) {
	ui.PrintInfo("Output", cfg.Output.RootDirectory)
	if bar != nil {
		ui.PrintInfo("Progress", bar.Summary())
	}
	ui.PrintInfo("Downloaded", strconv.Itoa(summary.Downloaded))
	ui.PrintInfo("Skipped", strconv.Itoa(summary.Skipped))
	if summary.Unlabeled > 0 {
		ui.PrintWarning("Filed under unknown", summary.Unlabeled)
	}

	if err := summary.Err(); err != nil {
		ui.PrintWarning("Some images were not downloaded", err)
		for _, f := range summary.Failures {
			ui.PrintError("  "+f.PhotoID, f.Err)
		}
		return
	}
	ui.PrintSuccess("All images present")
}
