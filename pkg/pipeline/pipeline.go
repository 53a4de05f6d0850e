// Package pipeline wires the observation filter, the photo joiner and the
// image fetcher into a single run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"inatfetch/pkg/config"
	"inatfetch/pkg/dataset"
	"inatfetch/pkg/fetch"
	"inatfetch/pkg/join"
	"inatfetch/pkg/logger"
	"inatfetch/pkg/ratelimit"
	"inatfetch/pkg/remote"
	"inatfetch/pkg/storage"
)

// Options overrides collaborators that Run would otherwise build from the
// configuration.
type Options struct {
	Getter   remote.Getter
	Stdout   io.Writer
	Logger   logger.Logger
	Progress func(total int) fetch.Progress
}

// Run executes filter, join and fetch against cfg. Per-image failures are in
// the returned summary; the error is reserved for problems that stop the run.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*fetch.Summary, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	tmpl, err := remote.ParseTemplate(cfg.Remote.URITemplate)
	if err != nil {
		return nil, err
	}

	observations, err := filter(cfg, log)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(stdout, "%d observations found\n", len(observations))

	matches, err := joinPhotos(cfg, observations, log)
	if err != nil {
		return nil, err
	}

	getter := opts.Getter
	if getter == nil {
		getter, err = remote.New(ctx, cfg.Remote)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s fetcher: %w", cfg.Remote.Fetcher, err)
		}
	}

	limiter := ratelimit.New(cfg.Remote.RequestsPerSecond, cfg.Remote.Burst)
	getter = remote.Throttle(getter, limiter)

	store, err := storage.NewManager(cfg.Output.RootDirectory)
	if err != nil {
		return nil, err
	}

	fetchOpts := []fetch.Option{
		fetch.WithLogger(log),
		fetch.WithMetadata(cfg.Output.SaveMetadata),
	}
	if opts.Progress != nil {
		fetchOpts = append(fetchOpts, fetch.WithProgress(opts.Progress(len(matches))))
	}

	logger.LogComponentStart(log, "fetcher", map[string]interface{}{
		"matches":  len(matches),
		"output":   store.Root(),
		"template": tmpl.String(),
		"fetcher":  cfg.Remote.Fetcher,
		"rate":     limiter.String(),
	})
	summary, err := fetch.New(store, getter, tmpl, cfg.Taxa, fetchOpts...).Run(ctx, matches)
	if summary != nil {
		logger.LogComponentStop(log, "fetcher", summary.Elapsed, summary.Stats())
	}
	return summary, err
}

func filter(cfg *config.Config, log logger.Logger) (map[string]dataset.Observation, error) {
	start := time.Now()
	logger.LogComponentStart(log, "filter", map[string]interface{}{
		"file": cfg.Datasets.ObservationsPath,
		"taxa": len(cfg.Taxa),
	})

	rows, err := dataset.Open(cfg.Datasets.ObservationsPath, cfg.Datasets.HasHeader)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	observations, err := join.FilterObservations(rows, cfg.Taxa)
	if err != nil {
		return nil, err
	}

	logger.LogComponentStop(log, "filter", time.Since(start), map[string]interface{}{
		"rows":         rows.Records(),
		"observations": len(observations),
	})
	return observations, nil
}

func joinPhotos(cfg *config.Config, observations map[string]dataset.Observation, log logger.Logger) ([]dataset.Match, error) {
	start := time.Now()
	logger.LogComponentStart(log, "joiner", map[string]interface{}{
		"file": cfg.Datasets.PhotosPath,
	})

	rows, err := dataset.Open(cfg.Datasets.PhotosPath, cfg.Datasets.HasHeader)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches, err := join.JoinPhotos(observations, rows)
	if err != nil {
		return nil, err
	}

	logger.LogComponentStop(log, "joiner", time.Since(start), map[string]interface{}{
		"rows":      rows.Records(),
		"matches":   len(matches),
		"unmatched": len(observations) - len(matches),
	})
	return matches, nil
}
