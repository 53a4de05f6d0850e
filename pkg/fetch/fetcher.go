// Package fetch downloads one image per joined record into the labelled
// output tree.
package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	"inatfetch/pkg/dataset"
	errs "inatfetch/pkg/errors"
	"inatfetch/pkg/logger"
	"inatfetch/pkg/metadata"
	"inatfetch/pkg/remote"
	"inatfetch/pkg/storage"
)

// Storage is the part of storage.Manager the fetcher needs
type Storage interface {
	Path(label, photoID, ext string) (string, error)
	EnsureDir(label string) error
	Exists(label, photoID, ext string) (bool, error)
	Save(r io.Reader, label, photoID, ext string) (int64, error)
}

// Progress receives one call per processed record
type Progress interface {
	Increment(outcome string)
}

// Failure records why a single image was not written
type Failure struct {
	PhotoID string
	Label   string
	URI     string
	Err     error
}

// Summary describes a completed fetch pass
type Summary struct {
	Total      int
	Downloaded int
	Skipped    int
	Failed     int
	Unlabeled  int
	Bytes      int64
	Elapsed    time.Duration
	Failures   []Failure
}

// Stats flattens the summary into log fields
func (s *Summary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"total":      s.Total,
		"downloaded": s.Downloaded,
		"skipped":    s.Skipped,
		"failed":     s.Failed,
		"unlabeled":  s.Unlabeled,
		"bytes":      s.Bytes,
	}
}

// Fetcher resolves each match to <root>/<label>/<photo_id>.<extension> and
// downloads it unless that file already exists.
type Fetcher struct {
	storage  Storage
	getter   remote.Getter
	template remote.Template
	labels   map[string]string
	logger   logger.Logger
	progress Progress
	metadata bool
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithLogger overrides the global logger
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithProgress reports each processed record to p
func WithProgress(p Progress) Option {
	return func(f *Fetcher) { f.progress = p }
}

// WithMetadata writes an attribution sidecar next to every image
func WithMetadata(enabled bool) Option {
	return func(f *Fetcher) { f.metadata = enabled }
}

// New creates a Fetcher. labels maps taxon ids to directory labels.
func New(store Storage, getter remote.Getter, tmpl remote.Template, labels map[string]string, opts ...Option) *Fetcher {
	f := &Fetcher{
		storage:  store,
		getter:   getter,
		template: tmpl,
		labels:   labels,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.GetLogger()
	}
	return f
}

// Run processes matches in order. Record-level failures are counted in the
// summary and the pass moves on; an error whose type is fatal, or context
// cancellation, stops it.
func (f *Fetcher) Run(ctx context.Context, matches []dataset.Match) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Total: len(matches)}

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}

		outcome, err := f.fetchOne(ctx, m, summary)
		if f.progress != nil {
			f.progress.Increment(outcome)
		}
		if err != nil && errs.IsFatal(errs.TypeOf(err)) {
			summary.Elapsed = time.Since(start)
			return summary, err
		}
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}

func (f *Fetcher) label(m dataset.Match, summary *Summary) string {
	if label, ok := f.labels[m.TaxonID()]; ok {
		return label
	}
	summary.Unlabeled++
	f.logger.WarnWithFields("Taxon has no label, using fallback", map[string]interface{}{
		"taxon_id": m.TaxonID(),
		"photo_id": m.PhotoID(),
		"label":    storage.UnknownLabel,
	})
	return storage.UnknownLabel
}

func (f *Fetcher) fetchOne(ctx context.Context, m dataset.Match, summary *Summary) (string, error) {
	photoID, ext := m.PhotoID(), m.Extension()
	label := f.label(m, summary)

	fail := func(uri string, err error) (string, error) {
		summary.Failed++
		summary.Failures = append(summary.Failures, Failure{PhotoID: photoID, Label: label, URI: uri, Err: err})
		logger.LogDownload(f.logger, photoID, label, logger.OutcomeFailed, err)
		return logger.OutcomeFailed, err
	}

	path, err := f.storage.Path(label, photoID, ext)
	if err != nil {
		return fail("", filesystemError(label, err))
	}

	if err := f.storage.EnsureDir(label); err != nil {
		return fail("", filesystemError(label, err))
	}

	exists, err := f.storage.Exists(label, photoID, ext)
	if err != nil {
		return fail("", filesystemError(path, err))
	}

	uri := f.template.Expand(photoID, ext)

	if exists {
		summary.Skipped++
		if f.metadata && !metadata.Exists(path) {
			f.writeMetadata(m, path, label, uri, 0)
		}
		logger.LogDownload(f.logger, photoID, label, logger.OutcomeSkipped, nil)
		return logger.OutcomeSkipped, nil
	}

	body, err := f.getter.Get(ctx, uri)
	if err != nil {
		return fail(uri, errs.Fetch(uri, err))
	}
	defer body.Close()

	n, err := f.storage.Save(body, label, photoID, ext)
	if err != nil {
		return fail(uri, filesystemError(path, err))
	}

	summary.Downloaded++
	summary.Bytes += n
	if f.metadata {
		f.writeMetadata(m, path, label, uri, n)
	}
	logger.LogDownload(f.logger.WithField("bytes", n), photoID, label, logger.OutcomeDownloaded, nil)
	return logger.OutcomeDownloaded, nil
}

// filesystemError keeps errors storage already classified
func filesystemError(path string, err error) error {
	if errs.TypeOf(err) != errs.ErrorTypeUnknown {
		return err
	}
	return errs.Filesystem(path, err)
}

// writeMetadata failures are logged only; the image itself is in place
func (f *Fetcher) writeMetadata(m dataset.Match, path, label, uri string, size int64) {
	if err := metadata.FromMatch(m, label, uri, size).Save(path); err != nil {
		f.logger.WithError(err).WithField("photo_id", m.PhotoID()).Warn("Failed to write metadata")
	}
}

// Err summarizes the failures of a pass, or nil when every record succeeded
func (s *Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d images failed to download", s.Failed, s.Total)
}
