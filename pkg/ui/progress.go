package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"inatfetch/pkg/logger"
)

// DownloadProgress renders a progress bar for the fetch pass and keeps a
// tally of outcomes for the final line.
type DownloadProgress struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	counts map[string]int
}

// NewDownloadProgress creates a bar for total records written to w
func NewDownloadProgress(total int, w io.Writer) *DownloadProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("fetching images"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
	return &DownloadProgress{bar: bar, counts: make(map[string]int)}
}

// Increment advances the bar by one record with the given outcome
func (p *DownloadProgress) Increment(outcome string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.counts[outcome]++
	_ = p.bar.Add(1)
}

// Finish completes the bar
func (p *DownloadProgress) Finish() error {
	return p.bar.Finish()
}

// Summary formats the outcome tally, e.g. "3 downloaded, 1 skipped, 0 failed"
func (p *DownloadProgress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%d downloaded, %d skipped, %d failed",
		p.counts[logger.OutcomeDownloaded], p.counts[logger.OutcomeSkipped], p.counts[logger.OutcomeFailed])
}
