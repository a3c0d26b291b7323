package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"saafetch/internal/downloader"
	"saafetch/pkg/archive"
	"saafetch/pkg/config"
	"saafetch/pkg/fetcher"
	"saafetch/pkg/listing"
	"saafetch/pkg/logger"
	"saafetch/pkg/ratelimit"
	"saafetch/pkg/sequence"
	"saafetch/pkg/storage"
	"saafetch/pkg/ui"
)

// Runner orchestrates batches of scan fetches
type Runner struct {
	config   *config.Config
	fetcher  downloader.TargetFetcher
	pool     *downloader.WorkerPool
	notifier *ui.Notifier
	logger   logger.Logger

	progressOut io.Writer
	debug       bool
	wait        fetcher.WaitFunc
}

// Option configures a Runner
type Option func(*Runner)

// WithProgress renders batch progress to out
func WithProgress(out io.Writer, debug bool) Option {
	return func(r *Runner) {
		r.progressOut = out
		r.debug = debug
	}
}

// WithNotifier sets the notifier used when a batch completes
func WithNotifier(n *ui.Notifier) Option {
	return func(r *Runner) {
		r.notifier = n
	}
}

// WithFetcher replaces the archive-backed fetcher
func WithFetcher(f downloader.TargetFetcher) Option {
	return func(r *Runner) {
		r.fetcher = f
	}
}

// WithWait replaces the timer used between preparation requests
func WithWait(w fetcher.WaitFunc) Option {
	return func(r *Runner) {
		r.wait = w
	}
}

// New creates a Runner. Every fetch of the runner shares one archive
// client and one rate limiter.
func New(cfg *config.Config, store storage.Store, log logger.Logger, opts ...Option) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}

	r := &Runner{
		config: cfg,
		logger: log,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.fetcher == nil {
		limiter := ratelimit.New(cfg.RateLimit.RequestsPerMinute)
		client := archive.NewClientFromConfig(cfg, limiter, log)
		r.fetcher = fetcher.New(client, store, log, fetcher.Options{
			PrepareDelay:       cfg.Download.PrepareDelay,
			MaxPrepareAttempts: cfg.Download.MaxPrepareAttempts,
			Wait:               r.wait,
		})
	}
	if r.notifier == nil && cfg.Notifications.Enabled {
		r.notifier = ui.NewNotifier()
	}

	r.pool = downloader.NewWorkerPool(
		cfg.Download.ConcurrentDownloads,
		r.fetcher,
		cfg.Output.SkipExisting,
		log,
	)
	return r
}

// RunBatch fetches every target and returns the results in input order.
// It returns once every target has reached a terminal outcome; a failing
// target never stops the others.
func (r *Runner) RunBatch(ctx context.Context, targets []fetcher.FetchTarget) []fetcher.Result {
	return r.run(ctx, "batch", targets)
}

// RunRange expands start..end and fetches every identifier into
// destination. An empty destination means the configured output
// directory. A malformed range is reported before any request is made.
func (r *Runner) RunRange(ctx context.Context, start, end, destination string) ([]fetcher.Result, error) {
	ids, err := sequence.ExpandWithOptions(start, end, sequence.Options{
		Strict: r.config.Download.StrictPadding,
	})
	if err != nil {
		r.logger.WithError(err).ErrorWithFields("Invalid range", map[string]interface{}{
			"start": start,
			"end":   end,
		})
		return nil, err
	}

	if destination == "" {
		destination = r.config.Output.BaseDirectory
	}

	targets := make([]fetcher.FetchTarget, len(ids))
	for i, id := range ids {
		targets[i] = fetcher.FetchTarget{Identifier: id, Destination: destination}
	}

	label := start
	if start != end {
		label = fmt.Sprintf("%s..%s", start, end)
	}
	return r.run(ctx, label, targets), nil
}

// RunListing fetches the entries of a parsed listing. Each entry goes to
// its group directory under the configured listing root.
func (r *Runner) RunListing(ctx context.Context, entries []listing.Entry) []fetcher.Result {
	targets := make([]fetcher.FetchTarget, len(entries))
	for i, e := range entries {
		targets[i] = fetcher.FetchTarget{
			Identifier:  e.Identifier,
			Destination: filepath.Join(r.config.Output.ListingRoot, e.Group),
		}
	}
	return r.run(ctx, "listing", targets)
}

func (r *Runner) run(ctx context.Context, label string, targets []fetcher.FetchTarget) []fetcher.Result {
	start := time.Now()
	r.logger.InfoWithFields("Starting batch", map[string]interface{}{
		"batch":   label,
		"targets": len(targets),
		"workers": r.pool.Workers(len(targets)),
	})

	tracker := ui.NewStatusTracker(len(targets))
	var display *ui.ProgressDisplay
	if r.progressOut != nil {
		display = ui.NewProgressDisplay(r.progressOut, label, tracker, r.debug)
	}

	results := r.pool.Run(ctx, targets, func(res fetcher.Result) {
		if display != nil {
			display.Update(res)
			return
		}
		tracker.Record(res)
	})

	summary := Summarize(results)
	counts := make(map[string]int, len(summary.Counts))
	for o, n := range summary.Counts {
		counts[o.String()] = n
	}
	logger.LogBatchSummary(r.logger, summary.Total, counts, time.Since(start))

	if display != nil {
		display.Complete()
	}
	r.notify(label, tracker)

	return results
}

func (r *Runner) notify(label string, tracker *ui.StatusTracker) {
	if r.notifier == nil || !r.config.Notifications.OnComplete {
		return
	}

	if failed := tracker.Failed(); failed > 0 {
		r.notifier.SendError("saafetch: batch incomplete",
			fmt.Sprintf("%s: %d of %d scans missing", label, failed, tracker.Total()))
		return
	}
	r.notifier.SendSuccess("saafetch: batch complete",
		fmt.Sprintf("%s: %d scans present", label, tracker.Total()))
}
