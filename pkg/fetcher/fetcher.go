package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"saafetch/pkg/archive"
	"saafetch/pkg/logger"
	"saafetch/pkg/retry"
	"saafetch/pkg/storage"
)

// DefaultPrepareDelay is the pause between a preparation request and the
// next descriptor request
const DefaultPrepareDelay = 10 * time.Second

// ErrPrepareLimit is returned when the archive kept reporting an item as
// unavailable after the configured number of preparation requests
var ErrPrepareLimit = errors.New("item still unavailable after preparation requests")

// Archive is the part of the archive API a Fetcher needs
type Archive interface {
	FetchDescriptor(ctx context.Context, identifier string) ([]byte, error)
	QueueDownload(ctx context.Context, identifier string) error
	ResolveHighres(body []byte) (string, error)
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// WaitFunc suspends for d or until ctx is done
type WaitFunc func(ctx context.Context, d time.Duration) error

// Options tunes the preparation loop
type Options struct {
	// PrepareDelay is the pause after a preparation request; 0 means
	// DefaultPrepareDelay
	PrepareDelay time.Duration
	// MaxPrepareAttempts bounds preparation requests per identifier; 0 means no bound
	MaxPrepareAttempts int
	// Wait replaces the real timer, mostly for tests
	Wait WaitFunc
}

// Fetcher resolves identifiers through the archive and stores the scans
type Fetcher struct {
	archive    Archive
	store      storage.Store
	backoff    retry.BackoffStrategy
	maxPrepare int
	wait       WaitFunc
	logger     logger.Logger
}

// New creates a Fetcher
func New(a Archive, store storage.Store, log logger.Logger, opts Options) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Wait == nil {
		opts.Wait = retry.Wait
	}
	if opts.PrepareDelay <= 0 {
		opts.PrepareDelay = DefaultPrepareDelay
	}
	return &Fetcher{
		archive:    a,
		store:      store,
		backoff:    &retry.ConstantBackoff{Delay: opts.PrepareDelay},
		maxPrepare: opts.MaxPrepareAttempts,
		wait:       opts.Wait,
		logger:     log,
	}
}

// Fetch runs the fetch protocol for one target until it reaches a terminal
// outcome. It never panics on archive failures; every failure is reported
// through the Result.
//
// With skipIfExists, an existing artifact short-circuits the fetch before
// any request is made. Otherwise the descriptor is requested; an
// unavailable item is queued for preparation, and the descriptor is
// requested again after the prepare delay, as often as it takes.
func (f *Fetcher) Fetch(ctx context.Context, target FetchTarget, skipIfExists bool) Result {
	start := time.Now()
	res := Result{
		Target:   target,
		Location: f.store.Location(target.Destination, target.Identifier),
	}
	log := f.logger.WithFields(map[string]interface{}{
		"identifier":  target.Identifier,
		"destination": target.Destination,
	})

	finish := func(o Outcome, err error) Result {
		res.Outcome = o
		res.Err = err
		res.Duration = time.Since(start)
		logger.LogFetchOutcome(f.logger, target.Identifier, o.String(), res.Attempts, res.PrepareRequests, err)
		return res
	}
	failed := func(err error) Result {
		if ctx.Err() != nil {
			return finish(Abandoned, ctx.Err())
		}
		return finish(TransportError, err)
	}

	if err := ctx.Err(); err != nil {
		return finish(Abandoned, err)
	}

	if skipIfExists {
		exists, err := f.store.Exists(ctx, target.Destination, target.Identifier)
		if err != nil {
			return failed(fmt.Errorf("check existing artifact: %w", err))
		}
		if exists {
			log.Debug("Already downloaded")
			return finish(Skipped, nil)
		}
	}

	for {
		res.Attempts++
		log.InfoWithFields("Downloading", map[string]interface{}{
			"attempt": res.Attempts,
		})

		body, err := f.archive.FetchDescriptor(ctx, target.Identifier)
		if err != nil {
			return failed(fmt.Errorf("fetch descriptor: %w", err))
		}

		switch archive.Classify(body) {
		case archive.StatusInvalid:
			return finish(Unresolvable, nil)

		case archive.StatusPreparing:
			if f.maxPrepare > 0 && res.PrepareRequests >= f.maxPrepare {
				return finish(Abandoned, fmt.Errorf("%w (%d)", ErrPrepareLimit, res.PrepareRequests))
			}

			res.PrepareRequests++
			if err := f.archive.QueueDownload(ctx, target.Identifier); err != nil {
				if ctx.Err() != nil {
					return finish(Abandoned, ctx.Err())
				}
				log.WithError(err).Debug("Preparation request failed")
			}

			delay := f.backoff.NextDelay(res.PrepareRequests)
			log.WarnWithFields("Unavailable now, preparing and trying again", map[string]interface{}{
				"preparing":        true,
				"prepare_requests": res.PrepareRequests,
				"delay":            delay,
			})
			if err := f.wait(ctx, delay); err != nil {
				return finish(Abandoned, err)
			}
			continue
		}

		assetURL, err := f.archive.ResolveHighres(body)
		if err != nil {
			return finish(TransportError, fmt.Errorf("resolve highres: %w", err))
		}

		data, err := f.archive.Download(ctx, assetURL)
		if err != nil {
			return failed(fmt.Errorf("download %s: %w", assetURL, err))
		}

		n, err := f.store.Put(ctx, target.Destination, target.Identifier, bytes.NewReader(data))
		if err != nil {
			return failed(fmt.Errorf("store artifact: %w", err))
		}
		res.Bytes = n
		return finish(Downloaded, nil)
	}
}
