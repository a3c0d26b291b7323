package fetcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saafetch/pkg/archive"
	errs "saafetch/pkg/errors"
	"saafetch/pkg/logger"
	"saafetch/pkg/storage"
)

const (
	readyBody       = `<download_info><download label="highres"><part url="/high/scan.pdf"/></download></download_info>`
	unavailableBody = `<error>unavailable</error>`
	invalidBody     = `<error>invalid item</error>`
)

// fakeArchive serves scripted descriptor bodies and records every call
type fakeArchive struct {
	mu          sync.Mutex
	bodies      map[string][]string
	descErr     error
	downloadErr error
	events      []string
	descriptors int
	queued      int
	downloads   int
}

func newFakeArchive(bodies map[string][]string) *fakeArchive {
	return &fakeArchive{bodies: bodies}
}

func (a *fakeArchive) record(event string) {
	a.events = append(a.events, event)
}

func (a *fakeArchive) FetchDescriptor(ctx context.Context, identifier string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.descriptors++
	a.record("descriptor")
	if a.descErr != nil {
		return nil, a.descErr
	}
	seq := a.bodies[identifier]
	if len(seq) == 0 {
		return []byte(invalidBody), nil
	}
	body := seq[0]
	if len(seq) > 1 {
		a.bodies[identifier] = seq[1:]
	}
	return []byte(body), nil
}

func (a *fakeArchive) QueueDownload(ctx context.Context, identifier string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queued++
	a.record("queue")
	return nil
}

func (a *fakeArchive) ResolveHighres(body []byte) (string, error) {
	d, err := archive.ParseDescriptor(body)
	if err != nil {
		return "", err
	}
	ref, err := d.HighresURL()
	if err != nil {
		return "", err
	}
	return archive.Endpoints{BaseURL: "http://archive.test"}.Resolve(ref)
}

func (a *fakeArchive) Download(ctx context.Context, rawURL string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.downloads++
	a.record("download")
	if a.downloadErr != nil {
		return nil, a.downloadErr
	}
	return []byte("%PDF " + rawURL), nil
}

func (a *fakeArchive) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.descriptors + a.queued + a.downloads
}

// recordingWait records requested delays without sleeping
type recordingWait struct {
	mu     sync.Mutex
	delays []time.Duration
	onWait func()
}

func (w *recordingWait) Wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.delays = append(w.delays, d)
	w.mu.Unlock()
	if w.onWait != nil {
		w.onWait()
	}
	return ctx.Err()
}

func newTestFetcher(t *testing.T, a Archive, opts Options) (*Fetcher, *recordingWait, *logger.TestLogger) {
	t.Helper()
	w := &recordingWait{}
	if opts.Wait == nil {
		opts.Wait = w.Wait
	}
	log := logger.NewTestLogger()
	return New(a, storage.NewFSStore(), log, opts), w, log
}

func TestFetchDownloads(t *testing.T) {
	dest := t.TempDir()
	a := newFakeArchive(map[string][]string{"KLAC1": {readyBody}})
	f, w, _ := newTestFetcher(t, a, Options{})

	res := f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: dest}, true)

	require.Equal(t, Downloaded, res.Outcome, "err: %v", res.Err)
	assert.NoError(t, res.Err)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 0, res.PrepareRequests)
	assert.Empty(t, w.delays)
	assert.Equal(t, filepath.Join(dest, "KLAC1.pdf"), res.Location)

	content, err := os.ReadFile(filepath.Join(dest, "KLAC1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF http://archive.test/high/scan.pdf", string(content))
	assert.Equal(t, int64(len(content)), res.Bytes)
}

func TestFetchIsIdempotent(t *testing.T) {
	dest := t.TempDir()
	a := newFakeArchive(map[string][]string{"KLAC1": {readyBody}})
	f, _, _ := newTestFetcher(t, a, Options{})
	target := FetchTarget{Identifier: "KLAC1", Destination: dest}

	first := f.Fetch(context.Background(), target, true)
	require.Equal(t, Downloaded, first.Outcome)
	callsAfterFirst := a.calls()
	assert.Greater(t, callsAfterFirst, 0)

	second := f.Fetch(context.Background(), target, true)
	assert.Equal(t, Skipped, second.Outcome)
	assert.Equal(t, 0, second.Attempts)
	assert.Equal(t, callsAfterFirst, a.calls(), "second call must not touch the network")
}

func TestFetchWithoutSkipRefetches(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "KLAC1.pdf"), []byte("old"), 0644))

	a := newFakeArchive(map[string][]string{"KLAC1": {readyBody}})
	f, _, _ := newTestFetcher(t, a, Options{})

	res := f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: dest}, false)
	require.Equal(t, Downloaded, res.Outcome)

	content, err := os.ReadFile(filepath.Join(dest, "KLAC1.pdf"))
	require.NoError(t, err)
	assert.NotEqual(t, "old", string(content))
}

func TestFetchPreparesUnavailableItems(t *testing.T) {
	dest := t.TempDir()
	a := newFakeArchive(map[string][]string{
		"KLAC1": {unavailableBody, unavailableBody, readyBody},
	})
	f, w, _ := newTestFetcher(t, a, Options{})
	w.onWait = func() {
		a.mu.Lock()
		a.record("wait")
		a.mu.Unlock()
	}

	res := f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: dest}, true)

	require.Equal(t, Downloaded, res.Outcome, "err: %v", res.Err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 2, res.PrepareRequests)
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, w.delays)
	assert.Equal(t, []string{
		"descriptor", "queue", "wait",
		"descriptor", "queue", "wait",
		"descriptor", "download",
	}, a.events)
}

func TestFetchPrepareDelayDefaultsToTenSeconds(t *testing.T) {
	a := newFakeArchive(map[string][]string{"KLAC1": {unavailableBody, readyBody}})
	w := &recordingWait{}
	f := New(a, storage.NewFSStore(), logger.NewNopLogger(), Options{Wait: w.Wait})

	res := f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: t.TempDir()}, true)
	require.Equal(t, Downloaded, res.Outcome)
	assert.Equal(t, []time.Duration{10 * time.Second}, w.delays)
}

func TestFetchPrepareDelayIsConfigurable(t *testing.T) {
	a := newFakeArchive(map[string][]string{"KLAC1": {unavailableBody, readyBody}})
	f, w, _ := newTestFetcher(t, a, Options{PrepareDelay: 250 * time.Millisecond})

	res := f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: t.TempDir()}, true)
	require.Equal(t, Downloaded, res.Outcome)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, w.delays)
}

func TestFetchInvalidItem(t *testing.T) {
	dest := t.TempDir()
	a := newFakeArchive(map[string][]string{"KLAC1": {invalidBody}})
	f, _, _ := newTestFetcher(t, a, Options{})

	res := f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: dest}, true)

	assert.Equal(t, Unresolvable, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, a.downloads)
	assert.Equal(t, 0, a.queued)
	assert.NoFileExists(t, filepath.Join(dest, "KLAC1.pdf"))
}

func TestFetchTransportError(t *testing.T) {
	a := newFakeArchive(nil)
	a.descErr = errs.FromStatusCode(502, "http://archive.test/api/download_info/0/KLAC1.xml")
	f, _, _ := newTestFetcher(t, a, Options{})

	res := f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: t.TempDir()}, true)

	assert.Equal(t, TransportError, res.Outcome)
	var apiErr *errs.Error
	require.True(t, errors.As(res.Err, &apiErr))
	assert.Equal(t, 502, apiErr.Code)
	assert.Equal(t, 0, a.queued)
	assert.Equal(t, 0, a.downloads)
}

func TestFetchDownloadFailure(t *testing.T) {
	dest := t.TempDir()
	a := newFakeArchive(map[string][]string{"KLAC1": {readyBody}})
	a.downloadErr = errors.New("connection reset")
	f, _, _ := newTestFetcher(t, a, Options{})

	res := f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: dest}, true)

	assert.Equal(t, TransportError, res.Outcome)
	assert.NoFileExists(t, filepath.Join(dest, "KLAC1.pdf"))
}

func TestFetchReadyWithoutHighres(t *testing.T) {
	a := newFakeArchive(map[string][]string{"KLAC1": {`<download_info/>`}})
	f, _, _ := newTestFetcher(t, a, Options{})

	res := f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: t.TempDir()}, true)

	assert.Equal(t, TransportError, res.Outcome)
	assert.True(t, errors.Is(res.Err, archive.ErrNoHighres))
	assert.Equal(t, 0, a.downloads)
}

func TestFetchMaxPrepareAttempts(t *testing.T) {
	a := newFakeArchive(map[string][]string{"KLAC1": {unavailableBody}})
	f, w, _ := newTestFetcher(t, a, Options{MaxPrepareAttempts: 3})

	res := f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: t.TempDir()}, true)

	assert.Equal(t, Abandoned, res.Outcome)
	assert.True(t, errors.Is(res.Err, ErrPrepareLimit))
	assert.Equal(t, 3, res.PrepareRequests)
	assert.Equal(t, 4, res.Attempts)
	assert.Len(t, w.delays, 3)
	assert.Equal(t, 0, a.downloads)
}

func TestFetchCancelledWhilePreparing(t *testing.T) {
	a := newFakeArchive(map[string][]string{"KLAC1": {unavailableBody}})
	ctx, cancel := context.WithCancel(context.Background())

	// cancel while the fetcher is waiting for the archive
	f, _, _ := newTestFetcher(t, a, Options{PrepareDelay: time.Hour, Wait: func(ctx context.Context, d time.Duration) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}})

	res := f.Fetch(ctx, FetchTarget{Identifier: "KLAC1", Destination: t.TempDir()}, true)

	assert.Equal(t, Abandoned, res.Outcome)
	assert.True(t, errors.Is(res.Err, context.Canceled))
	assert.Equal(t, 1, res.PrepareRequests)
}

func TestFetchCancelledBeforeStart(t *testing.T) {
	a := newFakeArchive(map[string][]string{"KLAC1": {readyBody}})
	f, _, _ := newTestFetcher(t, a, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.Fetch(ctx, FetchTarget{Identifier: "KLAC1", Destination: t.TempDir()}, true)
	assert.Equal(t, Abandoned, res.Outcome)
	assert.Equal(t, 0, a.calls())
}

func TestFetchLogsPreparationDistinctly(t *testing.T) {
	a := newFakeArchive(map[string][]string{"KLAC1": {unavailableBody, readyBody}})
	f, _, log := newTestFetcher(t, a, Options{})

	f.Fetch(context.Background(), FetchTarget{Identifier: "KLAC1", Destination: t.TempDir()}, true)

	var preparing []logger.LogMessage
	for _, m := range log.GetMessagesByLevel("WARN") {
		if m.Fields["preparing"] == true {
			preparing = append(preparing, m)
		}
	}
	require.Len(t, preparing, 1)
	assert.Equal(t, "KLAC1", preparing[0].Fields["identifier"])
	assert.True(t, log.HasMessage("Scan fetch finished"))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "downloaded", Downloaded.String())
	assert.Equal(t, "transport_error", TransportError.String())
	assert.False(t, Skipped.Failed())
	assert.True(t, Unresolvable.Failed())
	assert.True(t, Abandoned.Failed())
	assert.Len(t, Outcomes, 5)
}
