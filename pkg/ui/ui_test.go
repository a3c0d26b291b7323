package ui

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saafetch/pkg/fetcher"
)

func result(id string, o fetcher.Outcome, n int64) fetcher.Result {
	return fetcher.Result{
		Target:  fetcher.FetchTarget{Identifier: id, Destination: "30"},
		Outcome: o,
		Bytes:   n,
	}
}

func TestStatusTracker(t *testing.T) {
	st := NewStatusTracker(4)

	st.Record(result("A1", fetcher.Downloaded, 100))
	st.Record(result("A2", fetcher.Skipped, 0))
	st.Record(result("A3", fetcher.Unresolvable, 0))

	assert.Equal(t, 4, st.Total())
	assert.Equal(t, 3, st.Done())
	assert.Equal(t, 1, st.Count(fetcher.Downloaded))
	assert.Equal(t, 1, st.Count(fetcher.Skipped))
	assert.Equal(t, 1, st.Failed())
	assert.Equal(t, int64(100), st.Bytes())
	assert.Contains(t, st.GetBatchProgress(), "3/4")
}

func TestStatusTrackerConcurrent(t *testing.T) {
	st := NewStatusTracker(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := fetcher.Downloaded
			if i%10 == 0 {
				o = fetcher.TransportError
			}
			st.Record(result("X", o, 1))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, st.Done())
	assert.Equal(t, 90, st.Count(fetcher.Downloaded))
	assert.Equal(t, 10, st.Failed())
	assert.Equal(t, int64(100), st.Bytes())
}

func TestStatusTrackerEmptyBatch(t *testing.T) {
	st := NewStatusTracker(0)
	assert.Contains(t, st.GetBatchProgress(), "0/0")
}

func TestProgressDisplay(t *testing.T) {
	var buf bytes.Buffer
	display := NewProgressDisplay(&buf, "KLAC01462000001..03", NewStatusTracker(3), false)

	display.Update(result("KLAC01462000001", fetcher.Downloaded, 2048))
	assert.Contains(t, buf.String(), "KLAC01462000001")
	assert.Contains(t, buf.String(), "1/3")

	display.Update(result("KLAC01462000002", fetcher.Abandoned, 0))
	assert.Contains(t, buf.String(), "1 failed")

	buf.Reset()
	display.Complete()
	out := buf.String()
	assert.Contains(t, out, "downloaded")
	assert.Contains(t, out, "abandoned")
	assert.Contains(t, out, "2.0 KB")
	assert.Contains(t, out, "1 scans missing")
}

func TestProgressDisplayDebug(t *testing.T) {
	var buf bytes.Buffer
	display := NewProgressDisplay(&buf, "batch", NewStatusTracker(2), true)

	display.Update(result("A1", fetcher.Skipped, 0))
	r := result("A2", fetcher.TransportError, 0)
	r.Err = errors.New("connection refused")
	display.Update(r)

	out := buf.String()
	assert.Contains(t, out, "A1")
	assert.Contains(t, out, "already downloaded")
	assert.Contains(t, out, "transport_error")
	assert.Contains(t, out, "connection refused")
	assert.Equal(t, 2, display.Tracker().Done())
}

type recordingSender struct {
	titles []string
	err    error
}

func (s *recordingSender) Send(title, message string) error {
	s.titles = append(s.titles, title)
	return s.err
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	sender := &recordingSender{err: errors.New("no display")}
	n := NewNotifierWithSender(&buf, sender)

	n.SendSuccess("Batch complete", "5 scans downloaded")
	n.SendError("Batch incomplete", "1 scan missing")

	require.Len(t, sender.titles, 2)
	assert.Equal(t, "Batch complete", sender.titles[0])
	assert.Contains(t, buf.String(), "5 scans downloaded")
	assert.Contains(t, buf.String(), "1 scan missing")

	// A nil sender only prints
	buf.Reset()
	NewNotifierWithSender(&buf, nil).SendNotification("Batch", "done")
	assert.Contains(t, buf.String(), "done")
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "1.0 MB", formatBytes(1<<20))

	assert.Equal(t, "42s", formatDuration(42*time.Second))
	assert.Equal(t, "2m5s", formatDuration(125*time.Second))
	assert.Equal(t, "1h1m", formatDuration(61*time.Minute))
}

func TestPrintHelpers(t *testing.T) {
	var buf bytes.Buffer
	orig := Output
	Output = &buf
	defer func() { Output = orig }()

	PrintInfo("Destination", "downloads")
	PrintWarning("Retrying", "timeout")
	PrintError("Failed")

	out := buf.String()
	assert.Contains(t, out, "Destination")
	assert.Contains(t, out, "downloads")
	assert.Contains(t, out, "Retrying: timeout")
	assert.Contains(t, out, "Failed")
}
