package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"saafetch/pkg/fetcher"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	progressWidth = 20
)

// StatusTracker counts fetch outcomes of one batch. It is safe for
// concurrent use.
type StatusTracker struct {
	mu        sync.Mutex
	total     int
	counts    map[fetcher.Outcome]int
	bytes     int64
	startTime time.Time
}

// NewStatusTracker creates a tracker for a batch of total targets
func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{
		total:     total,
		counts:    make(map[fetcher.Outcome]int),
		startTime: time.Now(),
	}
}

// Record adds a finished fetch
func (st *StatusTracker) Record(r fetcher.Result) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.counts[r.Outcome]++
	st.bytes += r.Bytes
}

// Total returns the batch size
func (st *StatusTracker) Total() int {
	return st.total
}

// Done returns how many fetches have finished
func (st *StatusTracker) Done() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.done()
}

func (st *StatusTracker) done() int {
	n := 0
	for _, c := range st.counts {
		n += c
	}
	return n
}

// Count returns how many fetches ended with outcome o
func (st *StatusTracker) Count(o fetcher.Outcome) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.counts[o]
}

// Failed returns how many fetches left their artifact missing
func (st *StatusTracker) Failed() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	n := 0
	for o, c := range st.counts {
		if o.Failed() {
			n += c
		}
	}
	return n
}

// Bytes returns the number of bytes written so far
func (st *StatusTracker) Bytes() int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.bytes
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.startTime)
}

// GetDownloadRate returns finished fetches per minute
func (st *StatusTracker) GetDownloadRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Done()) / elapsed
}

// GetBatchProgress returns a progress bar for the batch
func (st *StatusTracker) GetBatchProgress() string {
	st.mu.Lock()
	done := st.done()
	st.mu.Unlock()

	filled := 0
	if st.total > 0 {
		filled = done * progressWidth / st.total
	}
	if filled > progressWidth {
		filled = progressWidth
	}

	bar := progressBarStyle.Render(strings.Repeat(ProgressBar, filled)) +
		progressEmptyStyle.Render(strings.Repeat(ProgressEmpty, progressWidth-filled))

	return fmt.Sprintf("[%s] %d/%d", bar, done, st.total)
}
