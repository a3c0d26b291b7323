package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"saafetch/pkg/fetcher"
)

// ProgressDisplay renders a single progress line for a batch and a
// summary panel when the batch ends
type ProgressDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	tracker *StatusTracker
	isDebug bool
}

// NewProgressDisplay creates a display writing to out. In debug mode every
// result gets its own line instead of the rewritten progress line.
func NewProgressDisplay(out io.Writer, label string, tracker *StatusTracker, debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:     out,
		label:   label,
		tracker: tracker,
		isDebug: debug,
	}
}

// Tracker returns the tracker the display reads from
func (p *ProgressDisplay) Tracker() *StatusTracker {
	return p.tracker
}

// Update records a finished fetch and redraws
func (p *ProgressDisplay) Update(r fetcher.Result) {
	p.tracker.Record(r)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isDebug {
		p.printResult(r)
		return
	}
	p.printProgress(r.Target.Identifier)
}

func (p *ProgressDisplay) printProgress(current string) {
	line := fmt.Sprintf("%s %s • %.1f/min • %s",
		Cyan(p.label),
		p.tracker.GetBatchProgress(),
		p.tracker.GetDownloadRate(),
		formatBytes(p.tracker.Bytes()),
	)
	if current != "" {
		line += " • " + current
	}
	if failed := p.tracker.Failed(); failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", failed))
	}

	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 120), line)
}

func (p *ProgressDisplay) printResult(r fetcher.Result) {
	switch r.Outcome {
	case fetcher.Downloaded:
		fmt.Fprintf(p.out, "%s %s • %s\n", successStyle.Render("✓"), r.Target.Identifier, formatBytes(r.Bytes))
	case fetcher.Skipped:
		fmt.Fprintf(p.out, "%s %s • %s\n", Dim("="), r.Target.Identifier, Dim("already downloaded"))
	default:
		fmt.Fprintf(p.out, "%s %s • %s", errorStyle.Render("✗"), r.Target.Identifier, r.Outcome)
		if r.Err != nil {
			fmt.Fprintf(p.out, " • %v", r.Err)
		}
		fmt.Fprintln(p.out)
	}
}

// Complete prints the per-outcome summary panel
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows := []string{
		row("Batch", p.label),
		row("Targets", fmt.Sprintf("%d", p.tracker.Total())),
	}
	for _, o := range fetcher.Outcomes {
		rows = append(rows, row(o.String(), fmt.Sprintf("%d", p.tracker.Count(o))))
	}
	rows = append(rows,
		row("Written", formatBytes(p.tracker.Bytes())),
		row("Elapsed", formatDuration(p.tracker.GetElapsedTime())),
	)

	status := successStyle.Render("✓ all scans present")
	if failed := p.tracker.Failed(); failed > 0 {
		status = warningStyle.Render(fmt.Sprintf("⚠ %d scans missing", failed))
	}
	rows = append(rows, "", status)

	if !p.isDebug {
		fmt.Fprintln(p.out)
	}
	fmt.Fprintln(p.out, panelStyle.Render(strings.Join(rows, "\n")))
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// formatBytes formats bytes in a human-readable way
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
