package batch

import (
	"fmt"
	"strings"

	"saafetch/pkg/fetcher"
)

// Summary counts the outcomes of a batch
type Summary struct {
	Total  int
	Counts map[fetcher.Outcome]int
	Bytes  int64
}

// Summarize tallies results by outcome
func Summarize(results []fetcher.Result) Summary {
	s := Summary{
		Total:  len(results),
		Counts: make(map[fetcher.Outcome]int),
	}
	for _, res := range results {
		s.Counts[res.Outcome]++
		s.Bytes += res.Bytes
	}
	return s
}

// Count returns the number of results with outcome o
func (s Summary) Count(o fetcher.Outcome) int {
	return s.Counts[o]
}

// Failed returns the number of targets whose artifact is missing
func (s Summary) Failed() int {
	n := 0
	for o, c := range s.Counts {
		if o.Failed() {
			n += c
		}
	}
	return n
}

// OK reports whether every artifact of the batch is present
func (s Summary) OK() bool {
	return s.Failed() == 0
}

func (s Summary) String() string {
	parts := make([]string, 0, len(fetcher.Outcomes))
	for _, o := range fetcher.Outcomes {
		parts = append(parts, fmt.Sprintf("%d %s", s.Counts[o], o))
	}
	return fmt.Sprintf("%d targets: %s", s.Total, strings.Join(parts, ", "))
}
