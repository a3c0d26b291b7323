package fetcher

import (
	"fmt"
	"time"
)

// Outcome is the terminal state of one fetch
type Outcome int

const (
	// Downloaded means the artifact was fetched and written
	Downloaded Outcome = iota
	// Skipped means the artifact already existed; no request was made
	Skipped
	// Unresolvable means the archive reported an invalid item
	Unresolvable
	// TransportError means a request, the descriptor or the store failed
	TransportError
	// Abandoned means the fetch was cancelled or gave up waiting for preparation
	Abandoned
)

// Outcomes lists every outcome in display order
var Outcomes = []Outcome{Downloaded, Skipped, Unresolvable, TransportError, Abandoned}

func (o Outcome) String() string {
	switch o {
	case Downloaded:
		return "downloaded"
	case Skipped:
		return "skipped"
	case Unresolvable:
		return "unresolvable"
	case TransportError:
		return "transport_error"
	case Abandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Failed reports whether the outcome left the artifact missing
func (o Outcome) Failed() bool {
	return o != Downloaded && o != Skipped
}

// FetchTarget is one identifier and the destination its artifact goes to
type FetchTarget struct {
	Identifier  string
	Destination string
}

// Result describes how a fetch ended
type Result struct {
	Target  FetchTarget
	Outcome Outcome
	// Attempts counts descriptor requests
	Attempts        int
	PrepareRequests int
	Bytes           int64
	Location        string
	Duration        time.Duration
	Err             error
}
