package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidRange is returned when the end of a range sorts before its start
	ErrInvalidRange = errors.New("invalid range")
	// ErrMalformedIdentifier is returned when the endpoints share no prefix
	// or their remainders are not decimal numbers
	ErrMalformedIdentifier = errors.New("malformed identifier")
)

// Error describes a failed range expansion
type Error struct {
	Start  string
	End    string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s..%s: %s", e.Err, e.Start, e.End, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options controls how a range is expanded
type Options struct {
	// Strict pads with the widest of both endpoint remainders and the end
	// value, keeping zero padding that is already present in the endpoints.
	Strict bool
}

// MaxLen bounds the number of identifiers a single range may expand to
const MaxLen = 1_000_000

// Range is a parsed (start, end) pair ready for expansion
type Range struct {
	Prefix string
	First  uint64
	Last   uint64
	Width  int
}

// Len returns the number of identifiers in the range
func (r Range) Len() int {
	return int(r.Last-r.First) + 1
}

// Identifier returns the identifier for value n
func (r Range) Identifier(n uint64) string {
	digits := strconv.FormatUint(n, 10)
	if pad := r.Width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return r.Prefix + digits
}

// Identifiers returns every identifier of the range in ascending order
func (r Range) Identifiers() []string {
	ids := make([]string, 0, r.Len())
	for n := r.First; ; n++ {
		ids = append(ids, r.Identifier(n))
		if n == r.Last {
			break
		}
	}
	return ids
}

// Expand returns the identifiers from start to end inclusive.
//
// The suffix width is the digit count of end's numeric value, not of its
// remainder, so Expand("A19", "A020") yields A19, A20. Use ExpandStrict to
// keep padding present in the endpoints.
func Expand(start, end string) ([]string, error) {
	return ExpandWithOptions(start, end, Options{})
}

// ExpandStrict is Expand with Options{Strict: true}
func ExpandStrict(start, end string) ([]string, error) {
	return ExpandWithOptions(start, end, Options{Strict: true})
}

// ExpandWithOptions parses and expands a range
func ExpandWithOptions(start, end string, opts Options) ([]string, error) {
	r, err := Parse(start, end, opts)
	if err != nil {
		return nil, err
	}
	return r.Identifiers(), nil
}

// Parse splits start and end into their shared prefix and numeric bounds
func Parse(start, end string, opts Options) (Range, error) {
	fail := func(sentinel error, reason string) (Range, error) {
		return Range{}, &Error{Start: start, End: end, Reason: reason, Err: sentinel}
	}

	// Back off the common prefix until neither endpoint is swallowed whole,
	// so that Expand(x, x) and Expand("A1", "A12") keep a numeric remainder.
	n := commonPrefixLen(start, end)
	for n > 0 && (n == len(start) || n == len(end)) {
		n--
	}
	if n == 0 {
		return fail(ErrMalformedIdentifier, "no common prefix")
	}

	prefix := start[:n]
	startRest, endRest := start[n:], end[n:]

	first, err := parseDecimal(startRest)
	if err != nil {
		return fail(ErrMalformedIdentifier, fmt.Sprintf("start remainder %q is not numeric", startRest))
	}
	last, err := parseDecimal(endRest)
	if err != nil {
		return fail(ErrMalformedIdentifier, fmt.Sprintf("end remainder %q is not numeric", endRest))
	}
	if last < first {
		return fail(ErrInvalidRange, "end is before start")
	}
	if last-first >= MaxLen {
		return fail(ErrInvalidRange, fmt.Sprintf("range too large: more than %d identifiers", MaxLen))
	}

	width := len(strconv.FormatUint(last, 10))
	if opts.Strict {
		width = max(width, len(startRest), len(endRest))
	}

	return Range{Prefix: prefix, First: first, Last: last, Width: width}, nil
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func parseDecimal(s string) (uint64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseUint(s, 10, 64)
}
