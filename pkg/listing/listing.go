package listing

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// firstScanSuffix marks the field holding the first scan of a group
const firstScanSuffix = "001'"

// ErrMalformedLine is returned for a non-blank line that does not describe
// a group of scans
var ErrMalformedLine = errors.New("malformed listing line")

// LineError reports the line a listing could not be parsed at
type LineError struct {
	Line   int
	Reason string
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Reason, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Entry is one identifier and the group it belongs to
type Entry struct {
	Group      string
	Identifier string
}

// Parse reads an inventory listing. Every non-blank line is a
// comma-separated row of quoted fields; the second field names the group
// and the scans of the group are the fields sharing the prefix of the
// first field ending in 001'.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rows, err := parseLine(line)
		if err != nil {
			return nil, &LineError{Line: lineNo, Reason: err.Error(), Err: ErrMalformedLine}
		}
		entries = append(entries, rows...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading listing: %w", err)
	}

	return entries, nil
}

// ParseFile parses the listing stored at path
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening listing: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

func parseLine(line string) ([]Entry, error) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 2 {
		return nil, errors.New("fewer than two fields")
	}

	group := strings.ReplaceAll(fields[1], "'", "")
	if group == "" {
		return nil, errors.New("empty group")
	}
	if !validGroup(group) {
		return nil, fmt.Errorf("group %q is not a plain directory name", group)
	}

	// The prefix keeps the opening quote and drops the trailing 01'
	prefix := ""
	for _, field := range fields {
		if strings.HasSuffix(field, firstScanSuffix) {
			prefix = field[:len(field)-3]
			break
		}
	}
	if prefix == "" {
		return nil, errors.New("no first scan field")
	}

	var entries []Entry
	for _, field := range fields {
		if !strings.HasPrefix(field, prefix) {
			continue
		}
		entries = append(entries, Entry{
			Group:      group,
			Identifier: strings.ReplaceAll(field, "'", ""),
		})
	}
	return entries, nil
}

// validGroup reports whether group can be used as a single directory name
func validGroup(group string) bool {
	if group == "." {
		return false
	}
	return !strings.ContainsAny(group, `/\`) && !strings.Contains(group, "..")
}
