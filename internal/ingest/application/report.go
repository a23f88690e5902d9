package application

import "fmt"

const (
	maxErrors   = 20
	maxWarnings = 10
)

// Reporter accumulates capped error and warning lists across all rows
// of one import session. Every entry is tagged with its 1-based
// spreadsheet row (header row included). Warnings are de-duplicated by
// message body within a run.
type Reporter struct {
	errors       []string
	warnings     []string
	seenWarnings map[string]struct{}
}

// NewReporter constructs an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{seenWarnings: make(map[string]struct{})}
}

// Error records a row-scoped error.
func (r *Reporter) Error(rowNum int, err error) {
	if err == nil {
		return
	}
	if len(r.errors) >= maxErrors {
		return
	}
	r.errors = append(r.errors, fmt.Sprintf("Zeile %d: %v", rowNum, err))
}

// Errorf records a formatted row-scoped error.
func (r *Reporter) Errorf(rowNum int, format string, args ...any) {
	r.Error(rowNum, fmt.Errorf(format, args...))
}

// Warn records a row-scoped warning, suppressing repeats of the same
// message body. The first occurrence keeps its row number.
func (r *Reporter) Warn(rowNum int, message string) {
	if message == "" {
		return
	}
	if _, seen := r.seenWarnings[message]; seen {
		return
	}
	r.seenWarnings[message] = struct{}{}
	if len(r.warnings) >= maxWarnings {
		return
	}
	r.warnings = append(r.warnings, fmt.Sprintf("Zeile %d: %s", rowNum, message))
}

// HasErrors reports whether any error was recorded.
func (r *Reporter) HasErrors() bool { return len(r.errors) > 0 }

// Errors returns the capped error list.
func (r *Reporter) Errors() []string { return r.errors }

// Warnings returns the capped warning list.
func (r *Reporter) Warnings() []string { return r.warnings }
