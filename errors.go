package scoresheet

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnNotFound is returned when a column is not registered in the active catalog.
	ErrColumnNotFound = errors.New("column not found in catalog")
	// ErrUnknownDivision is returned when no division policy exists for a named division.
	ErrUnknownDivision = errors.New("no policy for division")
	// ErrMissingAdjustment is returned when an adjustment column has no sheet configuration.
	ErrMissingAdjustment = errors.New("no adjustment sheet configured")
	// ErrNoGenerator is returned when a catalog column has no formula generator.
	ErrNoGenerator = errors.New("no formula generator for column")

	ErrNegativeGameRows     = errors.New("computed game row count is negative")
	ErrTooManyGameRows      = errors.New("computed game row count exceeds team count")
	ErrMissingPreviousRound = errors.New("previous round pointer missing")
)

// ConfigurationError is fatal for the whole division: the report cannot be
// built with the configuration it was given.
type ConfigurationError struct {
	Division string
	Column   string // header of the offending column, if any
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("division %q: column %q: %v", e.Division, e.Column, e.Err)
	}
	return fmt.Sprintf("division %q: %v", e.Division, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// LayoutError reports a round whose row layout could not be computed. No
// operations are emitted for that round or any later one.
type LayoutError struct {
	Division string
	Round    int
	Err      error
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("division %q round %d: layout: %v", e.Division, e.Round, e.Err)
}

func (e *LayoutError) Unwrap() error { return e.Err }

// Severity indicates the severity of an issue.
type Severity int

const (
	SeverityError   Severity = iota // the generated sheet will be wrong
	SeverityWarning                 // best-effort output, flagged for manual review
)

// Issue is a non-fatal finding attached to a plan. InputDataWarning entries
// are issues with SeverityWarning.
type Issue struct {
	Severity Severity
	Division string
	Round    int // 0 when not tied to a round
	CellRef  CellRef
	Message  string
}

// String formats the issue as "[WARN] 10U Boys R2 'Teams'!A5: message".
func (v Issue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	where := v.Division
	if v.Round > 0 {
		where = fmt.Sprintf("%s R%d", where, v.Round)
	}
	if v.CellRef != (CellRef{}) {
		where += " " + v.CellRef.String()
	}
	return fmt.Sprintf("[%s] %s: %s", sev, where, v.Message)
}
