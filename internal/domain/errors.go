package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParameter is wrapped by errors for parameters that violate an
// operation's preconditions (negative counts, non-positive grid units, ...).
var ErrInvalidParameter = errors.New("invalid parameter")

// MalformedInputError reports input that cannot be processed, such as a
// station table missing required columns or a value that does not parse.
type MalformedInputError struct {
	Missing []string // required columns not present in the header
	Line    int      // 1-based input line, 0 when not tied to a line
	Column  string
	Err     error
}

func (e *MalformedInputError) Error() string {
	if len(e.Missing) > 0 {
		return "malformed input: missing required columns: " + strings.Join(e.Missing, ", ")
	}
	msg := "malformed input"
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d", e.Line)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(": column %q", e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// InsufficientInputError reports that fewer stations were available than a
// selection asked for.
type InsufficientInputError struct {
	Requested int
	Available int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("insufficient input: requested %d stations but only %d available (short by %d)",
		e.Requested, e.Available, e.Shortfall())
}

// Shortfall is the number of stations missing to satisfy the request.
func (e *InsufficientInputError) Shortfall() int {
	return e.Requested - e.Available
}
