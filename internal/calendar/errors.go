package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDate is matched by every ParseError raised for a day.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidWeek is matched by every ParseError raised for an ISO week.
	ErrInvalidWeek = errors.New("invalid iso week")
)

const (
	KindDate = "date"
	KindWeek = "week"
)

// ParseError reports a date or ISO week string that cannot be canonicalized.
type ParseError struct {
	Kind   string
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("calendar: invalid %s %q: %s", e.Kind, e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	if e.Kind == KindWeek {
		return ErrInvalidWeek
	}
	return ErrInvalidDate
}

func dateError(input, reason string) error {
	return &ParseError{Kind: KindDate, Input: input, Reason: reason}
}

func weekError(input, reason string) error {
	return &ParseError{Kind: KindWeek, Input: input, Reason: reason}
}
