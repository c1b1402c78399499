package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch is returned when the geocoder has no hit for an address.
	ErrNoMatch = errors.New("geocoder returned no match")
	// ErrOutOfBounds is returned when a hit lies outside the national box.
	ErrOutOfBounds = errors.New("coordinate outside national bounds")
)

// ValidationError is a recoverable input error. Message is meant for the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code error: %d (%s)", e.StatusCode, e.URL)
}

// Temporary reports whether retrying could help.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// ParseError reports HTML that does not match the expected results layout.
type ParseError struct {
	Page   int
	Row    int
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	switch {
	case e.Row > 0:
		return fmt.Sprintf("parse page %d row %d %s: %s", e.Page, e.Row, e.Field, e.Reason)
	case e.Page > 0:
		return fmt.Sprintf("parse page %d %s: %s", e.Page, e.Field, e.Reason)
	default:
		return fmt.Sprintf("parse %s: %s", e.Field, e.Reason)
	}
}

// IsGeocodeMiss reports whether err should skip a single listing rather than fail the run.
func IsGeocodeMiss(err error) bool {
	return errors.Is(err, ErrNoMatch) || errors.Is(err, ErrOutOfBounds)
}
