// Package pipelineerr carries the result-type vocabulary used across the
// scrape runner: adapter discovery/fetch failures and article-store
// failures are returned as one of these kinds instead of a bare error, so
// callers can decide retry/backoff/skip without string-matching error text.
// The analysis runner returns plain errors.
package pipelineerr

import (
	"errors"
	"fmt"
)

// Kind classifies why a pipeline step failed.
type Kind int

const (
	// Transient is a network/timeout failure worth retrying with backoff.
	Transient Kind = iota
	// Throttled means the source pushed back (429, rate-limit signal);
	// retried with the same exponential backoff as Transient.
	Throttled
	// ParseError means the fetched page didn't match the expected shape;
	// retrying without a selector fix will not help.
	ParseError
	// StoreConflict is a dedup hit - not an error, but callers that only
	// check err != nil need a way to tell it apart from StoreHardError.
	StoreConflict
	// StoreHardError is a persistence failure (connection, constraint
	// violation other than the dedup unique index).
	StoreHardError
	// Cancelled means the caller's context was done.
	Cancelled
	// Config means required configuration is missing or invalid; retrying
	// without an operator fixing config will not help.
	Config
)

func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Throttled:
		return "throttled"
	case ParseError:
		return "parse_error"
	case StoreConflict:
		return "store_conflict"
	case StoreHardError:
		return "store_hard_error"
	case Cancelled:
		return "cancelled"
	case Config:
		return "config"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so callers can branch on
// errors.As without parsing messages.
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether a caller should schedule a retry for this kind.
// Throttled and Transient are retryable; dedup hits, parse errors, config
// errors and cancellation are not.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case Transient, Throttled:
		return true
	default:
		return false
	}
}

func New(kind Kind, source string, err error) *Error {
	return &Error{Kind: kind, Source: source, Err: err}
}

func Transientf(source string, err error) *Error   { return New(Transient, source, err) }
func Throttledf(source string, err error) *Error   { return New(Throttled, source, err) }
func ParseErrorf(source string, err error) *Error  { return New(ParseError, source, err) }
func StoreConflictf(source string, err error) *Error {
	return New(StoreConflict, source, err)
}
func StoreHardErrorf(source string, err error) *Error {
	return New(StoreHardError, source, err)
}
func Cancelledf(source string, err error) *Error { return New(Cancelled, source, err) }
func Configf(source string, err error) *Error    { return New(Config, source, err) }

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *Error. ok is false for plain errors, in which case callers should treat
// the failure as Transient by default.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return Transient, false
}

// IsRetryable reports whether err should be retried, defaulting to true
// for errors that were never tagged with a Kind.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return err != nil
}
