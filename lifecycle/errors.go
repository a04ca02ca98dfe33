package lifecycle

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "store"
	}
}

// ErrNotFound is returned when no record carries the requested uniqueKey.
var ErrNotFound = errors.New("switch not found")

var errDuplicateKey = errors.New("duplicate uniqueKey")

// ValidationError reports malformed input or a violated lifecycle rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

const (
	ReasonNotFixed     = "A switch with this serial number already exists and is not marked as fixed."
	ReasonNotDelivered = "This serial number belongs to a fixed switch that is not delivered yet."
)

// ConflictError is returned when a live record already claims the serial.
type ConflictError struct {
	Serial      string
	Reason      string
	ConflictKey int64
	Verdict     Verdict
}

func (e *ConflictError) Error() string { return e.Reason }

// StoreError wraps a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// KindOf maps any error returned by this package to its Kind.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ve *ValidationError
	var ce *ConflictError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ce):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindStore
	}
}
