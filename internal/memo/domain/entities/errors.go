package entities

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure classes surfaced by the query layer.
type ErrorKind int

// Error kinds.
const (
	// KindNotFound: the record does not exist or is not visible to the caller.
	KindNotFound ErrorKind = iota + 1
	// KindVersionConflict: the optimistic-concurrency check failed.
	KindVersionConflict
	// KindTransport: the persistence service failed or returned a malformed payload.
	KindTransport
	// KindValidation: the request was rejected before reaching persistence.
	KindValidation
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindVersionConflict:
		return "version conflict"
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error is a typed failure. Op names the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrVersionConflict = &Error{Kind: KindVersionConflict}
	ErrTransport       = &Error{Kind: KindTransport}
	ErrValidation      = &Error{Kind: KindValidation}
)

// NewError builds an *Error of kind for op wrapping err.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validationf builds a validation error with a formatted message.
func Validationf(op, format string, args ...any) *Error {
	return NewError(KindValidation, op, fmt.Errorf(format, args...))
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
