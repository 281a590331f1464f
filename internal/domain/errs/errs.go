// Package errs defines the error taxonomy shared by the recruiting domain.
//
// Every failure surfaced to a caller carries one of the sentinel kinds below so
// transports can map it without string matching:
//
//	errors.Is(err, errs.ErrNotFound)
package errs

import (
	"errors"
	"fmt"
)

// Sentinel kinds.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
)

// Error attaches an operation name and a kind to an underlying error.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind classifies err under kind. A nil err yields nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap adds op context and keeps whatever kind err already carries.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Validationf builds a validation error with a formatted message.
func Validationf(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrValidation, Err: fmt.Errorf(format, args...)}
}

// NotFoundf builds a not-found error with a formatted message.
func NotFoundf(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrNotFound, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the first sentinel kind found in err's chain, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrStorage} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
