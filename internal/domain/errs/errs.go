package errs

import "errors"

// Error kinds. Every domain error wraps exactly one of them.
var (
	ErrValidation      = errors.New("validation error")
	ErrReference       = errors.New("reference error")
	ErrConsistency     = errors.New("consistency error")
	ErrExternalService = errors.New("external service error")
	ErrConflict        = errors.New("conflict")
)

// Error is a domain error tagged with its kind. Field is optional and names the
// offending input when the error comes from validation.
type Error struct {
	Kind  error
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + " " + e.Msg
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// Invalid builds a validation error for a single field.
func Invalid(field, msg string) error {
	return &Error{Kind: ErrValidation, Field: field, Msg: msg}
}

func Inconsistent(msg string) error { return &Error{Kind: ErrConsistency, Msg: msg} }

// KindOf returns the kind wrapped by err, or nil if err carries none.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrReference, ErrConsistency, ErrExternalService, ErrConflict} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
