package core

import "fmt"

// ErrorKind classifies domain failures so callers can match on the class
// without parsing messages.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindSameAccount       ErrorKind = "same_account"
	KindEditWindowExpired ErrorKind = "edit_window_expired"
	KindImmutableField    ErrorKind = "immutable_field"
)

// Error is the domain error type. Two errors match under errors.Is when
// their kinds are equal, so the sentinels below work as match targets for
// any instance carrying a message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is matching.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds}
	ErrSameAccount       = &Error{Kind: KindSameAccount}
	ErrEditWindowExpired = &Error{Kind: KindEditWindowExpired}
	ErrImmutableField    = &Error{Kind: KindImmutableField}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func NewNotFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func NewInsufficientFundsError(format string, args ...any) *Error {
	return newError(KindInsufficientFunds, format, args...)
}

func NewSameAccountError(format string, args ...any) *Error {
	return newError(KindSameAccount, format, args...)
}

func NewEditWindowExpiredError(format string, args ...any) *Error {
	return newError(KindEditWindowExpired, format, args...)
}

func NewImmutableFieldError(format string, args ...any) *Error {
	return newError(KindImmutableField, format, args...)
}
