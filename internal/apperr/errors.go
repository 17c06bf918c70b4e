// Package apperr defines the error kinds shared by the services and
// translated to HTTP statuses by the api package.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindDuplicate
	KindInvalidOperation
	KindValidation
	KindInvalidToken
	KindAccessDenied
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate_resource"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindValidation:
		return "validation"
	case KindInvalidToken:
		return "invalid_token"
	case KindAccessDenied:
		return "access_denied"
	default:
		return "internal"
	}
}

// Error is a classified failure. Fields is only populated for validation
// errors and holds one message per offending field.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error
}

// Sentinels for errors.Is comparisons; they match any *Error of the same kind.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrDuplicate        = &Error{Kind: KindDuplicate}
	ErrInvalidOperation = &Error{Kind: KindInvalidOperation}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrInvalidToken     = &Error{Kind: KindInvalidToken}
	ErrAccessDenied     = &Error{Kind: KindAccessDenied}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if len(e.Fields) > 0 {
		msg = msg + ": " + strings.Join(e.Fields, "; ")
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Duplicate(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

func InvalidOperation(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

func InvalidToken(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidToken, Message: fmt.Sprintf(format, args...)}
}

func AccessDenied(format string, args ...any) *Error {
	return &Error{Kind: KindAccessDenied, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a validation error listing every offending field.
func Validation(fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// Wrap attaches a classification to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldsOf returns the per-field messages of a validation error.
func FieldsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// MessageOf returns the message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return ""
}
