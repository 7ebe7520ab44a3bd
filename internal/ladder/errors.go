package ladder

import (
	"fmt"
	"net/http"
)

// Kind classifies a domain failure. The set is closed; transport adapters map
// kinds to status codes and never inspect messages.
type Kind int

const (
	KindInvalidInput Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInfrastructure
)

// Error is a typed domain failure with a human-readable reason. Validation
// failures carry business semantics; infrastructure failures deliberately do
// not.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInfrastructure:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Errorf builds a typed Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
