package domain

import (
	"errors"
	"fmt"
)

// ErrorKind clasifica los fallos que cruzan la frontera de servicio.
type ErrorKind string

const (
	ErrorEmptyInput          ErrorKind = "EMPTY_INPUT"
	ErrorInvalidInput        ErrorKind = "INVALID_INPUT"
	ErrorProviderUnavailable ErrorKind = "PROVIDER_UNAVAILABLE"
	ErrorNotFound            ErrorKind = "NOT_FOUND"
	ErrorForbidden           ErrorKind = "FORBIDDEN"
	ErrorPersistenceFailure  ErrorKind = "PERSISTENCE_FAILURE"
)

// Error lleva el tipo de fallo, un mensaje presentable al usuario y la causa.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError construye un *Error.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf devuelve el ErrorKind de err, o "" si no es un *Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// MessageOf devuelve el mensaje presentable de err, o fallback.
func MessageOf(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
