package timesheet

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// Kind classifies a failure of Interpret. Each kind maps to one HTTP status.
type Kind string

const (
	KindConfiguration     Kind = "configuration"
	KindValidation        Kind = "validation"
	KindAuthentication    Kind = "authentication"
	KindDependency        Kind = "dependency"
	KindFormat            Kind = "format"
	KindUnresolvedProject Kind = "unresolved_project"
	KindInternal          Kind = "internal"
)

// Caller-visible messages. Clients render these directly.
const (
	MsgNotConfigured     = "AI service not configured. Missing API key."
	MsgInvalidBody       = "Invalid request body"
	MsgInputRequired     = "Input is required"
	MsgAuthRequired      = "Authentication required"
	MsgProjectsFailed    = "Failed to fetch projects"
	MsgEmptyResponse     = "AI failed to provide a response."
	MsgInvalidFormat     = "AI returned invalid data format."
	MsgInvalidAfterStrip = "AI returned invalid data format after markdown strip."
	MsgUnresolvedProject = "AI could not determine the project."
	MsgInternal          = "An unexpected error occurred while processing your timesheet."
	MsgTimeout           = "The AI service took too long to respond. Please try again."
	MsgNetwork           = "Could not reach the AI service. Please check your connection and try again."
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, status int, msg string, err error) *Error {
	return &Error{Kind: kind, Status: status, Message: msg, Err: err}
}

func NewNotConfigured(err error) *Error {
	return newError(KindConfiguration, http.StatusInternalServerError, MsgNotConfigured, err)
}

func NewInvalidBody(err error) *Error {
	return newError(KindValidation, http.StatusBadRequest, MsgInvalidBody, err)
}

func NewInputRequired() *Error {
	return newError(KindValidation, http.StatusBadRequest, MsgInputRequired, nil)
}

func NewAuthRequired(err error) *Error {
	return newError(KindAuthentication, http.StatusUnauthorized, MsgAuthRequired, err)
}

func NewProjectsUnavailable(err error) *Error {
	return newError(KindDependency, http.StatusInternalServerError, MsgProjectsFailed, err)
}

func NewEmptyResponse() *Error {
	return newError(KindDependency, http.StatusInternalServerError, MsgEmptyResponse, nil)
}

func NewInvalidFormat(err error) *Error {
	return newError(KindFormat, http.StatusInternalServerError, MsgInvalidFormat, err)
}

func NewInvalidFormatAfterStrip(err error) *Error {
	return newError(KindFormat, http.StatusInternalServerError, MsgInvalidAfterStrip, err)
}

func NewUnresolvedProject() *Error {
	return newError(KindUnresolvedProject, http.StatusUnprocessableEntity, MsgUnresolvedProject, nil)
}

// NewInternal wraps an unexpected failure, picking more specific wording
// for deadline and network conditions.
func NewInternal(err error) *Error {
	msg := MsgInternal
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = MsgTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		msg = MsgTimeout
	case errors.As(err, &netErr):
		msg = MsgNetwork
	}
	return newError(KindInternal, http.StatusInternalServerError, msg, err)
}

// AsError returns err as an *Error, wrapping anything else as internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
