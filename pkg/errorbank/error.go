// Package errorbank defines the typed errors that services return and that
// both the HTTP and gRPC transports translate into their own status codes.
package errorbank

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind classifies an AppError.
type Kind string

const (
	KindBadRequest          Kind = "bad_request"
	KindConflict            Kind = "conflict"
	KindDependency          Kind = "dependency"
	KindNotFound            Kind = "not_found"
	KindUnprocessableEntity Kind = "unprocessable_entity"
	KindInternal            Kind = "internal"
)

type mapping struct {
	status int
	code   codes.Code
}

// A dependency error is a rejected delete: the client asked for something
// the current data does not allow, hence 400 rather than 409.
var mappings = map[Kind]mapping{
	KindBadRequest:          {http.StatusBadRequest, codes.InvalidArgument},
	KindDependency:          {http.StatusBadRequest, codes.FailedPrecondition},
	KindConflict:            {http.StatusConflict, codes.AlreadyExists},
	KindNotFound:            {http.StatusNotFound, codes.NotFound},
	KindUnprocessableEntity: {http.StatusUnprocessableEntity, codes.FailedPrecondition},
	KindInternal:            {http.StatusInternalServerError, codes.Internal},
}

func (k Kind) mapping() mapping {
	if m, ok := mappings[k]; ok {
		return m
	}
	return mappings[KindInternal]
}

// KindForStatus picks the Kind that best describes an HTTP status produced
// outside the service layer, such as a router 404 or 405.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusUnprocessableEntity:
		return KindUnprocessableEntity
	case status >= http.StatusInternalServerError:
		return KindInternal
	default:
		return KindBadRequest
	}
}

// AppError carries a kind, a client-facing message and optional details.
type AppError struct {
	kind    Kind
	message string
	details map[string]any
	cause   error
}

// Option customises an AppError.
type Option func(*AppError)

// WithCause records the underlying error. It is never shown to clients.
func WithCause(err error) Option {
	return func(e *AppError) { e.cause = err }
}

// WithDetail adds one detail entry.
func WithDetail(key string, value any) Option {
	return WithDetails(map[string]any{key: value})
}

// WithDetails merges entries into the detail map.
func WithDetails(details map[string]any) Option {
	return func(e *AppError) {
		if len(details) == 0 {
			return
		}
		if e.details == nil {
			e.details = make(map[string]any, len(details))
		}
		for k, v := range details {
			e.details[k] = v
		}
	}
}

// New builds an AppError. An empty message falls back to the kind name.
func New(kind Kind, message string, opts ...Option) *AppError {
	if message == "" {
		message = string(kind)
	}
	e := &AppError{kind: kind, message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.cause != nil:
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	default:
		return e.message
	}
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Kind returns the error kind; a nil receiver reports KindInternal.
func (e *AppError) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

// Message returns the client-facing message.
func (e *AppError) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Details returns the detail map, possibly nil.
func (e *AppError) Details() map[string]any {
	if e == nil {
		return nil
	}
	return e.details
}

// StatusCode returns the HTTP status for the error's kind.
func (e *AppError) StatusCode() int { return e.Kind().mapping().status }

// GRPCCode returns the gRPC code for the error's kind.
func (e *AppError) GRPCCode() codes.Code { return e.Kind().mapping().code }

func BadRequest(message string, opts ...Option) *AppError {
	return New(KindBadRequest, message, opts...)
}

func Conflict(message string, opts ...Option) *AppError {
	return New(KindConflict, message, opts...)
}

// Dependency rejects deleting a row that other rows still reference.
func Dependency(message string, opts ...Option) *AppError {
	return New(KindDependency, message, opts...)
}

func NotFound(message string, opts ...Option) *AppError {
	return New(KindNotFound, message, opts...)
}

func Unprocessable(message string, opts ...Option) *AppError {
	return New(KindUnprocessableEntity, message, opts...)
}

func Internal(message string, opts ...Option) *AppError {
	return New(KindInternal, message, opts...)
}

// From extracts the AppError in err's chain. Any other error becomes an
// internal error wrapping it.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal error", WithCause(err))
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind() == kind
}
