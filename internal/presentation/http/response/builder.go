package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// Builder helps construct consistent HTTP responses. Successful responses
// carry the payload as the whole body; errors render as
// {"message": ..., "kind": ..., "details": ...}.
type Builder struct {
	ctx     echo.Context
	status  int
	data    any
	err     error
	headers map[string]string
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string         `json:"message"`
	Kind    string         `json:"kind"`
	Details map[string]any `json:"details,omitempty"`
}

// New instantiates a Builder for the provided request context.
func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx, status: http.StatusOK}
}

// WithStatus overrides the response status code.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

// WithData attaches a success payload.
func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

// WithError records an error to be rendered.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// WithHeader sets a response header, e.g. Location on creation.
func (b *Builder) WithHeader(key, value string) *Builder {
	if key == "" {
		return b
	}
	if b.headers == nil {
		b.headers = make(map[string]string)
	}
	b.headers[key] = value
	return b
}

// Build finalises and emits the HTTP response.
func (b *Builder) Build() error {
	for k, v := range b.headers {
		b.ctx.Response().Header().Set(k, v)
	}
	if b.err != nil {
		return b.buildError()
	}
	return b.buildSuccess()
}

func (b *Builder) buildSuccess() error {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	if b.data == nil {
		return b.ctx.NoContent(b.status)
	}
	return b.ctx.JSON(b.status, b.data)
}

func (b *Builder) buildError() error {
	appErr := errorbank.From(b.err)
	status := b.status
	if status < 400 {
		status = appErr.StatusCode()
	}
	return b.ctx.JSON(status, ErrorBody{
		Message: appErr.Message(),
		Kind:    string(appErr.Kind()),
		Details: appErr.Details(),
	})
}

// Error renders errors that escape handlers, such as unknown routes or
// methods reported by the router, in the same shape as handler errors.
func Error(err error, c echo.Context) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(he.Code, ErrorBody{
			Message: fmt.Sprint(he.Message),
			Kind:    string(errorbank.KindForStatus(he.Code)),
		})
	}
	return New(c).WithError(err).Build()
}
