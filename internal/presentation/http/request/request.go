// Package request extracts path parameters and payloads from Echo contexts,
// reporting failures as errorbank bad requests.
package request

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// ID parses the named path parameter as an int64 identifier.
func ID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err), errorbank.WithDetail("param", name))
	}
	return id, nil
}

// Bind decodes the request body into dst.
func Bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	return nil
}
