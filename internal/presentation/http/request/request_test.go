package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func TestID(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/orders/7", nil), httptest.NewRecorder())
	c.SetParamNames("id")

	c.SetParamValues("7")
	id, err := ID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	c.SetParamValues("seven")
	_, err = ID(c, "id")
	require.Error(t, err)
	appErr := errorbank.From(err)
	assert.Equal(t, errorbank.KindBadRequest, appErr.Kind())
	assert.Equal(t, "invalid id", appErr.Message())
}

func TestBindRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"name":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	var dst struct {
		Name string `json:"name"`
	}
	err := Bind(c, &dst)
	require.Error(t, err)
	assert.Equal(t, "invalid payload", errorbank.From(err).Message())
}
