package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func route(path, body string) HandlerFunc {
	return func(e *echo.Echo) {
		e.GET(path, func(c echo.Context) error { return c.String(http.StatusOK, body) })
	}
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlersMountsEveryMemberAndSkipsNil(t *testing.T) {
	var missing HandlerFunc
	e := echo.New()
	Handlers{route("/a", "a"), nil, missing, route("/b", "b")}.RegisterRoutes(e)

	assert.Equal(t, "a", get(e, "/a").Body.String())
	assert.Equal(t, "b", get(e, "/b").Body.String())
}

func TestNewServerWithoutHandlerOrMetrics(t *testing.T) {
	s := NewServer(nil, WithMetrics(false, "/metrics"))
	assert.Equal(t, http.StatusNotFound, get(s.Echo(), "/metrics").Code)

	s = NewServer(route("/ping", "pong"), WithMetrics(false, "/metrics"))
	assert.Equal(t, "pong", get(s.Echo(), "/ping").Body.String())
}
