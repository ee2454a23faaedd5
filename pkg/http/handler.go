package http

import "github.com/labstack/echo/v4"

// Handler mounts a set of routes on the server.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// HandlerFunc lets a plain function mount routes.
type HandlerFunc func(e *echo.Echo)

func (f HandlerFunc) RegisterRoutes(e *echo.Echo) { f(e) }

// Handlers mounts each member in order. Nil members are skipped so optional
// routes can be left out of the list without a branch at the call site.
type Handlers []Handler

func (hs Handlers) RegisterRoutes(e *echo.Echo) {
	for _, h := range hs {
		if h == nil {
			continue
		}
		if f, ok := h.(HandlerFunc); ok && f == nil {
			continue
		}
		h.RegisterRoutes(e)
	}
}
