package server

import (
	"context"
	"os/signal"
	"syscall"

	"FinScreen/pkg/config"
	xhttp "FinScreen/pkg/http"
	applogger "FinScreen/pkg/logger"
)

// App runs the results API until interrupted.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, h xhttp.Handler) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	return &App{cfg: cfg, log: l, httpHandler: h}
}

// Server builds the HTTP server on first use.
func (a *App) Server() *xhttp.Server {
	if a.httpServer == nil {
		a.httpServer = xhttp.NewServer(a.httpHandler,
			xhttp.WithPort(a.cfg.Server.Port),
			xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
			xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
			xhttp.WithLogger(a.log),
		)
	}
	return a.httpServer
}

// Run starts the HTTP server and blocks until ctx is done or SIGINT/SIGTERM
// arrives, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := a.Server()
	if err := srv.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	// the run context is already cancelled
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
