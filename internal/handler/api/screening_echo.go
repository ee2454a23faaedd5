package api

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"FinScreen/internal/domain/models"
	domrepo "FinScreen/internal/domain/repository"
	"FinScreen/internal/usecase"
	xhttp "FinScreen/pkg/http"
	xlogger "FinScreen/pkg/logger"
	"FinScreen/pkg/util"

	"github.com/labstack/echo/v4"
)

// Runner screens stored filings; *usecase.ScreeningRun satisfies it.
type Runner interface {
	Run(ctx context.Context, from, to time.Time, emit func(models.ScreeningResult) error) (usecase.RunSummary, error)
}

// ScreeningEchoHandler serves screening results and triggers runs.
type ScreeningEchoHandler struct {
	logger  *xlogger.Logger
	results domrepo.Storage
	runner  Runner
	running atomic.Bool
}

func NewScreeningEchoHandler(logger *xlogger.Logger, results domrepo.Storage, runner Runner) *ScreeningEchoHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &ScreeningEchoHandler{logger: logger, results: results, runner: runner}
}

func (h *ScreeningEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api/v1")
	g.GET("/results", h.Results)
	g.POST("/runs", h.TriggerRun)
}

func (h *ScreeningEchoHandler) Health(c echo.Context) error {
	if err := h.results.Health(c.Request().Context()); err != nil {
		h.logger.Warn("result storage unhealthy", xlogger.Error(err))
		return c.JSON(http.StatusServiceUnavailable, xhttp.APIResponse{
			Status:  http.StatusServiceUnavailable,
			Message: http.StatusText(http.StatusServiceUnavailable),
		})
	}
	return xhttp.SuccessResponse(c, "ok")
}

func (h *ScreeningEchoHandler) Results(c echo.Context) error {
	req := &models.ResultsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var since time.Time
	if req.Since != "" {
		since, _ = util.ParseDate(req.Since)
	}

	rows, err := h.results.Query(c.Request().Context(), since, req.MinRatio, req.Industry, req.Limit)
	if err != nil {
		h.logger.Error("results query error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// RunResponse is returned by TriggerRun.
type RunResponse struct {
	Summary usecase.RunSummary       `json:"summary"`
	Results []models.ScreeningResult `json:"results"`
}

// TriggerRun screens synchronously; only one run may be in flight.
func (h *ScreeningEchoHandler) TriggerRun(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, _ := util.ParseDate(req.From)
	to, _ := util.ParseDate(req.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("from must not be after to"))
	}

	if !h.running.CompareAndSwap(false, true) {
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("a screening run is already in progress"))
	}
	defer h.running.Store(false)

	results := []models.ScreeningResult{}
	sum, err := h.runner.Run(c.Request().Context(), from, to, func(r models.ScreeningResult) error {
		results = append(results, r)
		return nil
	})
	if err != nil {
		h.logger.Error("screening run error", xlogger.String("run_id", sum.RunID), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.CreatedResponse(c, RunResponse{Summary: sum, Results: results})
}
