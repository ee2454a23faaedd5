package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FinScreen/internal/domain/models"
	"FinScreen/internal/repository"
	"FinScreen/internal/usecase"
	"FinScreen/pkg/util"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	from, to time.Time
	results  []models.ScreeningResult
	err      error
	started  chan struct{}
	block    chan struct{}
}

func (s *stubRunner) Run(_ context.Context, from, to time.Time, emit func(models.ScreeningResult) error) (usecase.RunSummary, error) {
	s.from, s.to = from, to
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		<-s.block
	}
	for _, r := range s.results {
		if err := emit(r); err != nil {
			return usecase.RunSummary{}, err
		}
	}
	return usecase.RunSummary{RunID: "run-1", Results: len(s.results)}, s.err
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newTestEcho(t *testing.T, runner Runner) (*echo.Echo, *repository.MemoryStorage) {
	t.Helper()
	store := repository.NewMemoryStorage()
	e := echo.New()
	NewScreeningEchoHandler(nil, store, runner).RegisterRoutes(e)
	return e, store
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestResults(t *testing.T) {
	e, store := newTestEcho(t, &stubRunner{})
	at := time.Date(2024, 7, 1, 10, 0, 0, 0, util.JST)
	require.NoError(t, store.StoreBatch(context.Background(), []*models.ScreeningResult{
		{CompanyName: "A", CompanyCode: "1111", DocID: "D1", CriticalRatio: 2, IndustryName: "機械", ScreenedAt: at},
		{CompanyName: "B", CompanyCode: "2222", DocID: "D2", CriticalRatio: 5, IndustryName: "化学", ScreenedAt: at},
	}))

	rec := do(e, http.MethodGet, "/api/v1/results?min_ratio=1&since=2024-07-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var list struct {
		Rows  []models.ScreeningResult `json:"rows"`
		Total int64                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, "2222", list.Rows[0].CompanyCode)

	rec = do(e, http.MethodGet, "/api/v1/results?since=2024-07-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Zero(t, list.Total)
}

func TestResultsValidation(t *testing.T) {
	e, _ := newTestEcho(t, &stubRunner{})

	rec := do(e, http.MethodGet, "/api/v1/results?limit=5000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_LTE")

	rec = do(e, http.MethodGet, "/api/v1/results?since=07-01-2024", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_DATETIME")
}

func TestTriggerRun(t *testing.T) {
	runner := &stubRunner{results: []models.ScreeningResult{{CompanyName: "A", CompanyCode: "1111"}}}
	e, _ := newTestEcho(t, runner)

	rec := do(e, http.MethodPost, "/api/v1/runs", `{"from":"2024-06-01","to":"2024-06-30"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "2024-06-01", runner.from.Format(util.DateLayout))
	assert.Equal(t, "2024-06-30", runner.to.Format(util.DateLayout))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var resp RunResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "run-1", resp.Summary.RunID)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "1111", resp.Results[0].CompanyCode)
}

func TestTriggerRunRejectsReversedRange(t *testing.T) {
	e, _ := newTestEcho(t, &stubRunner{})
	rec := do(e, http.MethodPost, "/api/v1/runs", `{"from":"2024-06-30","to":"2024-06-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerRunConflict(t *testing.T) {
	runner := &stubRunner{started: make(chan struct{}), block: make(chan struct{})}
	e, _ := newTestEcho(t, runner)

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- do(e, http.MethodPost, "/api/v1/runs", "") }()
	<-runner.started

	rec := do(e, http.MethodPost, "/api/v1/runs", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(runner.block)
	first := <-done
	assert.Equal(t, http.StatusCreated, first.Code)
}

func TestTriggerRunFailure(t *testing.T) {
	e, _ := newTestEcho(t, &stubRunner{err: errors.New("disk gone")})
	rec := do(e, http.MethodPost, "/api/v1/runs", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	e, _ := newTestEcho(t, &stubRunner{})
	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
