package usecase

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"time"

	"FinScreen/internal/domain/models"
	drepo "FinScreen/internal/domain/repository"
	"FinScreen/internal/services/fundamentals"
	"FinScreen/internal/services/xbrl"
	applogger "FinScreen/pkg/logger"
	"FinScreen/pkg/util"

	"github.com/google/uuid"
)

// RunSummary counts what one screening run saw.
type RunSummary struct {
	RunID      string `json:"run_id"`
	Artifacts  int    `json:"artifacts"`
	Candidates int    `json:"candidates"`
	Unreadable int    `json:"unreadable"`
	Results    int    `json:"results"`
}

// ScreeningRun screens the stored artifacts of a date range and hands the
// survivors to the configured sinks.
type ScreeningRun struct {
	artifacts drepo.ArtifactStore
	screener  *Screener
	rules     []xbrl.Rule
	store     drepo.Storage
	pub       drepo.Publisher
	logger    *applogger.Logger
	metrics   drepo.Metrics
	batchSz   int
	now       func() time.Time
}

// NewScreeningRun creates a run. store and pub may be nil.
func NewScreeningRun(
	artifacts drepo.ArtifactStore,
	screener *Screener,
	store drepo.Storage,
	pub drepo.Publisher,
	logger *applogger.Logger,
	metrics drepo.Metrics,
	batchSz int,
) *ScreeningRun {
	if logger == nil {
		logger = applogger.NewNop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if batchSz <= 0 {
		batchSz = 50
	}
	return &ScreeningRun{
		artifacts: artifacts,
		screener:  screener,
		rules:     xbrl.DefaultRules(),
		store:     store,
		pub:       pub,
		logger:    logger,
		metrics:   metrics,
		batchSz:   batchSz,
		now:       time.Now,
	}
}

// LoadCandidates folds the stored artifacts submitted between from and to
// (inclusive days, zero bounds are open) into a CandidateIndex keyed by
// company. It also returns how many artifacts were in range.
func (r *ScreeningRun) LoadCandidates(ctx context.Context, from, to time.Time) (*CandidateIndex, int, error) {
	arts, err := r.artifacts.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list artifacts: %w", err)
	}

	records := make([]models.FilingRecord, 0, len(arts))
	for _, a := range arts {
		submitted, ok := util.ParseTime(a.SubmitDateTime)
		if !ok {
			r.logger.Warn("artifact has unreadable submit time",
				applogger.String("path", a.Path),
				applogger.String("submit_date_time", a.SubmitDateTime))
			continue
		}
		if !inRange(submitted, from, to) {
			continue
		}
		records = append(records, models.FilingRecord{
			EdinetCode:  a.EdinetCode,
			SubmittedAt: submitted,
			DocID:       a.DocID,
			Path:        a.Path,
		})
	}

	// the fold relies on ascending scan order
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SubmittedAt.Before(records[j].SubmittedAt)
	})
	return AccumulateCandidates(records), len(records), nil
}

// Candidates parses each indexed filing on demand. Unreadable filings are
// logged and skipped; unreadable counts them.
func (r *ScreeningRun) Candidates(ctx context.Context, idx *CandidateIndex, unreadable *int) iter.Seq[models.Candidate] {
	return func(yield func(models.Candidate) bool) {
		for _, rec := range idx.All() {
			if ctx.Err() != nil {
				return
			}
			c, err := r.candidate(rec)
			if err != nil {
				if unreadable != nil {
					*unreadable++
				}
				r.metrics.RecordFiling("unreadable")
				r.logger.Warn("skipping unreadable filing",
					applogger.String("doc_id", rec.DocID),
					applogger.String("path", rec.Path),
					applogger.Error(err))
				continue
			}
			r.metrics.RecordFiling("parsed")
			if !yield(c) {
				return
			}
		}
	}
}

func (r *ScreeningRun) candidate(rec models.FilingRecord) (models.Candidate, error) {
	rc, err := r.artifacts.Open(models.Artifact{
		EdinetCode:     rec.EdinetCode,
		SubmitDateTime: rec.SubmittedAt.In(util.JST).Format(util.SubmitTimeLayout),
		DocID:          rec.DocID,
		Path:           rec.Path,
	})
	if err != nil {
		return models.Candidate{}, err
	}
	defer rc.Close()

	inst, err := xbrl.Parse(rc)
	if err != nil {
		return models.Candidate{}, err
	}
	ft := xbrl.Extract(inst, r.rules)
	m := fundamentals.Compute(ft, r.now())
	rec.FilerName = m.CompanyName
	return models.Candidate{Record: rec, Facts: ft, Metrics: m}, nil
}

// Run screens the range and calls emit for every result in scan order.
// Sink failures are logged and do not stop the run; an emit error does.
func (r *ScreeningRun) Run(ctx context.Context, from, to time.Time, emit func(models.ScreeningResult) error) (RunSummary, error) {
	sum := RunSummary{RunID: uuid.NewString()}
	start := time.Now()

	idx, n, err := r.LoadCandidates(ctx, from, to)
	if err != nil {
		return sum, err
	}
	sum.Artifacts = n
	sum.Candidates = idx.Len()

	r.logger.Info("screening started",
		applogger.String("run_id", sum.RunID),
		applogger.Int("artifacts", sum.Artifacts),
		applogger.Int("candidates", sum.Candidates))

	batch := make([]*models.ScreeningResult, 0, r.batchSz)
	for res := range r.screener.Screen(ctx, r.Candidates(ctx, idx, &sum.Unreadable)) {
		res.RunID = sum.RunID
		// a result the caller refused is not handed to the sinks
		if emit != nil {
			if err := emit(res); err != nil {
				r.flush(ctx, batch)
				return sum, fmt.Errorf("emit result: %w", err)
			}
		}
		sum.Results++
		batch = append(batch, &res)
		if len(batch) >= r.batchSz {
			r.flush(ctx, batch)
			batch = batch[:0]
		}
	}
	r.flush(ctx, batch)

	r.metrics.RecordLatency("screening_run", time.Since(start).Seconds())
	r.logger.Info("screening finished",
		applogger.String("run_id", sum.RunID),
		applogger.Int("results", sum.Results),
		applogger.Int("unreadable", sum.Unreadable),
		applogger.Duration("elapsed_ms", time.Since(start)))

	return sum, ctx.Err()
}

func (r *ScreeningRun) flush(ctx context.Context, batch []*models.ScreeningResult) {
	if len(batch) == 0 {
		return
	}
	if r.store != nil {
		if err := r.store.StoreBatch(ctx, batch); err != nil {
			r.metrics.RecordError("store_results")
			r.logger.Error("store results failed", applogger.Int("count", len(batch)), applogger.Error(err))
		}
	}
	if r.pub != nil {
		if err := r.pub.PublishBatch(ctx, batch); err != nil {
			r.metrics.RecordError("publish_results")
			r.logger.Error("publish results failed", applogger.Int("count", len(batch)), applogger.Error(err))
		}
	}
}

// Close closes the sinks.
func (r *ScreeningRun) Close() {
	if r.pub != nil {
		_ = r.pub.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
}

func inRange(t, from, to time.Time) bool {
	day := t.In(util.JST).Format(util.DateLayout)
	if !from.IsZero() && day < from.In(util.JST).Format(util.DateLayout) {
		return false
	}
	if !to.IsZero() && day > to.In(util.JST).Format(util.DateLayout) {
		return false
	}
	return true
}
