package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"FinScreen/internal/domain/models"
	drepo "FinScreen/internal/domain/repository"
	dsvc "FinScreen/internal/domain/service"
	applogger "FinScreen/pkg/logger"
	"FinScreen/pkg/util"
)

// CollectSummary counts what a download run did.
type CollectSummary struct {
	Days    int
	Listed  int
	Stored  int
	Skipped int
	Failed  int
}

// FilingCollector downloads the annual reports filed in a date range and
// stores one XBRL artifact per filing.
type FilingCollector struct {
	index     dsvc.FilingIndex
	docs      dsvc.DocumentFetcher
	artifacts drepo.ArtifactStore
	logger    *applogger.Logger
	metrics   drepo.Metrics
}

func NewFilingCollector(index dsvc.FilingIndex, docs dsvc.DocumentFetcher, artifacts drepo.ArtifactStore, logger *applogger.Logger, metrics drepo.Metrics) *FilingCollector {
	if logger == nil {
		logger = applogger.NewNop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &FilingCollector{index: index, docs: docs, artifacts: artifacts, logger: logger, metrics: metrics}
}

// Collect walks every day from..to inclusive. A failed listing or download
// skips that day or filing; only context cancellation aborts the run.
func (c *FilingCollector) Collect(ctx context.Context, from, to time.Time) (CollectSummary, error) {
	var sum CollectSummary

	for _, day := range util.DaysBetween(from, to) {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Days++

		entries, err := c.index.ListFilings(ctx, day)
		if err != nil {
			c.metrics.RecordError("list_filings")
			c.logger.Warn("filing list unavailable",
				applogger.String("date", day.Format(util.DateLayout)),
				applogger.Error(err))
			continue
		}

		for _, e := range entries {
			if !strings.Contains(e.DocDescription, models.RequiredDocType) {
				continue
			}
			sum.Listed++
			if err := c.collectOne(ctx, e, &sum); err != nil {
				return sum, err
			}
		}
	}

	c.logger.Info("download finished",
		applogger.Int("days", sum.Days),
		applogger.Int("listed", sum.Listed),
		applogger.Int("stored", sum.Stored),
		applogger.Int("skipped", sum.Skipped),
		applogger.Int("failed", sum.Failed))
	return sum, nil
}

// collectOne only returns an error when ctx is done.
func (c *FilingCollector) collectOne(ctx context.Context, e models.FilingEntry, sum *CollectSummary) error {
	a := models.Artifact{EdinetCode: e.EdinetCode, SubmitDateTime: e.SubmitDateTime, DocID: e.DocID}
	if c.artifacts.Mode() == drepo.ExistingSkip && c.artifacts.Exists(a) {
		sum.Skipped++
		c.metrics.RecordFiling("skipped")
		c.logger.Debug("artifact exists", applogger.String("doc_id", e.DocID))
		return nil
	}

	start := time.Now()
	content, err := c.docs.FetchDocument(ctx, e.DocID)
	c.metrics.RecordLatency("fetch_document", time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sum.Failed++
		c.metrics.RecordFiling("unavailable")
		c.logger.Warn("document unavailable",
			applogger.String("doc_id", e.DocID),
			applogger.String("filer", e.FilerName),
			applogger.Error(err))
		return nil
	}

	stored, err := c.artifacts.Save(ctx, a, bytes.NewReader(content))
	if err != nil {
		sum.Failed++
		c.metrics.RecordError("save_artifact")
		c.logger.Error("save artifact failed", applogger.String("doc_id", e.DocID), applogger.Error(err))
		return nil
	}
	if !stored {
		sum.Skipped++
		c.metrics.RecordFiling("skipped")
		return nil
	}
	sum.Stored++
	c.metrics.RecordFiling("stored")
	c.logger.Info("artifact stored",
		applogger.String("doc_id", e.DocID),
		applogger.String("filer", e.FilerName),
		applogger.Int("bytes", len(content)))
	return nil
}

// String renders the summary for CLI output.
func (s CollectSummary) String() string {
	return fmt.Sprintf("days=%d listed=%d stored=%d skipped=%d failed=%d", s.Days, s.Listed, s.Stored, s.Skipped, s.Failed)
}
