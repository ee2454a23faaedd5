package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"FinScreen/internal/domain/models"
	"FinScreen/internal/domain/repository"
)

// MemoryStorage keeps results in process for `serve` without ClickHouse.
// Like the ReplacingMergeTree table it keeps the latest row per
// (company_code, doc_id).
type MemoryStorage struct {
	mu   sync.RWMutex
	rows map[[2]string]models.ScreeningResult
}

var _ repository.Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{rows: make(map[[2]string]models.ScreeningResult)}
}

func (s *MemoryStorage) Init(context.Context) error { return nil }

func (s *MemoryStorage) Store(ctx context.Context, r *models.ScreeningResult) error {
	return s.StoreBatch(ctx, []*models.ScreeningResult{r})
}

func (s *MemoryStorage) StoreBatch(_ context.Context, results []*models.ScreeningResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		if r == nil || r.CompanyName == "" {
			continue
		}
		key := [2]string{r.CompanyCode, r.DocID}
		if old, ok := s.rows[key]; ok && old.ScreenedAt.After(r.ScreenedAt) {
			continue
		}
		s.rows[key] = *r
	}
	return nil
}

// Query mirrors ClickHouseStorage.Query.
func (s *MemoryStorage) Query(_ context.Context, from time.Time, minRatio float64, industry string, limit int) ([]*models.ScreeningResult, error) {
	s.mu.RLock()
	out := make([]*models.ScreeningResult, 0, len(s.rows))
	for _, r := range s.rows {
		if r.ScreenedAt.Before(from) || r.CriticalRatio < minRatio {
			continue
		}
		if industry != "" && r.IndustryName != industry {
			continue
		}
		out = append(out, &r)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CriticalRatio != out[j].CriticalRatio {
			return out[i].CriticalRatio > out[j].CriticalRatio
		}
		return out[i].CompanyCode < out[j].CompanyCode
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) Health(context.Context) error { return nil }
func (s *MemoryStorage) Close() error                 { return nil }
