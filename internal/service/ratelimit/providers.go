package ratelimit

import (
	"context"
	"time"

	"FinScreen/internal/domain/models"
	dsvc "FinScreen/internal/domain/service"
	"FinScreen/internal/service/metrics"
)

// Pace configures one token bucket.
type Pace struct {
	Key       string
	Burst     float64
	PerSecond float64
}

// Quotes spaces out quote lookups.
type Quotes struct {
	next dsvc.QuoteProvider
	l    *Limiter
	pace Pace
}

// Profiles spaces out profile lookups.
type Profiles struct {
	next dsvc.ProfileProvider
	l    *Limiter
	pace Pace
}

var (
	_ dsvc.QuoteProvider   = (*Quotes)(nil)
	_ dsvc.ProfileProvider = (*Profiles)(nil)
)

func NewQuotes(next dsvc.QuoteProvider, l *Limiter, p Pace) *Quotes {
	return &Quotes{next: next, l: l, pace: p}
}

func NewProfiles(next dsvc.ProfileProvider, l *Limiter, p Pace) *Profiles {
	return &Profiles{next: next, l: l, pace: p}
}

func (q *Quotes) Quote(ctx context.Context, companyName string) (models.Quote, error) {
	if err := q.l.wait(ctx, q.pace); err != nil {
		return models.Quote{Price: -1, MarketValue: -1}, err
	}
	return q.next.Quote(ctx, companyName)
}

func (p *Profiles) Profile(ctx context.Context, code string) (models.StockProfile, error) {
	if err := p.l.wait(ctx, p.pace); err != nil {
		return models.StockProfile{Code: code}, err
	}
	return p.next.Profile(ctx, code)
}

func (l *Limiter) wait(ctx context.Context, p Pace) error {
	start := time.Now()
	err := l.Wait(ctx, p.Key, p.Burst, p.PerSecond)
	metrics.LookupWait.WithLabelValues(p.Key).Observe(time.Since(start).Seconds())
	return err
}
