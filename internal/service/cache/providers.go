package cache

import (
	"context"
	"errors"
	"time"

	"FinScreen/internal/domain/models"
	dsvc "FinScreen/internal/domain/service"
	"FinScreen/internal/service/metrics"
	"FinScreen/pkg/cache"
	"FinScreen/pkg/logger"
)

// Quotes caches quote lookups by company name. Not-found quotes are cached
// too; lookup errors are not.
type Quotes struct {
	next dsvc.QuoteProvider
	c    cache.Service
	ttl  time.Duration
	log  *logger.Logger
}

// Profiles caches profile lookups by market code.
type Profiles struct {
	next dsvc.ProfileProvider
	c    cache.Service
	ttl  time.Duration
	log  *logger.Logger
}

var (
	_ dsvc.QuoteProvider   = (*Quotes)(nil)
	_ dsvc.ProfileProvider = (*Profiles)(nil)
)

func NewQuotes(next dsvc.QuoteProvider, c cache.Service, ttl time.Duration, l *logger.Logger) *Quotes {
	if l == nil {
		l = logger.NewNop()
	}
	return &Quotes{next: next, c: c, ttl: ttl, log: l}
}

func NewProfiles(next dsvc.ProfileProvider, c cache.Service, ttl time.Duration, l *logger.Logger) *Profiles {
	if l == nil {
		l = logger.NewNop()
	}
	return &Profiles{next: next, c: c, ttl: ttl, log: l}
}

func (q *Quotes) Quote(ctx context.Context, companyName string) (models.Quote, error) {
	key := cache.GenerateKey("quote", cache.HashKey(companyName))
	return lookup(ctx, q.c, q.log, "quote", key, q.ttl, func() (models.Quote, error) {
		return q.next.Quote(ctx, companyName)
	})
}

func (p *Profiles) Profile(ctx context.Context, code string) (models.StockProfile, error) {
	key := cache.GenerateKey("profile", code)
	return lookup(ctx, p.c, p.log, "profile", key, p.ttl, func() (models.StockProfile, error) {
		return p.next.Profile(ctx, code)
	})
}

// lookup serves key from c or calls fetch and stores its result. Cache
// failures only cost a remote call.
func lookup[T any](ctx context.Context, c cache.Service, l *logger.Logger, provider, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var v T
	err := c.Get(ctx, key, &v)
	switch {
	case err == nil:
		metrics.LookupCache.WithLabelValues(provider, "hit").Inc()
		return v, nil
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.LookupCache.WithLabelValues(provider, "miss").Inc()
	default:
		metrics.LookupCache.WithLabelValues(provider, "error").Inc()
		l.Warn("cache read failed", logger.String("key", key), logger.Error(err))
	}

	v, err = fetch()
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		l.Warn("cache write failed", logger.String("key", key), logger.Error(err))
	}
	return v, nil
}
