package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinScreen/internal/domain/models"
	"FinScreen/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingQuotes struct {
	calls int
	q     models.Quote
	err   error
}

func (c *countingQuotes) Quote(context.Context, string) (models.Quote, error) {
	c.calls++
	return c.q, c.err
}

type countingProfiles struct{ calls int }

func (c *countingProfiles) Profile(_ context.Context, code string) (models.StockProfile, error) {
	c.calls++
	return models.StockProfile{Code: code, IndustryName: "機械"}, nil
}

func TestQuotesServedFromCache(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	next := &countingQuotes{q: models.Quote{Price: 1000, MarketValue: 5e9, Ticker: "1234.T"}}
	q := NewQuotes(next, mem, time.Hour, nil)

	for i := 0; i < 3; i++ {
		got, err := q.Quote(context.Background(), "サンプル工業")
		require.NoError(t, err)
		assert.Equal(t, next.q, got)
	}
	assert.Equal(t, 1, next.calls)
}

func TestQuotesCachesNotFound(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	next := &countingQuotes{q: models.Quote{Price: -1, MarketValue: -1}}
	q := NewQuotes(next, mem, time.Hour, nil)

	_, _ = q.Quote(context.Background(), "x")
	got, err := q.Quote(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, got.Found())
	assert.Equal(t, 1, next.calls)
}

func TestQuotesDoesNotCacheErrors(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	next := &countingQuotes{err: errors.New("boom")}
	q := NewQuotes(next, mem, time.Hour, nil)

	_, err := q.Quote(context.Background(), "x")
	require.Error(t, err)
	_, err = q.Quote(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestProfilesKeyedByCode(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	next := &countingProfiles{}
	p := NewProfiles(next, mem, time.Hour, nil)

	a, err := p.Profile(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, "1234", a.Code)
	_, _ = p.Profile(context.Background(), "1234")
	b, _ := p.Profile(context.Background(), "5678")
	assert.Equal(t, "5678", b.Code)
	assert.Equal(t, 2, next.calls)
}
