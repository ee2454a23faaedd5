package usecase

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinScreen/internal/domain/models"
)

type stubQuotes struct {
	calls  int
	quotes map[string]models.Quote
	err    error
}

func (s *stubQuotes) Quote(_ context.Context, name string) (models.Quote, error) {
	s.calls++
	if s.err != nil {
		return models.Quote{}, s.err
	}
	if q, ok := s.quotes[name]; ok {
		return q, nil
	}
	return models.Quote{Price: -1, MarketValue: -1}, nil
}

type stubProfiles struct {
	calls    int
	profiles map[string]models.StockProfile
	err      error
}

func (s *stubProfiles) Profile(_ context.Context, code string) (models.StockProfile, error) {
	s.calls++
	if s.err != nil {
		return models.StockProfile{}, s.err
	}
	if p, ok := s.profiles[code]; ok {
		return p, nil
	}
	return models.StockProfile{Code: code, AnalystNote: models.NoneLabel, PickNote: models.NoneLabel, IndustryName: models.NoneLabel}, nil
}

type countingMetrics struct {
	rejections map[string]int
	results    int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{rejections: map[string]int{}}
}

func (m *countingMetrics) RecordFiling(string)           {}
func (m *countingMetrics) RecordRejection(stage string)  { m.rejections[stage]++ }
func (m *countingMetrics) RecordResult(string)           { m.results++ }
func (m *countingMetrics) RecordError(string)            {}
func (m *countingMetrics) RecordLatency(string, float64) {}

func testThresholds() Thresholds {
	return Thresholds{
		MinScorePerStock:      0,
		MinEarningsPerStock:   0,
		MinScoreRatio:         0.1,
		MaxPriceEarningsRatio: 10,
		CodeLength:            4,
		BlacklistIndustries:   []string{"Construction", "Banking", "Real Estate"},
		UnfavourableAnalyst:   []string{"overvalued"},
		UnfavourablePick:      []string{"sell"},
	}
}

const itCompany = "テスト情報システム株式会社"

func itCandidate() models.Candidate {
	return models.Candidate{
		Record: models.FilingRecord{FilerName: itCompany, DocID: "S100TEST"},
		Metrics: models.CompanyMetrics{
			CompanyName:          itCompany,
			ScorePerStock:        150,
			EarningsLossPerStock: 120,
		},
	}
}

func itProviders() (*stubQuotes, *stubProfiles) {
	q := &stubQuotes{quotes: map[string]models.Quote{
		itCompany: {Price: 100, MarketValue: 5e9, Ticker: "4444.T"},
	}}
	p := &stubProfiles{profiles: map[string]models.StockProfile{
		"4444": {Code: "4444", IndustryName: "Information Technology", AnalystNote: "fairly valued", PickNote: "buy"},
	}}
	return q, p
}

func seqOf(cs ...models.Candidate) func(func(models.Candidate) bool) {
	return func(yield func(models.Candidate) bool) {
		for _, c := range cs {
			if !yield(c) {
				return
			}
		}
	}
}

func TestScreenEndToEnd(t *testing.T) {
	quotes, profiles := itProviders()
	fixed := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	s := NewScreener(testThresholds(), quotes, profiles, WithClock(func() time.Time { return fixed }))

	results := slices.Collect(s.Screen(context.Background(), seqOf(itCandidate())))
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, itCompany, r.CompanyName)
	assert.Equal(t, "4444", r.CompanyCode)
	assert.Equal(t, 100.0, r.StockPrice)
	assert.InDelta(t, 1.5, r.ScoreRatio, 1e-9)
	assert.InDelta(t, 100.0/120.0, r.PriceEarningsRatio, 1e-9)
	assert.InDelta(t, 1.8, r.CriticalRatio, 1e-9)
	assert.Equal(t, "Information Technology", r.IndustryName)
	assert.Equal(t, "fairly valued", r.AnalystNote)
	assert.Equal(t, "buy", r.PickNote)
	assert.Equal(t, fixed, r.ScreenedAt)
}

func TestScreenShortCircuitsBeforeRemoteLookups(t *testing.T) {
	quotes, profiles := itProviders()
	th := testThresholds()
	th.MinScorePerStock = 200
	metrics := newCountingMetrics()
	s := NewScreener(th, quotes, profiles, WithScreenerMetrics(metrics))

	results := slices.Collect(s.Screen(context.Background(), seqOf(itCandidate())))

	assert.Empty(t, results)
	assert.Equal(t, 0, quotes.calls)
	assert.Equal(t, 0, profiles.calls)
	assert.Equal(t, 1, metrics.rejections[StageScorePerStock])
}

func TestEvaluateRejectingStage(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(c *models.Candidate, q *stubQuotes, p *stubProfiles, th *Thresholds)
		stage        string
		quoteCalls   int
		profileCalls int
	}{
		{
			name:   "no company name",
			mutate: func(c *models.Candidate, _ *stubQuotes, _ *stubProfiles, _ *Thresholds) { c.Metrics.CompanyName = "" },
			stage:  StageCompanyName,
		},
		{
			name: "earnings below minimum",
			mutate: func(c *models.Candidate, _ *stubQuotes, _ *stubProfiles, _ *Thresholds) {
				c.Metrics.EarningsLossPerStock = -3
			},
			stage: StageEarnings,
		},
		{
			name: "quote not found",
			mutate: func(_ *models.Candidate, q *stubQuotes, _ *stubProfiles, _ *Thresholds) {
				q.quotes = nil
			},
			stage:      StageQuote,
			quoteCalls: 1,
		},
		{
			name: "quote error",
			mutate: func(_ *models.Candidate, q *stubQuotes, _ *stubProfiles, _ *Thresholds) {
				q.err = errors.New("connection reset")
			},
			stage:      StageQuote,
			quoteCalls: 1,
		},
		{
			name: "foreign ticker",
			mutate: func(_ *models.Candidate, q *stubQuotes, _ *stubProfiles, _ *Thresholds) {
				q.quotes[itCompany] = models.Quote{Price: 100, Ticker: "AAPL"}
			},
			stage:      StageMarketCode,
			quoteCalls: 1,
		},
		{
			name: "blacklisted industry",
			mutate: func(_ *models.Candidate, _ *stubQuotes, p *stubProfiles, _ *Thresholds) {
				p.profiles["4444"] = models.StockProfile{IndustryName: "Banking"}
			},
			stage:        StageIndustry,
			quoteCalls:   1,
			profileCalls: 1,
		},
		{
			name: "industry missing",
			mutate: func(_ *models.Candidate, _ *stubQuotes, p *stubProfiles, _ *Thresholds) {
				p.profiles = nil
			},
			stage:        StageIndustry,
			quoteCalls:   1,
			profileCalls: 1,
		},
		{
			name: "overvalued",
			mutate: func(_ *models.Candidate, _ *stubQuotes, p *stubProfiles, _ *Thresholds) {
				p.profiles["4444"] = models.StockProfile{IndustryName: "Information Technology", AnalystNote: "overvalued", PickNote: "buy"}
			},
			stage:        StageSentiment,
			quoteCalls:   1,
			profileCalls: 1,
		},
		{
			name: "crowd says sell",
			mutate: func(_ *models.Candidate, _ *stubQuotes, p *stubProfiles, _ *Thresholds) {
				p.profiles["4444"] = models.StockProfile{IndustryName: "Information Technology", AnalystNote: models.NoneLabel, PickNote: "strong sell"}
			},
			stage:        StageSentiment,
			quoteCalls:   1,
			profileCalls: 1,
		},
		{
			name: "score ratio too low",
			mutate: func(_ *models.Candidate, _ *stubQuotes, _ *stubProfiles, th *Thresholds) {
				th.MinScoreRatio = 2
			},
			stage:        StageScoreRatio,
			quoteCalls:   1,
			profileCalls: 1,
		},
		{
			name: "per too high",
			mutate: func(_ *models.Candidate, _ *stubQuotes, _ *stubProfiles, th *Thresholds) {
				th.MaxPriceEarningsRatio = 0.5
			},
			stage:        StagePER,
			quoteCalls:   1,
			profileCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := itCandidate()
			quotes, profiles := itProviders()
			th := testThresholds()
			tt.mutate(&c, quotes, profiles, &th)

			s := NewScreener(th, quotes, profiles)
			_, stage := s.Evaluate(context.Background(), c)

			assert.Equal(t, tt.stage, stage)
			assert.Equal(t, tt.quoteCalls, quotes.calls)
			assert.Equal(t, tt.profileCalls, profiles.calls)
		})
	}
}

func TestEvaluatePERRejectsNonPositiveEarnings(t *testing.T) {
	quotes, profiles := itProviders()
	th := testThresholds()
	th.MinEarningsPerStock = -100
	c := itCandidate()
	c.Metrics.EarningsLossPerStock = 0

	_, stage := NewScreener(th, quotes, profiles).Evaluate(context.Background(), c)
	assert.Equal(t, StagePER, stage)
}

func TestOptionalTier(t *testing.T) {
	base := itCandidate()
	base.Metrics.AverageSalary = 8_000_000
	base.Metrics.NumberOfIssuedShares = 1_000_000
	base.Metrics.NumberOfEmployees = 100
	// 120 * 1e6 / 100 / 8e6 = 0.15
	base.Metrics.AverageBoardMemberReward = 20_000_000

	th := testThresholds()
	th.OptionalTier = true
	th.MinAverageSalary = 6_000_000
	th.MinEarningPower = 0.1
	th.MinBoardMemberReward = 1000

	tests := []struct {
		name   string
		mutate func(m *models.CompanyMetrics)
		stage  string
	}{
		{"passes", func(*models.CompanyMetrics) {}, ""},
		{"low salary", func(m *models.CompanyMetrics) { m.AverageSalary = 5_000_000 }, StageOptionalTier},
		{"no employees", func(m *models.CompanyMetrics) { m.NumberOfEmployees = 0 }, StageOptionalTier},
		{"low board reward", func(m *models.CompanyMetrics) { m.AverageBoardMemberReward = 9_000_000 }, StageOptionalTier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c.Metrics)
			quotes, profiles := itProviders()

			_, stage := NewScreener(th, quotes, profiles).Evaluate(context.Background(), c)
			assert.Equal(t, tt.stage, stage)
			if tt.stage != "" {
				assert.Equal(t, 0, quotes.calls)
			}
		})
	}
}

func TestStagesCanonicalOrder(t *testing.T) {
	quotes, profiles := itProviders()
	names := func(th Thresholds) []string {
		var out []string
		for _, st := range NewScreener(th, quotes, profiles).Stages() {
			out = append(out, st.Name)
		}
		return out
	}

	th := testThresholds()
	assert.Equal(t, []string{
		StageCompanyName, StageScorePerStock, StageEarnings,
		StageQuote, StageMarketCode, StageIndustry, StageSentiment,
		StageScoreRatio, StagePER,
	}, names(th))

	th.OptionalTier = true
	assert.Equal(t, StageOptionalTier, names(th)[3])

	// every remote stage comes after every local metric stage
	seenRemote := false
	for _, st := range NewScreener(th, quotes, profiles).Stages() {
		if st.Remote {
			seenRemote = true
			continue
		}
		if seenRemote {
			assert.NotContains(t, []string{StageCompanyName, StageScorePerStock, StageEarnings, StageOptionalTier}, st.Name)
		}
	}
}

func TestScreenPreservesScanOrderAndIsLazy(t *testing.T) {
	mk := func(name, ticker string, score float64) (models.Candidate, models.Quote) {
		c := itCandidate()
		c.Metrics.CompanyName = name
		c.Metrics.ScorePerStock = score
		return c, models.Quote{Price: 100, Ticker: ticker}
	}
	c1, q1 := mk("Low", "1111.T", 20)
	c2, q2 := mk("High", "2222.T", 900)
	c3, q3 := mk("Mid", "3333.T", 150)

	quotes := &stubQuotes{quotes: map[string]models.Quote{"Low": q1, "High": q2, "Mid": q3}}
	it := models.StockProfile{IndustryName: "Information Technology"}
	profiles := &stubProfiles{profiles: map[string]models.StockProfile{"1111": it, "2222": it, "3333": it}}
	s := NewScreener(testThresholds(), quotes, profiles)

	var names []string
	for r := range s.Screen(context.Background(), seqOf(c1, c2, c3)) {
		names = append(names, r.CompanyName)
	}
	assert.Equal(t, []string{"Low", "High", "Mid"}, names)

	quotes.calls = 0
	for range s.Screen(context.Background(), seqOf(c1, c2, c3)) {
		break
	}
	assert.Equal(t, 1, quotes.calls)
}

func TestScreenStopsOnCancelledContext(t *testing.T) {
	quotes, profiles := itProviders()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := slices.Collect(NewScreener(testThresholds(), quotes, profiles).Screen(ctx, seqOf(itCandidate())))
	assert.Empty(t, results)
	assert.Equal(t, 0, quotes.calls)
}

func TestLocalMarketCode(t *testing.T) {
	tests := []struct {
		ticker string
		code   string
		ok     bool
	}{
		{"7203.T", "7203", true},
		{"130A.T", "130A", true},
		{"7203", "7203", true},
		{"AAPL", "", false},
		{"12345.T", "", false},
		{"1306.t", "1306", true},
		{"", "", false},
		{"72a3.T", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			code, ok := LocalMarketCode(tt.ticker, 4)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}
