package usecase

import (
	"context"
	"iter"
	"strings"
	"time"

	"FinScreen/internal/domain/models"
	drepo "FinScreen/internal/domain/repository"
	dsvc "FinScreen/internal/domain/service"
	"FinScreen/internal/services/fundamentals"
	applogger "FinScreen/pkg/logger"
)

// Stage names, in canonical order.
const (
	StageCompanyName   = "company_name"
	StageScorePerStock = "score_per_stock"
	StageEarnings      = "earnings_per_stock"
	StageOptionalTier  = "optional_tier"
	StageQuote         = "quote"
	StageMarketCode    = "market_code"
	StageIndustry      = "industry"
	StageSentiment     = "sentiment"
	StageScoreRatio    = "score_ratio"
	StagePER           = "price_earnings_ratio"
)

// Thresholds configure the screening stages.
type Thresholds struct {
	MinScorePerStock      float64
	MinEarningsPerStock   float64
	MinScoreRatio         float64
	MaxPriceEarningsRatio float64
	// CodeLength is the length of a local market code, e.g. 4 for "7203".
	CodeLength           int
	BlacklistIndustries  []string
	UnfavourableAnalyst  []string
	UnfavourablePick     []string
	OptionalTier         bool
	MinAverageSalary     float64
	MinEarningPower      float64
	MinBoardMemberReward float64 // ten-thousand-yen units
}

// Evaluation accumulates what stages learn about one candidate.
type Evaluation struct {
	Candidate models.Candidate
	Quote     models.Quote
	Code      string
	Profile   models.StockProfile

	ScoreRatio         float64
	PriceEarningsRatio float64
}

// Stage is one predicate in the chain. Remote stages call out to a provider;
// a returned error counts as a rejection.
type Stage struct {
	Name   string
	Remote bool
	Check  func(ctx context.Context, ev *Evaluation) (bool, error)
}

// Screener runs candidates through its stages, stopping at the first failure.
type Screener struct {
	stages   []Stage
	quotes   dsvc.QuoteProvider
	profiles dsvc.ProfileProvider
	th       Thresholds
	logger   *applogger.Logger
	metrics  drepo.Metrics
	now      func() time.Time
}

type ScreenerOption func(*Screener)

func WithScreenerLogger(l *applogger.Logger) ScreenerOption {
	return func(s *Screener) { s.logger = l }
}

func WithScreenerMetrics(m drepo.Metrics) ScreenerOption {
	return func(s *Screener) { s.metrics = m }
}

func WithClock(now func() time.Time) ScreenerOption {
	return func(s *Screener) { s.now = now }
}

func NewScreener(th Thresholds, quotes dsvc.QuoteProvider, profiles dsvc.ProfileProvider, opts ...ScreenerOption) *Screener {
	s := &Screener{
		quotes:   quotes,
		profiles: profiles,
		th:       th,
		logger:   applogger.NewNop(),
		metrics:  nopMetrics{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stages = s.buildStages()
	return s
}

// Stages returns the active stages in evaluation order.
func (s *Screener) Stages() []Stage {
	out := make([]Stage, len(s.stages))
	copy(out, s.stages)
	return out
}

func (s *Screener) buildStages() []Stage {
	stages := []Stage{
		{Name: StageCompanyName, Check: s.companyName},
		{Name: StageScorePerStock, Check: s.scorePerStock},
		{Name: StageEarnings, Check: s.earnings},
	}
	if s.th.OptionalTier {
		stages = append(stages, Stage{Name: StageOptionalTier, Check: s.optionalTier})
	}
	return append(stages,
		Stage{Name: StageQuote, Remote: true, Check: s.quote},
		Stage{Name: StageMarketCode, Check: s.marketCode},
		Stage{Name: StageIndustry, Remote: true, Check: s.industry},
		Stage{Name: StageSentiment, Check: s.sentiment},
		Stage{Name: StageScoreRatio, Check: s.scoreRatio},
		Stage{Name: StagePER, Check: s.priceEarnings},
	)
}

// Evaluate runs one candidate. It returns the result and "" when every
// stage passed, or the name of the rejecting stage.
func (s *Screener) Evaluate(ctx context.Context, c models.Candidate) (models.ScreeningResult, string) {
	ev := &Evaluation{Candidate: c}
	for _, st := range s.stages {
		ok, err := st.Check(ctx, ev)
		if err != nil {
			s.metrics.RecordError(st.Name)
			s.logger.Warn("screening lookup failed",
				applogger.String("stage", st.Name),
				applogger.String("company", c.Metrics.CompanyName),
				applogger.String("doc_id", c.Record.DocID),
				applogger.Error(err))
		}
		if !ok || err != nil {
			s.metrics.RecordRejection(st.Name)
			s.logger.Debug("candidate rejected",
				applogger.String("stage", st.Name),
				applogger.String("company", c.Metrics.CompanyName),
				applogger.String("doc_id", c.Record.DocID))
			return models.ScreeningResult{}, st.Name
		}
	}
	s.metrics.RecordResult(ev.Profile.IndustryName)
	return s.result(ev), ""
}

// Screen lazily evaluates candidates in order and yields the survivors.
// Iteration stops early when ctx is done.
func (s *Screener) Screen(ctx context.Context, candidates iter.Seq[models.Candidate]) iter.Seq[models.ScreeningResult] {
	return func(yield func(models.ScreeningResult) bool) {
		for c := range candidates {
			if ctx.Err() != nil {
				return
			}
			res, rejected := s.Evaluate(ctx, c)
			if rejected != "" {
				continue
			}
			if !yield(res) {
				return
			}
		}
	}
}

func (s *Screener) result(ev *Evaluation) models.ScreeningResult {
	return models.ScreeningResult{
		CompanyName:        ev.Candidate.Metrics.CompanyName,
		CompanyCode:        ev.Code,
		DocID:              ev.Candidate.Record.DocID,
		ScoreRatio:         ev.ScoreRatio,
		PriceEarningsRatio: ev.PriceEarningsRatio,
		CriticalRatio:      ev.ScoreRatio / ev.PriceEarningsRatio,
		StockPrice:         ev.Quote.Price,
		IndustryName:       ev.Profile.IndustryName,
		AnalystNote:        ev.Profile.AnalystNote,
		PickNote:           ev.Profile.PickNote,
		ScreenedAt:         s.now(),
	}
}

// --- local stages ---

func (s *Screener) companyName(_ context.Context, ev *Evaluation) (bool, error) {
	return strings.TrimSpace(ev.Candidate.Metrics.CompanyName) != "", nil
}

func (s *Screener) scorePerStock(_ context.Context, ev *Evaluation) (bool, error) {
	return ev.Candidate.Metrics.ScorePerStock > s.th.MinScorePerStock, nil
}

func (s *Screener) earnings(_ context.Context, ev *Evaluation) (bool, error) {
	return ev.Candidate.Metrics.EarningsLossPerStock > s.th.MinEarningsPerStock, nil
}

func (s *Screener) optionalTier(_ context.Context, ev *Evaluation) (bool, error) {
	m := ev.Candidate.Metrics
	if m.AverageSalary <= s.th.MinAverageSalary {
		return false, nil
	}
	if fundamentals.EmployeeEarningPower(m) <= s.th.MinEarningPower {
		return false, nil
	}
	return m.AverageBoardMemberReward/10000 > s.th.MinBoardMemberReward, nil
}

func (s *Screener) marketCode(_ context.Context, ev *Evaluation) (bool, error) {
	code, ok := LocalMarketCode(ev.Quote.Ticker, s.th.CodeLength)
	if !ok {
		return false, nil
	}
	ev.Code = code
	ev.Candidate.Record.CompanyCode = code
	return true, nil
}

func (s *Screener) sentiment(_ context.Context, ev *Evaluation) (bool, error) {
	if containsAny(ev.Profile.AnalystNote, s.th.UnfavourableAnalyst) {
		return false, nil
	}
	return !containsAny(ev.Profile.PickNote, s.th.UnfavourablePick), nil
}

func (s *Screener) scoreRatio(_ context.Context, ev *Evaluation) (bool, error) {
	ev.ScoreRatio = ev.Candidate.Metrics.ScorePerStock / ev.Quote.Price
	return ev.ScoreRatio >= s.th.MinScoreRatio, nil
}

func (s *Screener) priceEarnings(_ context.Context, ev *Evaluation) (bool, error) {
	eps := ev.Candidate.Metrics.EarningsLossPerStock
	if eps <= 0 {
		return false, nil
	}
	ev.PriceEarningsRatio = ev.Quote.Price / eps
	return ev.PriceEarningsRatio <= s.th.MaxPriceEarningsRatio, nil
}

// --- remote stages ---

func (s *Screener) quote(ctx context.Context, ev *Evaluation) (bool, error) {
	start := time.Now()
	q, err := s.quotes.Quote(ctx, ev.Candidate.Metrics.CompanyName)
	s.metrics.RecordLatency("quote", time.Since(start).Seconds())
	if err != nil {
		return false, err
	}
	ev.Quote = q
	return q.Found() && q.Price > 0, nil
}

// industry fetches the profile once; the sentiment stage reads the notes
// from the same lookup.
func (s *Screener) industry(ctx context.Context, ev *Evaluation) (bool, error) {
	start := time.Now()
	p, err := s.profiles.Profile(ctx, ev.Code)
	s.metrics.RecordLatency("profile", time.Since(start).Seconds())
	if err != nil {
		return false, err
	}
	ev.Profile = p
	industry := strings.TrimSpace(p.IndustryName)
	if industry == "" || industry == models.NoneLabel {
		return false, nil
	}
	for _, b := range s.th.BlacklistIndustries {
		if industry == b {
			return false, nil
		}
	}
	return true, nil
}

// LocalMarketCode derives the local code from a quote ticker such as
// "7203.T". Codes must have the configured length and start with a digit;
// foreign symbols and suffixed listings are rejected.
func LocalMarketCode(ticker string, length int) (string, bool) {
	code, _, _ := strings.Cut(strings.TrimSpace(ticker), ".")
	if len(code) != length || length == 0 {
		return "", false
	}
	if code[0] < '0' || code[0] > '9' {
		return "", false
	}
	for i := 1; i < len(code); i++ {
		ch := code[i]
		if (ch < '0' || ch > '9') && (ch < 'A' || ch > 'Z') {
			return "", false
		}
	}
	return code, true
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}

type nopMetrics struct{}

func (nopMetrics) RecordFiling(string)           {}
func (nopMetrics) RecordRejection(string)        {}
func (nopMetrics) RecordResult(string)           {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}
