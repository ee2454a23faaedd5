package models

import "time"

// NoneLabel is returned by the profile provider for absent page sections.
const NoneLabel = "None"

// Quote is a market quote resolved from a company name.
// Price is -1 when nothing matched.
type Quote struct {
	Price       float64
	MarketValue float64
	Ticker      string
}

func (q Quote) Found() bool { return q.Price >= 0 }

// StockProfile is industry and sentiment data for a local market code.
type StockProfile struct {
	Code         string
	Name         string
	TargetPrice  float64
	AnalystNote  string
	PickNote     string
	IndustryName string
}

// Candidate is what the screener evaluates for a single filing.
type Candidate struct {
	Record  FilingRecord
	Facts   FactTable
	Metrics CompanyMetrics
}

// ScreeningResult is emitted for each candidate that passes every stage.
type ScreeningResult struct {
	RunID              string    `json:"run_id"`
	CompanyName        string    `json:"company_name"`
	CompanyCode        string    `json:"company_code"`
	DocID              string    `json:"doc_id"`
	ScoreRatio         float64   `json:"score_ratio"`
	PriceEarningsRatio float64   `json:"price_earnings_ratio"`
	CriticalRatio      float64   `json:"critical_ratio"`
	StockPrice         float64   `json:"stock_price"`
	IndustryName       string    `json:"industry_name"`
	AnalystNote        string    `json:"analyst_note"`
	PickNote           string    `json:"pick_note"`
	ScreenedAt         time.Time `json:"screened_at"`
}
