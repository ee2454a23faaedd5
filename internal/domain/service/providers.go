package service

import (
	"context"
	"time"

	"FinScreen/internal/domain/models"
)

// FilingIndex lists disclosure filings submitted on a date.
type FilingIndex interface {
	ListFilings(ctx context.Context, date time.Time) ([]models.FilingEntry, error)
}

// DocumentFetcher returns the public XBRL instance of a filing.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, docID string) ([]byte, error)
}

// QuoteProvider resolves a market quote from a company name.
type QuoteProvider interface {
	Quote(ctx context.Context, companyName string) (models.Quote, error)
}

// ProfileProvider resolves industry and sentiment data from a local market code.
type ProfileProvider interface {
	Profile(ctx context.Context, code string) (models.StockProfile, error)
}
