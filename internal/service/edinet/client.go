package edinet

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"FinScreen/internal/domain/models"
	dsvc "FinScreen/internal/domain/service"
	xhttp "FinScreen/pkg/http"
	"FinScreen/pkg/logger"
	"FinScreen/pkg/util"
)

const (
	// listTypeWithMetadata asks the index for full rows rather than counts.
	listTypeWithMetadata = "2"
	// documentTypeXBRL requests the submission archive with XBRL content.
	documentTypeXBRL = "5"
)

var (
	ErrDocumentUnavailable = errors.New("edinet: document unavailable")
	ErrPublicDocNotFound   = errors.New("edinet: no public xbrl instance in archive")
)

// Client talks to the EDINET v2 API.
type Client struct {
	listURL     string
	documentURL string
	apiKey      string
	http        *xhttp.Client
	log         *logger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. The client's attempt bound applies
// to document downloads.
func WithHTTPClient(c *xhttp.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

var (
	_ dsvc.FilingIndex     = (*Client)(nil)
	_ dsvc.DocumentFetcher = (*Client)(nil)
)

// New creates a Client. listURL points at documents.json and documentURL at
// the documents endpoint the doc id is appended to.
func New(listURL, documentURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		listURL:     listURL,
		documentURL: strings.TrimRight(documentURL, "/"),
		apiKey:      apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(60*time.Second), xhttp.WithMaxAttempts(3))
	}
	return c
}

type listResponse struct {
	Metadata struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"metadata"`
	// Error responses carry the code at the top level.
	StatusCode int          `json:"statusCode"`
	Message    string       `json:"message"`
	Results    []listResult `json:"results"`
}

type listResult struct {
	DocID          string  `json:"docID"`
	EdinetCode     *string `json:"edinetCode"`
	SecCode        *string `json:"secCode"`
	FilerName      *string `json:"filerName"`
	DocDescription *string `json:"docDescription"`
	SubmitDateTime *string `json:"submitDateTime"`
}

// ListFilings returns every filing indexed on date (JST calendar day).
func (c *Client) ListFilings(ctx context.Context, date time.Time) ([]models.FilingEntry, error) {
	day := date.In(util.JST).Format(util.DateLayout)

	var resp listResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.listURL,
		QueryParams: map[string][]string{
			"date":             {day},
			"type":             {listTypeWithMetadata},
			"Subscription-Key": {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("list filings %s: %w", day, err)
	}
	if resp.StatusCode != 0 && resp.StatusCode != 200 {
		return nil, fmt.Errorf("list filings %s: api status %d: %s", day, resp.StatusCode, resp.Message)
	}
	if resp.Metadata.Status != "" && resp.Metadata.Status != "200" {
		return nil, fmt.Errorf("list filings %s: api status %s: %s", day, resp.Metadata.Status, resp.Metadata.Message)
	}

	entries := make([]models.FilingEntry, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.DocID == "" {
			continue
		}
		entries = append(entries, models.FilingEntry{
			DocID:          r.DocID,
			EdinetCode:     deref(r.EdinetCode),
			SecCode:        deref(r.SecCode),
			FilerName:      deref(r.FilerName),
			DocDescription: deref(r.DocDescription),
			SubmitDateTime: deref(r.SubmitDateTime),
		})
	}
	c.log.Debug("filings listed", logger.String("date", day), logger.Int("count", len(entries)))
	return entries, nil
}

// FetchDocument downloads the submission archive of docID and returns the
// public XBRL instance inside it. Failed downloads are retried up to the
// HTTP client's attempt bound and then reported as ErrDocumentUnavailable.
func (c *Client) FetchDocument(ctx context.Context, docID string) ([]byte, error) {
	u := c.documentURL + "/" + url.PathEscape(docID)

	body, err := c.http.Fetch(ctx, u, map[string][]string{
		"type":             {documentTypeXBRL},
		"Subscription-Key": {c.apiKey},
	}, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentUnavailable, docID, err)
	}

	content, member, err := ExtractPublicInstance(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", docID, err)
	}
	c.log.Debug("document extracted", logger.String("doc_id", docID), logger.String("member", member))
	return content, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
