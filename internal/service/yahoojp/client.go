package yahoojp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"FinScreen/internal/domain/models"
	dsvc "FinScreen/internal/domain/service"
	xhttp "FinScreen/pkg/http"
	"FinScreen/pkg/logger"
	"FinScreen/pkg/util"

	"github.com/PuerkitoBio/goquery"
)

// Search result markup. The class names are generated by the site build and
// change without notice.
const (
	resultLinkSelector  = "a._1WbkBLD0"
	priceSelector       = "span._1fofaCjs._2aohzPlv._2eYW5OYe"
	marketValueSelector = "span._3rXWJKZF._1NrnBlaN"

	// market value is listed in millions of yen
	marketValueUnit = 1_000_000
	corporateSuffix = "株式会社"
)

// ErrQuoteNotFound means no search hit matched the company name.
var ErrQuoteNotFound = errors.New("yahoojp: no matching search result")

// NotFound is the quote reported for unmatched names.
var NotFound = models.Quote{Price: -1, MarketValue: -1}

// Client resolves quotes from the Yahoo!ファイナンス search page.
type Client struct {
	baseURL string
	http    *xhttp.Client
	log     *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(c *xhttp.Client) Option { return func(cl *Client) { cl.http = c } }
func WithLogger(l *logger.Logger) Option    { return func(cl *Client) { cl.log = l } }

var _ dsvc.QuoteProvider = (*Client)(nil)

func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(15 * time.Second))
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	return c
}

// Quote searches for companyName with the corporate suffix removed and reads
// the first hit whose text contains it. An unmatched name is not an error:
// it yields NotFound.
func (c *Client) Quote(ctx context.Context, companyName string) (models.Quote, error) {
	name := SearchName(companyName)
	if name == "" {
		return NotFound, nil
	}

	body, err := c.http.Fetch(ctx, c.baseURL+"/search/", map[string][]string{"query": {name}}, nil)
	if err != nil {
		return NotFound, fmt.Errorf("search %q: %w", name, err)
	}

	q, err := ParseSearch(body, name)
	if errors.Is(err, ErrQuoteNotFound) {
		c.log.Debug("no quote", logger.String("company", name))
		return NotFound, nil
	}
	if err != nil {
		return NotFound, fmt.Errorf("parse search %q: %w", name, err)
	}
	return q, nil
}

// SearchName strips the corporate suffix used in filings.
func SearchName(companyName string) string {
	return strings.TrimSpace(strings.ReplaceAll(companyName, corporateSuffix, ""))
}

// ParseSearch extracts the quote from a search result page. A matching hit
// without a price span keeps the -1 price.
func ParseSearch(page []byte, name string) (models.Quote, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return NotFound, fmt.Errorf("read html: %w", err)
	}

	q := NotFound
	found := false
	doc.Find(resultLinkSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(a.Text(), name) {
			return true
		}
		found = true

		if v, ok := util.ParseNumber(a.Find(priceSelector).Last().Text()); ok {
			q.Price = v
		}
		if v, ok := util.ParseNumber(a.Find(marketValueSelector).Last().Text()); ok {
			q.MarketValue = v * marketValueUnit
		}
		href, _ := a.Attr("href")
		q.Ticker = lastSegment(href)
		return false
	})
	if !found {
		return NotFound, ErrQuoteNotFound
	}
	return q, nil
}

func lastSegment(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
