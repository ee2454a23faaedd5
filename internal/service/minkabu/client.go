package minkabu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FinScreen/internal/domain/models"
	dsvc "FinScreen/internal/domain/service"
	xhttp "FinScreen/pkg/http"
	"FinScreen/pkg/logger"
	"FinScreen/pkg/util"

	"github.com/PuerkitoBio/goquery"
)

const (
	nameSelector        = "p.md_stockBoard_stockName"
	targetPriceSelector = "div.md_target_box_price"
	industrySelector    = "span.md_ico_tx.theme_link.size_s.md_head_icon"
	labelSelector       = "p.label"
)

// Client reads stock pages from みんかぶ.
type Client struct {
	baseURL string
	http    *xhttp.Client
	log     *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(c *xhttp.Client) Option { return func(cl *Client) { cl.http = c } }
func WithLogger(l *logger.Logger) Option    { return func(cl *Client) { cl.log = l } }

var _ dsvc.ProfileProvider = (*Client)(nil)

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

// EmptyProfile has every text section set to models.NoneLabel.
func EmptyProfile(code string) models.StockProfile {
	return models.StockProfile{
		Code:         code,
		Name:         models.NoneLabel,
		AnalystNote:  models.NoneLabel,
		PickNote:     models.NoneLabel,
		IndustryName: models.NoneLabel,
	}
}

// Profile fetches /stock/{code}. An unknown code (404) is reported as an
// empty profile rather than an error.
func (c *Client) Profile(ctx context.Context, code string) (models.StockProfile, error) {
	body, err := c.http.Fetch(ctx, c.baseURL+"/stock/"+url.PathEscape(code), nil, nil)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			c.log.Debug("unknown stock page", logger.String("code", code))
			return EmptyProfile(code), nil
		}
		return EmptyProfile(code), fmt.Errorf("stock page %s: %w", code, err)
	}
	return ParseProfile(body, code)
}

// ParseProfile reads the stock page. Absent sections yield models.NoneLabel
// and an absent target price yields 0.
func ParseProfile(page []byte, code string) (models.StockProfile, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return EmptyProfile(code), fmt.Errorf("read html: %w", err)
	}

	p := EmptyProfile(code)
	if s := doc.Find(nameSelector).First(); s.Length() > 0 {
		p.Name = strings.TrimSpace(s.Text())
	}
	if v, ok := util.ParseNumber(doc.Find(targetPriceSelector).First().Text()); ok {
		p.TargetPrice = v
	}
	p.AnalystNote = labelledValue(doc, "/stock/"+code+"/research")
	p.PickNote = labelledValue(doc, "/stock/"+code+"/pick")
	p.IndustryName = nextText(doc.Find(industrySelector).First())
	return p, nil
}

// labelledValue reads the element following the label inside the link to href.
func labelledValue(doc *goquery.Document, href string) string {
	root := doc.Find(fmt.Sprintf("a[href=%q]", href)).First()
	if root.Length() == 0 {
		return models.NoneLabel
	}
	return nextText(root.Find(labelSelector).First())
}

func nextText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return models.NoneLabel
	}
	next := s.Next()
	if next.Length() == 0 {
		return models.NoneLabel
	}
	text := strings.TrimSpace(next.Text())
	if text == "" {
		return models.NoneLabel
	}
	return text
}
