package yahoojp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T) []byte {
	t.Helper()
	page, err := os.ReadFile("testdata/search.html")
	require.NoError(t, err)
	return page
}

func TestSearchName(t *testing.T) {
	assert.Equal(t, "トヨタ自動車", SearchName("トヨタ自動車株式会社"))
	assert.Equal(t, "ソニーグループ", SearchName("株式会社 ソニーグループ"))
	assert.Equal(t, "", SearchName("株式会社"))
}

func TestParseSearchFirstMatchingHit(t *testing.T) {
	q, err := ParseSearch(readFixture(t), "トヨタ自動車")
	require.NoError(t, err)
	assert.Equal(t, 2850.0, q.Price)
	assert.Equal(t, 46498000.0*1e6, q.MarketValue)
	assert.Equal(t, "7203.T", q.Ticker)
	assert.True(t, q.Found())
}

func TestParseSearchMissingPrice(t *testing.T) {
	q, err := ParseSearch(readFixture(t), "価格なし工業")
	require.NoError(t, err)
	assert.Equal(t, -1.0, q.Price)
	assert.Equal(t, -1.0, q.MarketValue)
	assert.Equal(t, "9999.T", q.Ticker)
	assert.False(t, q.Found())
}

func TestParseSearchNoMatch(t *testing.T) {
	q, err := ParseSearch(readFixture(t), "存在しない商事")
	assert.ErrorIs(t, err, ErrQuoteNotFound)
	assert.Equal(t, NotFound, q)
}

func TestQuote(t *testing.T) {
	page := readFixture(t)
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	c := New(srv.URL)

	q, err := c.Quote(context.Background(), "トヨタ自動車株式会社")
	require.NoError(t, err)
	assert.Equal(t, "トヨタ自動車", gotQuery)
	assert.Equal(t, "7203.T", q.Ticker)

	q, err = c.Quote(context.Background(), "存在しない商事株式会社")
	require.NoError(t, err)
	assert.False(t, q.Found())
}

func TestQuoteTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	q, err := New(srv.URL).Quote(context.Background(), "トヨタ自動車")
	require.Error(t, err)
	assert.False(t, q.Found())
}
