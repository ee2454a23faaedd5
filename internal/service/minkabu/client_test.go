package minkabu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"FinScreen/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	page, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return page
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile(fixture(t, "stock.html"), "1234")
	require.NoError(t, err)
	assert.Equal(t, models.StockProfile{
		Code:         "1234",
		Name:         "サンプル工業",
		TargetPrice:  1520,
		AnalystNote:  "割安",
		PickNote:     "買い",
		IndustryName: "機械",
	}, p)
}

func TestParseProfileAbsentSections(t *testing.T) {
	p, err := ParseProfile(fixture(t, "sparse.html"), "5678")
	require.NoError(t, err)
	assert.Equal(t, "まばら商事", p.Name)
	assert.Zero(t, p.TargetPrice)
	assert.Equal(t, models.NoneLabel, p.AnalystNote)
	assert.Equal(t, models.NoneLabel, p.PickNote)
	assert.Equal(t, models.NoneLabel, p.IndustryName)
}

func TestParseProfileLinksAreCodeSpecific(t *testing.T) {
	p, err := ParseProfile(fixture(t, "stock.html"), "9999")
	require.NoError(t, err)
	assert.Equal(t, models.NoneLabel, p.AnalystNote)
	assert.Equal(t, models.NoneLabel, p.PickNote)
	assert.Equal(t, "機械", p.IndustryName)
}

func TestProfile(t *testing.T) {
	page := fixture(t, "stock.html")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/1234" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	c := New(srv.URL + "/")

	p, err := c.Profile(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, "機械", p.IndustryName)

	p, err = c.Profile(context.Background(), "0000")
	require.NoError(t, err)
	assert.Equal(t, EmptyProfile("0000"), p)
}

func TestProfileServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Profile(context.Background(), "1234")
	require.Error(t, err)
}
