package fmp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/enrich"
)

const profileBody = `[{
	"symbol": "ABCD",
	"price": 4.21,
	"marketCap": 105250000,
	"volume": 3500000,
	"averageVolume": 820000,
	"changePercentage": 23.82,
	"sector": "Healthcare",
	"industry": "Biotechnology",
	"exchange": "NASDAQ Global Market",
	"exchangeShortName": "NASDAQ",
	"isEtf": false,
	"isFund": false
}]`

const floatBody = `[{
	"symbol": "ABCD",
	"freeFloat": 72.5,
	"floatShares": 18125000,
	"outstandingShares": 25000000
}]`

func newServer(t *testing.T, hits *int32, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "ABCD", r.URL.Query().Get("symbol"))
		body, ok := routes[r.URL.Path]
		if !ok {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookup(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := newServer(t, &hits, map[string]string{
		"/profile":      profileBody,
		"/shares-float": floatBody,
	})
	c := NewClient("test-key", zerolog.Nop()).WithBaseURL(srv.URL + "/")

	sd, err := c.Lookup(context.Background(), "abcd")
	require.NoError(t, err)

	assert.Equal(t, "ABCD", sd.Ticker)
	assert.Equal(t, "Healthcare", sd.Sector)
	assert.Equal(t, "Biotechnology", sd.Industry)
	assert.Equal(t, "NASDAQ", sd.Exchange)
	assert.Equal(t, "Common Stock", sd.StockType)
	assert.Equal(t, 105_250_000.0, sd.MarketCap)
	assert.Equal(t, 820_000.0, sd.AvgVolume)
	assert.Equal(t, 3_500_000.0, sd.Volume)
	assert.Equal(t, 18_125_000.0, sd.SharesFloat)
	assert.Equal(t, 25_000_000.0, sd.SharesOutstanding)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, DailyLimit-2, c.GetRemainingRequests())

	_, err = c.Lookup(context.Background(), "ABCD")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "served from cache")
}

func TestLookupWithoutFloat(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := newServer(t, &hits, map[string]string{"/profile": profileBody})
	c := NewClient("test-key", zerolog.Nop()).WithBaseURL(srv.URL)

	sd, err := c.Lookup(context.Background(), "ABCD")
	require.NoError(t, err)
	assert.Zero(t, sd.SharesFloat)
	assert.Equal(t, "Healthcare", sd.Sector)
}

func TestLookupUnknownSymbol(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := newServer(t, &hits, nil)
	c := NewClient("test-key", zerolog.Nop()).WithBaseURL(srv.URL)

	_, err := c.Lookup(context.Background(), "ABCD")
	require.Error(t, err)
	assert.ErrorIs(t, err, enrich.ErrUnavailable)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLookupHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("test-key", zerolog.Nop()).WithBaseURL(srv.URL)
	_, err := c.Lookup(context.Background(), "ABCD")
	require.Error(t, err)
	assert.ErrorIs(t, err, enrich.ErrUnavailable)
	assert.Contains(t, err.Error(), "403")
}

func TestStockType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ETF", Profile{IsEtf: true}.stockType())
	assert.Equal(t, "Fund", Profile{IsFund: true}.stockType())
	assert.Equal(t, "Common Stock", Profile{}.stockType())
	assert.Equal(t, "NYSE", Profile{Exchange: "New York Stock Exchange", ExchangeShortName: "NYSE"}.exchange())
	assert.Equal(t, "NASDAQ", Profile{Exchange: "NASDAQ"}.exchange())
}
