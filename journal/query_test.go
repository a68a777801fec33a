package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTrade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, _ := newTestSQLite(t)
	defer j.Close()

	want, err := j.InsertTrade(ctx, mustTrade(t, "2024-04-10", "ACME", "3.00", "3.30", 1000))
	require.NoError(t, err)

	got, err := j.GetTrade(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "ACME", got.Ticker)
	assert.Equal(t, "300.00", got.ProfitLoss.StringFixed(2))
	assert.Equal(t, "Wednesday", got.DayOfWeek)
}

func TestGetTradeNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	_, err := j.GetTrade(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestListTradesBetween(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, _ := newTestSQLite(t)
	defer j.Close()

	for _, d := range []string{"2024-01-31", "2024-02-01", "2024-02-15", "2024-02-29", "2024-03-01"} {
		_, err := j.InsertTrade(ctx, mustTrade(t, d, "ABC", "1.00", "1.10", 100))
		require.NoError(t, err)
	}

	start, _ := ParseDay("2024-02-01")
	end, _ := ParseDay("2024-02-29")
	got, err := j.ListTradesBetween(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-02-01", got[0].Date.String())
	assert.Equal(t, "2024-02-29", got[2].Date.String())
}

func TestEnrichmentLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, _ := newTestSQLite(t)
	defer j.Close()

	a, err := j.InsertTrade(ctx, mustTrade(t, "2024-05-01", "AAA", "2.00", "2.20", 100))
	require.NoError(t, err)
	_, err = j.InsertTrade(ctx, mustTrade(t, "2024-05-01", "BBB", "2.00", "2.20", 100))
	require.NoError(t, err)
	_, err = j.InsertTrade(ctx, mustTrade(t, "2024-05-01", "AAA", "2.00", "1.90", 100))
	require.NoError(t, err)
	_, err = j.InsertTrade(ctx, mustTrade(t, "2024-05-02", "CCC", "2.00", "2.20", 100))
	require.NoError(t, err)

	day, _ := ParseDay("2024-05-01")
	tickers, err := j.TickersMissingData(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, tickers)

	missing, err := j.TradesMissingData(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, missing, 4)
	assert.Equal(t, "CCC", missing[0].Ticker, "newest date first")

	limited, err := j.TradesMissingData(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	sd := StockData{
		Ticker:      "AAA",
		Sector:      "Healthcare",
		Exchange:    "NASDAQ",
		StockType:   "Common Stock",
		SharesFloat: 12_500_000,
		MarketCap:   80_000_000,
		Volume:      3_000_000,
		AvgVolume:   450_000,
	}
	require.NoError(t, j.SetEnrichment(ctx, a.ID, sd))

	got, err := j.GetTrade(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.DataFetched)
	require.NotNil(t, got.Float)
	assert.InDelta(t, 12_500_000, *got.Float, 1e-6)
	require.NotNil(t, got.DayVolume)
	assert.InDelta(t, 3_000_000, *got.DayVolume, 1e-6)
	require.NotNil(t, got.AutoSector)
	assert.Equal(t, "Healthcare", *got.AutoSector)
	require.NotNil(t, got.Exchange)
	assert.Equal(t, "NASDAQ", *got.Exchange)

	err = j.SetEnrichment(ctx, a.ID, sd)
	assert.ErrorIs(t, err, ErrAlreadyFetched)

	err = j.SetEnrichment(ctx, 12345, sd)
	assert.ErrorIs(t, err, ErrNotFound)

	missing, err = j.TradesMissingData(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, missing, 3)
}

func TestManualStockFiguresRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, _ := newTestSQLite(t)
	defer j.Close()

	in := validInput()
	in.Volume = ptr(1_500_000)
	in.AvgVolume = ptr(900_000)
	in.Float = ptr(12_000_000)
	tr, err := NewTrade(in, testNow)
	require.NoError(t, err)
	tr, err = j.InsertTrade(ctx, tr)
	require.NoError(t, err)

	got, err := j.GetTrade(ctx, tr.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DayVolume)
	require.NotNil(t, got.AvgVolume)
	require.NotNil(t, got.Float)
	assert.Equal(t, 1_500_000.0, *got.DayVolume)
	assert.Equal(t, 900_000.0, *got.AvgVolume)
	assert.Equal(t, 12_000_000.0, *got.Float)
	assert.False(t, got.DataFetched)

	missing, err := j.TradesMissingData(ctx, 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)

	// The provider has no float; the entered one survives enrichment.
	require.NoError(t, j.SetEnrichment(ctx, tr.ID, StockData{Volume: 2_000_000, MarketCap: 5e8, Exchange: "NASDAQ"}))
	got, err = j.GetTrade(ctx, tr.ID)
	require.NoError(t, err)
	assert.True(t, got.DataFetched)
	assert.Equal(t, 2_000_000.0, *got.DayVolume)
	assert.Equal(t, 900_000.0, *got.AvgVolume)
	assert.Equal(t, 12_000_000.0, *got.Float)
	assert.Equal(t, "NASDAQ", *got.Exchange)
}
