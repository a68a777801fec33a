package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/journal"
)

type fakeProvider struct {
	mu        sync.Mutex
	calls     []string
	fail      map[string]bool
	remaining int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Lookup(_ context.Context, ticker string) (StockData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ticker)
	if f.remaining > 0 {
		f.remaining--
	}
	if f.fail[ticker] {
		return StockData{}, Unavailable(f.Name(), errors.New("no such symbol"))
	}
	return StockData{
		Ticker:      ticker,
		Sector:      "Technology",
		Exchange:    "NASDAQ",
		StockType:   "Common Stock",
		SharesFloat: 12_500_000,
		MarketCap:   250_000_000,
		Volume:      3_000_000,
		AvgVolume:   1_200_000,
	}, nil
}

type budgetedProvider struct {
	*fakeProvider
}

func (b budgetedProvider) GetRemainingRequests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

func seed(t *testing.T, m *journal.Memory, date, ticker string) journal.Trade {
	t.Helper()
	tr, err := journal.NewTrade(journal.TradeInput{
		Date:       date,
		Ticker:     ticker,
		Sector:     "Tech",
		NewsType:   "PR",
		EntryPrice: decimal.RequireFromString("5.00"),
		EntryTime:  "09:31",
		ExitPrice:  decimal.RequireFromString("5.50"),
		ExitTime:   "09:40",
		Shares:     100,
	}, journal.NewDay(2024, 3, 20).Time())
	require.NoError(t, err)
	tr, err = m.InsertTrade(context.Background(), tr)
	require.NoError(t, err)
	return tr
}

func newTestBackfiller(store journal.Enrichable, p Provider, reg prometheus.Registerer) *Backfiller {
	return NewBackfiller(store, p, Options{RequestsPerSecond: 1000, Registerer: reg, Logger: zerolog.Nop()})
}

func TestBackfillGroupsByTicker(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := journal.NewMemory()
	seed(t, m, "2024-03-12", "ABCD")
	seed(t, m, "2024-03-13", "ABCD")
	seed(t, m, "2024-03-14", "WXYZ")

	p := &fakeProvider{}
	reg := prometheus.NewRegistry()
	rep, err := newTestBackfiller(m, p, reg).Backfill(ctx, 10)
	require.NoError(t, err)

	assert.Len(t, p.calls, 2, "one lookup per ticker")
	assert.Equal(t, []string{"WXYZ", "ABCD"}, p.calls, "newest trades first")
	assert.Equal(t, 2, rep.Tickers)
	assert.Equal(t, 3, rep.Updated)
	assert.Zero(t, rep.Failed)
	assert.Len(t, rep.RunID, 26)

	trades, _ := m.ListTrades(ctx)
	for _, tr := range trades {
		assert.True(t, tr.DataFetched)
		require.NotNil(t, tr.AutoSector)
		assert.Equal(t, "Technology", *tr.AutoSector)
	}

	logs := m.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, journal.ActionEnrich, logs[0].ActionType)
	assert.Contains(t, logs[0].Details, rep.RunID)

	assert.Equal(t, 2.0, counterValue(t, reg, "tradebook_enrich_lookups_total"))
	assert.Equal(t, 3.0, counterValue(t, reg, "tradebook_enrich_trades_updated_total"))

	// nothing left to do
	p.calls = nil
	rep, err = newTestBackfiller(m, p, nil).Backfill(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, p.calls)
	assert.Zero(t, rep.Updated)
}

func TestBackfillProviderFailureLeavesTradeUntouched(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := journal.NewMemory()
	bad := seed(t, m, "2024-03-13", "FAIL")
	seed(t, m, "2024-03-14", "GOOD")

	p := &fakeProvider{fail: map[string]bool{"FAIL": true}}
	rep, err := newTestBackfiller(m, p, nil).Backfill(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Updated)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, []string{"FAIL"}, rep.FailedTickers)

	trades, _ := m.ListTrades(ctx)
	for _, tr := range trades {
		if tr.ID == bad.ID {
			assert.False(t, tr.DataFetched)
			assert.Nil(t, tr.Float)
			assert.Equal(t, bad.ProfitLoss.String(), tr.ProfitLoss.String())
		}
	}
}

func TestBackfillLimitFromBudget(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := journal.NewMemory()
	for _, tk := range []string{"AAA", "BBB", "CCC", "DDD", "EEE"} {
		seed(t, m, "2024-03-14", tk)
	}

	p := budgetedProvider{&fakeProvider{remaining: 4}}
	rep, err := newTestBackfiller(m, p, nil).Backfill(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Updated, "half the remaining budget")

	p.remaining = 0
	rep, err = newTestBackfiller(m, p, nil).Backfill(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "budget exhausted", rep.Stopped)
	assert.Zero(t, rep.Tickers)
}

func TestBackfillStopsWhenBudgetRunsOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := journal.NewMemory()
	for _, tk := range []string{"AAA", "BBB", "CCC"} {
		seed(t, m, "2024-03-14", tk)
	}

	p := budgetedProvider{&fakeProvider{remaining: 1}}
	rep, err := newTestBackfiller(m, p, nil).Backfill(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Tickers)
	assert.Equal(t, "budget exhausted", rep.Stopped)
}

func TestToday(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := journal.NewMemory()
	seed(t, m, "2024-03-13", "OLD")
	seed(t, m, "2024-03-14", "ABCD")
	seed(t, m, "2024-03-14", "ABCD")
	seed(t, m, "2024-03-14", "WXYZ")

	p := &fakeProvider{}
	rep, err := newTestBackfiller(m, p, nil).Today(ctx, journal.NewDay(2024, 3, 14))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"ABCD", "WXYZ"}, p.calls)
	assert.Equal(t, 3, rep.Updated)
	assert.Equal(t, "today", rep.Mode)

	missing, _ := m.TradesMissingData(ctx, 10)
	require.Len(t, missing, 1)
	assert.Equal(t, "OLD", missing[0].Ticker)

	rep, err = newTestBackfiller(m, p, nil).Today(ctx, journal.NewDay(2024, 3, 15))
	require.NoError(t, err)
	assert.Zero(t, rep.Tickers)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := journal.NewMemory()
	fail := map[string]bool{}
	for _, tk := range []string{"AAA", "BBB", "CCC", "DDD", "EEE"} {
		seed(t, m, "2024-03-14", tk)
		fail[tk] = true
	}

	p := &fakeProvider{fail: fail}
	rep, err := newTestBackfiller(m, p, nil).Backfill(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, p.calls, 3, "open breaker short-circuits the rest")
	assert.Equal(t, 5, rep.Failed)
}

func counterValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	mfs, err := g.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
