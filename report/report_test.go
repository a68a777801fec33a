package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/pkg/id"
	"github.com/rustyeddy/tradebook/tax"
)

var now = time.Date(2024, 3, 20, 17, 0, 0, 0, time.UTC)

func addTrade(t *testing.T, l journal.Ledger, date, entryTime, entry, exit string) {
	t.Helper()
	_, err := journal.AddTrade(context.Background(), l, journal.TradeInput{
		Date:       date,
		Ticker:     "ABCD",
		Sector:     "Tech",
		NewsType:   "PR",
		EntryPrice: decimal.RequireFromString(entry),
		EntryTime:  entryTime,
		ExitPrice:  decimal.RequireFromString(exit),
		ExitTime:   "10:30",
		Shares:     100,
	}, now)
	require.NoError(t, err)
}

func fixture(t *testing.T) *journal.Memory {
	t.Helper()
	m := journal.NewMemory()
	addTrade(t, m, "2024-03-18", "09:31", "5.00", "6.00")   // +100
	addTrade(t, m, "2024-03-19", "09:47", "12.00", "11.50") // -50
	addTrade(t, m, "2024-03-20", "10:02", "3.00", "3.40")   // +40
	_, err := journal.AddCapital(context.Background(), m, "2024-03-01", journal.Deposit, decimal.NewFromInt(5000), "", now)
	require.NoError(t, err)
	return m
}

func TestBuild(t *testing.T) {
	t.Parallel()

	d, err := Build(context.Background(), fixture(t), Options{Now: now})
	require.NoError(t, err)

	assert.True(t, d.HasTrades)
	stamped, err := id.Time(d.RunID)
	require.NoError(t, err)
	assert.True(t, now.Equal(stamped))
	assert.Equal(t, 3, d.Stats.TotalTrades)
	assert.Equal(t, "90.00", d.Stats.TotalProfit.StringFixed(2))
	assert.Equal(t, "5090.00", d.Capital.Total.StringFixed(2))
	assert.Equal(t, time.March, d.Calendar.Month)
	assert.Equal(t, 3, d.Calendar.TradingDays)
	assert.Len(t, d.Hourly, 3)
	assert.Len(t, d.Weekdays, 5)
	assert.Equal(t, 1, d.Streaks.NetPositiveCurrent)
	assert.Equal(t, "140.00", d.Taxes.TotalGains.StringFixed(2))
	assert.Equal(t, 1, d.Taxes.CurrentQuarter)
	require.Len(t, d.Recent, 3)
	assert.True(t, d.Recent[0].Date.Equal(journal.NewDay(2024, 3, 20)))
}

func TestBuildEmptyLedger(t *testing.T) {
	t.Parallel()

	d, err := Build(context.Background(), journal.NewMemory(), Options{Now: now, Year: 2024, Month: time.February})
	require.NoError(t, err)

	assert.False(t, d.HasTrades)
	assert.Empty(t, d.Recent)
	assert.NotNil(t, d.Hourly)
	assert.Equal(t, time.February, d.Calendar.Month)
	assert.True(t, d.Taxes.TotalTax.IsZero())
}

func TestBuildCustomRates(t *testing.T) {
	t.Parallel()

	rates := RatesFromFractions(0.10, 0)
	d, err := Build(context.Background(), fixture(t), Options{Now: now, Rates: &rates})
	require.NoError(t, err)
	assert.Equal(t, "9.00", d.Taxes.FederalTax.StringFixed(2))
	assert.Equal(t, "10", d.Taxes.FederalRate.String())

	d, err = Build(context.Background(), fixture(t), Options{Now: now})
	require.NoError(t, err)
	assert.Equal(t, "24", d.Taxes.FederalRate.String())
}

func TestBuildZeroRatesMeanNoTax(t *testing.T) {
	t.Parallel()

	zero := RatesFromFractions(0, 0)
	d, err := Build(context.Background(), fixture(t), Options{Now: now, Rates: &zero})
	require.NoError(t, err)
	assert.Equal(t, "90.00", d.Taxes.NetIncome.StringFixed(2))
	assert.True(t, d.Taxes.TotalTax.IsZero(), d.Taxes.TotalTax.String())
	assert.True(t, d.Taxes.FederalRate.IsZero())
}

type failingLedger struct{ journal.Ledger }

func (failingLedger) ListTrades(context.Context) ([]journal.Trade, error) {
	return nil, errors.New("disk gone")
}

func TestBuildPropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	_, err := Build(context.Background(), failingLedger{journal.NewMemory()}, Options{Now: now})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestPrint(t *testing.T) {
	t.Parallel()

	d, err := Build(context.Background(), fixture(t), Options{Now: now})
	require.NoError(t, err)

	var buf bytes.Buffer
	Print(&buf, d)
	out := buf.String()

	assert.Contains(t, out, "Trading Dashboard")
	assert.Contains(t, out, "Total P/L:     +90.00")
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "   Sun    Mon")
	assert.Contains(t, out, tax.Disclaimer)

	buf.Reset()
	PrintStats(&buf, d.Stats, false)
	assert.Contains(t, buf.String(), "No trades recorded.")
}

func TestWriteOrg(t *testing.T) {
	t.Parallel()

	d, err := Build(context.Background(), fixture(t), Options{Now: now})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dashboard.org")
	require.NoError(t, WriteOrgFile(path, d))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	org := string(b)

	assert.Contains(t, org, "* DASHBOARD March 2024")
	assert.Contains(t, org, ":RUN_ID:      "+d.RunID)
	assert.Contains(t, org, ":NET_PL:      90.00")
	assert.Contains(t, org, "| 09:30 | 1 | +100.00 |")
	assert.Contains(t, org, "| Monday | 1 | 1 | 100.0% |")
	assert.Contains(t, org, "- Federal (24%): 21.60")
	assert.Contains(t, org, "** Recent Trades")
}
