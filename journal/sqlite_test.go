package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func mustTrade(t *testing.T, date, ticker, entry, exit string, shares int64) Trade {
	t.Helper()
	tr, err := NewTrade(TradeInput{
		Date:       date,
		Ticker:     ticker,
		Sector:     "Technology",
		NewsType:   "Earnings",
		EntryPrice: decimal.RequireFromString(entry),
		EntryTime:  "09:35",
		ExitPrice:  decimal.RequireFromString(exit),
		ExitTime:   "09:50",
		Shares:     shares,
	}, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return tr
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','capital_transactions','logs')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["capital_transactions"])
	assert.True(t, found["logs"])
}

func TestSQLiteSeedsInitialBalanceOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, path := newTestSQLite(t)
	txs, err := j.ListCapital(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, Deposit, txs[0].Type)
	assert.True(t, txs[0].Amount.IsZero())
	assert.Equal(t, InitialBalanceNote, txs[0].Notes)
	require.NoError(t, j.Close())

	// Reopening must not seed again.
	j2, err := NewSQLite(path)
	require.NoError(t, err)
	defer j2.Close()
	txs, err = j2.ListCapital(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestSQLiteInsertAndListTrades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, _ := newTestSQLite(t)
	defer j.Close()

	first, err := j.InsertTrade(ctx, mustTrade(t, "2024-03-14", "ABCD", "18.90", "22.00", 100))
	require.NoError(t, err)
	second, err := j.InsertTrade(ctx, mustTrade(t, "2024-03-15", "WXYZ", "5.00", "4.50", 200))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	trades, err := j.ListTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// newest first
	got := trades[1]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "2024-03-14", got.Date.String())
	assert.Equal(t, "Thursday", got.DayOfWeek)
	assert.Equal(t, "ABCD", got.Ticker)
	assert.Equal(t, "09:35", got.EntryTime.String())
	assert.Equal(t, "09:50", got.ExitTime.String())
	assert.Equal(t, int64(100), got.Shares)
	assert.Equal(t, 15, got.HoldMinutes)
	assert.Equal(t, "310.00", got.ProfitLoss.StringFixed(2))
	assert.Equal(t, "1890.00", got.PositionSize.StringFixed(2))
	assert.Equal(t, "16.40", got.ProfitLossPercent.StringFixed(2))
	assert.True(t, got.IsWin)
	assert.False(t, got.DataFetched)
	assert.Nil(t, got.Float)
	assert.Nil(t, got.Exchange)

	assert.False(t, trades[0].IsWin)
	assert.Equal(t, "-100.00", trades[0].ProfitLoss.StringFixed(2))
}

func TestSQLiteDeleteTrade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, _ := newTestSQLite(t)
	defer j.Close()

	tr, err := j.InsertTrade(ctx, mustTrade(t, "2024-03-14", "ABCD", "10", "11", 10))
	require.NoError(t, err)

	require.NoError(t, j.DeleteTrade(ctx, tr.ID))
	trades, err := j.ListTrades(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)

	err = j.DeleteTrade(ctx, tr.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteCapital(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, _ := newTestSQLite(t)
	defer j.Close()

	c, err := NewCapitalTransaction("2024-02-01", Deposit, decimal.NewFromInt(5000), "funding", time.Now())
	require.NoError(t, err)
	stored, err := j.InsertCapital(ctx, c)
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)

	txs, err := j.ListCapital(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	var found bool
	for _, tx := range txs {
		if tx.ID == stored.ID {
			found = true
			assert.Equal(t, "5000.00", tx.Amount.StringFixed(2))
			assert.Equal(t, "funding", tx.Notes)
			assert.Equal(t, "2024-02-01", tx.Date.String())
		}
	}
	assert.True(t, found)
}

func TestSQLiteMigrateAddsStockColumns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL, day_of_week TEXT, ticker TEXT NOT NULL, sector TEXT, industry TEXT,
		news_type TEXT, entry_price REAL NOT NULL, entry_time TEXT NOT NULL, exit_price REAL NOT NULL,
		exit_time TEXT NOT NULL, shares INTEGER NOT NULL, position_size REAL, hold_duration INTEGER,
		profit_loss REAL, profit_loss_percent REAL, is_win INTEGER, notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO trades (date, day_of_week, ticker, entry_price, entry_time, exit_price, exit_time, shares, profit_loss, is_win)
		VALUES ('2023-05-01', 'Monday', 'OLD', 2.5, '10:00', 3.0, '10:30', 100, 50, 1)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	trades, err := j.ListTrades(context.Background())
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "OLD", trades[0].Ticker)
	assert.False(t, trades[0].DataFetched)
	assert.Nil(t, trades[0].MarketCap)
}
