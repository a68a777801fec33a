package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const tradeColumns = `id, date, day_of_week, ticker, COALESCE(sector, '') AS sector,
	COALESCE(industry, '') AS industry, COALESCE(news_type, '') AS news_type,
	entry_price, entry_time, exit_price, exit_time, shares,
	COALESCE(position_size, 0) AS position_size, COALESCE(hold_duration, 0) AS hold_duration,
	COALESCE(profit_loss, 0) AS profit_loss, COALESCE(profit_loss_percent, 0) AS profit_loss_percent,
	COALESCE(is_win, 0) AS is_win, COALESCE(notes, '') AS notes,
	float, avg_volume, day_volume, market_cap, stock_type, exchange, auto_sector,
	COALESCE(data_fetched, 0) AS data_fetched, created_at`

// SQLite is the durable journal. All reads return fresh snapshots.
type SQLite struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens (or creates) the journal at path, applies the schema and
// seeds the initial zero deposit on an empty ledger.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent and
	// serializes writers for file databases.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	j := &SQLite{db: db, now: time.Now}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := j.seedCapital(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed capital: %w", err)
	}
	return j, nil
}

// migrate adds the stock data columns to trades tables that predate them.
func (j *SQLite) migrate() error {
	var cols []struct {
		CID     int            `db:"cid"`
		Name    string         `db:"name"`
		Type    string         `db:"type"`
		NotNull int            `db:"notnull"`
		Default sql.NullString `db:"dflt_value"`
		PK      int            `db:"pk"`
	}
	if err := j.db.Select(&cols, `PRAGMA table_info(trades)`); err != nil {
		return err
	}
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c.Name] = true
	}
	for _, c := range stockColumns {
		if have[c.Name] {
			continue
		}
		if _, err := j.db.Exec(fmt.Sprintf(`ALTER TABLE trades ADD COLUMN %s %s`, c.Name, c.Type)); err != nil {
			return fmt.Errorf("add column %s: %w", c.Name, err)
		}
	}
	return nil
}

func (j *SQLite) seedCapital() error {
	var n int
	if err := j.db.Get(&n, `SELECT COUNT(*) FROM capital_transactions`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := j.db.Exec(`INSERT INTO capital_transactions (date, type, amount, notes) VALUES (?, ?, 0, ?)`,
		DayOf(j.now()), Deposit, InitialBalanceNote)
	return err
}

func (j *SQLite) InsertTrade(ctx context.Context, t Trade) (Trade, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = j.now()
	}
	res, err := j.db.NamedExecContext(ctx, `
		INSERT INTO trades
		(date, day_of_week, ticker, sector, industry, news_type, entry_price, entry_time,
		 exit_price, exit_time, shares, position_size, hold_duration, profit_loss,
		 profit_loss_percent, is_win, notes, float, avg_volume, day_volume, created_at)
		VALUES
		(:date, :day_of_week, :ticker, :sector, :industry, :news_type, :entry_price, :entry_time,
		 :exit_price, :exit_time, :shares, :position_size, :hold_duration, :profit_loss,
		 :profit_loss_percent, :is_win, :notes, :float, :avg_volume, :day_volume, :created_at)`, &t)
	if err != nil {
		return Trade{}, fmt.Errorf("insert trade: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Trade{}, fmt.Errorf("insert trade: %w", err)
	}
	t.ID = id
	return t, nil
}

func (j *SQLite) ListTrades(ctx context.Context) ([]Trade, error) {
	out := []Trade{}
	err := j.db.SelectContext(ctx, &out, `SELECT `+tradeColumns+` FROM trades ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return out, nil
}

func (j *SQLite) DeleteTrade(ctx context.Context, id int64) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("trade %d: %w", id, ErrNotFound)
	}
	return nil
}

func (j *SQLite) InsertCapital(ctx context.Context, c CapitalTransaction) (CapitalTransaction, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = j.now()
	}
	res, err := j.db.NamedExecContext(ctx, `
		INSERT INTO capital_transactions (date, type, amount, notes, created_at)
		VALUES (:date, :type, :amount, :notes, :created_at)`, &c)
	if err != nil {
		return CapitalTransaction{}, fmt.Errorf("insert capital transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CapitalTransaction{}, fmt.Errorf("insert capital transaction: %w", err)
	}
	c.ID = id
	return c, nil
}

func (j *SQLite) ListCapital(ctx context.Context) ([]CapitalTransaction, error) {
	out := []CapitalTransaction{}
	err := j.db.SelectContext(ctx, &out, `
		SELECT id, date, type, amount, COALESCE(notes, '') AS notes, created_at
		FROM capital_transactions
		ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list capital transactions: %w", err)
	}
	return out, nil
}

// SetEnrichment stores provider data on a trade exactly once. Figures the
// provider did not return keep any value entered with the trade.
func (j *SQLite) SetEnrichment(ctx context.Context, id int64, sd StockData) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE trades
		SET float = COALESCE(?, float), avg_volume = COALESCE(?, avg_volume),
		    day_volume = COALESCE(?, day_volume), market_cap = COALESCE(?, market_cap),
		    stock_type = COALESCE(?, stock_type), exchange = COALESCE(?, exchange),
		    auto_sector = COALESCE(?, auto_sector), data_fetched = 1
		WHERE id = ? AND COALESCE(data_fetched, 0) = 0`,
		nullFloat(sd.SharesFloat), nullFloat(sd.AvgVolume), nullFloat(sd.Volume), nullFloat(sd.MarketCap),
		nullString(sd.StockType), nullString(sd.Exchange), nullString(sd.Sector), id)
	if err != nil {
		return fmt.Errorf("set stock data: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := j.GetTrade(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("trade %d: %w", id, ErrAlreadyFetched)
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
