// Package journal holds the trade and capital ledger: record types, the
// per-trade metrics calculator and the SQLite and in-memory stores.
package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one closed round-trip position.
type Trade struct {
	ID        int64  `db:"id" json:"id"`
	Date      Day    `db:"date" json:"date"`
	DayOfWeek string `db:"day_of_week" json:"day_of_week"`
	Ticker    string `db:"ticker" json:"ticker"`
	Sector    string `db:"sector" json:"sector"`
	Industry  string `db:"industry" json:"industry,omitempty"`
	NewsType  string `db:"news_type" json:"news_type"`

	EntryPrice decimal.Decimal `db:"entry_price" json:"entry_price"`
	EntryTime  Clock           `db:"entry_time" json:"entry_time"`
	ExitPrice  decimal.Decimal `db:"exit_price" json:"exit_price"`
	ExitTime   Clock           `db:"exit_time" json:"exit_time"`
	Shares     int64           `db:"shares" json:"shares"`

	PositionSize      decimal.Decimal `db:"position_size" json:"position_size"`
	HoldMinutes       int             `db:"hold_duration" json:"hold_duration"`
	ProfitLoss        decimal.Decimal `db:"profit_loss" json:"profit_loss"`
	ProfitLossPercent decimal.Decimal `db:"profit_loss_percent" json:"profit_loss_percent"`
	IsWin             bool            `db:"is_win" json:"is_win"`
	Notes             string          `db:"notes" json:"notes"`

	// Filled once by enrichment; nil until then.
	Float       *float64 `db:"float" json:"float,omitempty"`
	AvgVolume   *float64 `db:"avg_volume" json:"avg_volume,omitempty"`
	DayVolume   *float64 `db:"day_volume" json:"day_volume,omitempty"`
	MarketCap   *float64 `db:"market_cap" json:"market_cap,omitempty"`
	StockType   *string  `db:"stock_type" json:"stock_type,omitempty"`
	Exchange    *string  `db:"exchange" json:"exchange,omitempty"`
	AutoSector  *string  `db:"auto_sector" json:"auto_sector,omitempty"`
	DataFetched bool     `db:"data_fetched" json:"data_fetched"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type TxType string

const (
	Deposit    TxType = "deposit"
	Withdrawal TxType = "withdrawal"
)

func (t TxType) Valid() bool {
	return t == Deposit || t == Withdrawal
}

// CapitalTransaction is a deposit or withdrawal, independent of trades.
type CapitalTransaction struct {
	ID        int64           `db:"id" json:"id"`
	Date      Day             `db:"date" json:"date"`
	Type      TxType          `db:"type" json:"type"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Notes     string          `db:"notes" json:"notes"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// InitialBalanceNote marks the zero deposit every fresh ledger starts with.
const InitialBalanceNote = "Initial balance"

// StockData is the normalized metadata an enrichment provider returns for
// a ticker. Zero values mean the provider had nothing for that field.
type StockData struct {
	Ticker            string
	Sector            string
	Industry          string
	Exchange          string
	StockType         string
	SharesFloat       float64
	SharesOutstanding float64
	MarketCap         float64
	Price             float64
	Volume            float64
	AvgVolume         float64
	ChangePercent     float64
}

// Ledger is the durable store of trades and capital transactions. The
// analytics never mutate what it returns; each call is a fresh snapshot.
type Ledger interface {
	ListTrades(ctx context.Context) ([]Trade, error)
	ListCapital(ctx context.Context) ([]CapitalTransaction, error)
	InsertTrade(ctx context.Context, t Trade) (Trade, error)
	InsertCapital(ctx context.Context, c CapitalTransaction) (CapitalTransaction, error)
	DeleteTrade(ctx context.Context, id int64) error
}

// Enrichable is implemented by stores that can backfill stock data.
type Enrichable interface {
	ListTradesBetween(ctx context.Context, start, end Day) ([]Trade, error)
	TradesMissingData(ctx context.Context, limit int) ([]Trade, error)
	TickersMissingData(ctx context.Context, day Day) ([]string, error)
	SetEnrichment(ctx context.Context, id int64, sd StockData) error
}

// AuditLog is the append-only action trail. It is optional for callers.
type AuditLog interface {
	AddLog(ctx context.Context, e LogEntry) (int64, error)
}

// Store is everything the SQLite journal provides.
type Store interface {
	Ledger
	Enrichable
	AuditLog
	Close() error
}
