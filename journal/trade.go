package journal

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TradeInput is what a user submits for a new trade, before validation.
type TradeInput struct {
	Date       string          `json:"date"`
	Ticker     string          `json:"ticker"`
	Sector     string          `json:"sector"`
	Industry   string          `json:"industry,omitempty"`
	NewsType   string          `json:"news_type"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	EntryTime  string          `json:"entry_time"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	ExitTime   string          `json:"exit_time"`
	Shares     int64           `json:"shares"`
	Notes      string          `json:"notes,omitempty"`

	// Optional figures read off a scanner when the trade was taken.
	// Enrichment still runs later; these only fill the columns early.
	Volume    *float64 `json:"volume,omitempty"`
	AvgVolume *float64 `json:"avg_volume,omitempty"`
	Float     *float64 `json:"float,omitempty"`
}

// NewTrade validates in and derives the computed fields. The returned
// trade has no ID until a Ledger stores it.
//
// HoldMinutes is |exit - entry| over time of day only. A position held
// overnight (entry 15:50, exit 09:35) is measured as if both times fell on
// the same day; the ledger has no full timestamps to do better.
func NewTrade(in TradeInput, now time.Time) (Trade, error) {
	var errs []error

	day, err := ParseDay(in.Date)
	if err != nil {
		errs = append(errs, err)
	}
	ticker, err := NormalizeTicker(in.Ticker)
	if err != nil {
		errs = append(errs, err)
	}
	entryAt, err := ParseClock(in.EntryTime)
	if err != nil {
		errs = append(errs, fieldErr("entry_time", err))
	}
	exitAt, err := ParseClock(in.ExitTime)
	if err != nil {
		errs = append(errs, fieldErr("exit_time", err))
	}
	if !in.EntryPrice.IsPositive() {
		errs = append(errs, &ValidationError{Field: "entry_price", Reason: "must be greater than 0"})
	}
	if !in.ExitPrice.IsPositive() {
		errs = append(errs, &ValidationError{Field: "exit_price", Reason: "must be greater than 0"})
	}
	if in.Shares <= 0 {
		errs = append(errs, &ValidationError{Field: "shares", Reason: "must be greater than 0"})
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{{"volume", in.Volume}, {"avg_volume", in.AvgVolume}, {"float", in.Float}} {
		if f.v != nil && *f.v < 0 {
			errs = append(errs, &ValidationError{Field: f.name, Reason: "must not be negative"})
		}
	}
	if len(errs) > 0 {
		return Trade{}, errors.Join(errs...)
	}

	shares := decimal.NewFromInt(in.Shares)
	move := in.ExitPrice.Sub(in.EntryPrice)
	pl := move.Mul(shares)
	pct, err := PercentChange(in.EntryPrice, in.ExitPrice)
	if err != nil {
		return Trade{}, err
	}

	return Trade{
		Date:              day,
		DayOfWeek:         day.Weekday().String(),
		Ticker:            ticker,
		Sector:            strings.TrimSpace(in.Sector),
		Industry:          strings.TrimSpace(in.Industry),
		NewsType:          strings.TrimSpace(in.NewsType),
		EntryPrice:        in.EntryPrice,
		EntryTime:         entryAt,
		ExitPrice:         in.ExitPrice,
		ExitTime:          exitAt,
		Shares:            in.Shares,
		PositionSize:      in.EntryPrice.Mul(shares),
		HoldMinutes:       HoldMinutes(entryAt, exitAt),
		ProfitLoss:        pl,
		ProfitLossPercent: pct,
		IsWin:             pl.IsPositive(),
		Notes:             in.Notes,
		DayVolume:         manual(in.Volume),
		AvgVolume:         manual(in.AvgVolume),
		Float:             manual(in.Float),
		CreatedAt:         now,
	}, nil
}

// manual copies an optional user figure; zero counts as not given.
func manual(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	x := *v
	return &x
}

// PercentChange returns (exit - entry) / entry * 100.
func PercentChange(entry, exit decimal.Decimal) (decimal.Decimal, error) {
	if entry.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return exit.Sub(entry).Div(entry).Mul(hundred), nil
}

// HoldMinutes is the same-day hold duration between two times of day.
func HoldMinutes(entry, exit Clock) int {
	d := exit.Minutes() - entry.Minutes()
	if d < 0 {
		return -d
	}
	return d
}

// NormalizeTicker trims and upper-cases a 1-5 letter symbol.
func NormalizeTicker(s string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if len(t) < 1 || len(t) > 5 {
		return "", &ValidationError{Field: "ticker", Reason: "must be 1-5 letters"}
	}
	for _, r := range t {
		if r < 'A' || r > 'Z' {
			return "", &ValidationError{Field: "ticker", Reason: "must be letters only"}
		}
	}
	return t, nil
}

func fieldErr(field string, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &ValidationError{Field: field, Reason: ve.Reason, Err: ve.Err}
	}
	return &ValidationError{Field: field, Reason: err.Error(), Err: err}
}

// NewCapitalTransaction validates a deposit or withdrawal.
func NewCapitalTransaction(date string, typ TxType, amount decimal.Decimal, notes string, now time.Time) (CapitalTransaction, error) {
	var errs []error
	day, err := ParseDay(date)
	if err != nil {
		errs = append(errs, err)
	}
	if !typ.Valid() {
		errs = append(errs, &ValidationError{Field: "type", Reason: "must be deposit or withdrawal"})
	}
	if !amount.IsPositive() {
		errs = append(errs, &ValidationError{Field: "amount", Reason: "must be greater than 0"})
	}
	if len(errs) > 0 {
		return CapitalTransaction{}, errors.Join(errs...)
	}
	return CapitalTransaction{
		Date:      day,
		Type:      typ,
		Amount:    amount,
		Notes:     notes,
		CreatedAt: now,
	}, nil
}
