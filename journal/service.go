package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AddTrade validates in, derives the trade metrics, stores the trade and
// records it in the audit trail when the ledger keeps one.
func AddTrade(ctx context.Context, l Ledger, in TradeInput, now time.Time) (Trade, error) {
	t, err := NewTrade(in, now)
	if err != nil {
		return Trade{}, err
	}
	t, err = l.InsertTrade(ctx, t)
	if err != nil {
		return Trade{}, err
	}
	audit(ctx, l, NewLogEntry(ActionAddTrade, CategoryTrade,
		fmt.Sprintf("Added trade %s: %s P/L %s", t.Ticker, t.Date, t.ProfitLoss.StringFixed(2)),
		map[string]any{"trade_id": t.ID, "ticker": t.Ticker}))
	return t, nil
}

// AddCapital validates and stores a deposit or withdrawal.
func AddCapital(ctx context.Context, l Ledger, date string, typ TxType, amount decimal.Decimal, notes string, now time.Time) (CapitalTransaction, error) {
	c, err := NewCapitalTransaction(date, typ, amount, notes, now)
	if err != nil {
		return CapitalTransaction{}, err
	}
	c, err = l.InsertCapital(ctx, c)
	if err != nil {
		return CapitalTransaction{}, err
	}
	audit(ctx, l, NewLogEntry(ActionAddCapital, CategoryCapital,
		fmt.Sprintf("Recorded %s of %s on %s", c.Type, c.Amount.StringFixed(2), c.Date), nil))
	return c, nil
}

// RemoveTrade deletes a trade and logs it.
func RemoveTrade(ctx context.Context, l Ledger, id int64) error {
	if err := l.DeleteTrade(ctx, id); err != nil {
		return err
	}
	audit(ctx, l, NewLogEntry(ActionDeleteTrade, CategoryTrade, fmt.Sprintf("Deleted trade %d", id), nil))
	return nil
}

// audit is best effort; a failed log write never fails the operation.
func audit(ctx context.Context, l Ledger, e LogEntry) {
	if a, ok := l.(AuditLog); ok {
		if _, err := a.AddLog(ctx, e); err != nil {
			warnAudit(ctx, e, err)
		}
	}
}

// warnAudit reports a lost audit entry on the logger carried by ctx.
func warnAudit(ctx context.Context, e LogEntry, err error) {
	zerolog.Ctx(ctx).Warn().Err(err).
		Str("action", e.ActionType).
		Str("description", e.Description).
		Msg("audit log write failed")
}
