package journal

import (
	"context"
	"fmt"
)

// GetTrade returns a single trade by ID.
func (j *SQLite) GetTrade(ctx context.Context, id int64) (Trade, error) {
	var t Trade
	err := j.db.GetContext(ctx, &t, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	if err != nil {
		if isNoRows(err) {
			return Trade{}, fmt.Errorf("trade %d: %w", id, ErrNotFound)
		}
		return Trade{}, fmt.Errorf("get trade: %w", err)
	}
	return t, nil
}

// ListTradesBetween returns trades dated within [start, end], oldest first.
func (j *SQLite) ListTradesBetween(ctx context.Context, start, end Day) ([]Trade, error) {
	out := []Trade{}
	err := j.db.SelectContext(ctx, &out, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, id ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list trades between: %w", err)
	}
	return out, nil
}

// TradesMissingData returns up to limit unenriched trades, newest first.
func (j *SQLite) TradesMissingData(ctx context.Context, limit int) ([]Trade, error) {
	out := []Trade{}
	err := j.db.SelectContext(ctx, &out, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE COALESCE(data_fetched, 0) = 0
		ORDER BY date DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("trades missing data: %w", err)
	}
	return out, nil
}

// TickersMissingData lists the distinct unenriched tickers traded on day.
func (j *SQLite) TickersMissingData(ctx context.Context, day Day) ([]string, error) {
	out := []string{}
	err := j.db.SelectContext(ctx, &out, `
		SELECT DISTINCT ticker
		FROM trades
		WHERE date = ? AND COALESCE(data_fetched, 0) = 0
		ORDER BY ticker`, day)
	if err != nil {
		return nil, fmt.Errorf("tickers missing data: %w", err)
	}
	return out, nil
}
