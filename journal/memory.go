package journal

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process ledger for tests and dry runs. It does not seed
// the initial balance row.
type Memory struct {
	mu      sync.RWMutex
	trades  []Trade
	capital []CapitalTransaction
	logs    []LogEntry
	nextID  int64
}

var (
	_ Ledger     = (*Memory)(nil)
	_ Enrichable = (*Memory)(nil)
	_ AuditLog   = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) InsertTrade(_ context.Context, t Trade) (Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	m.trades = append(m.trades, t)
	return t, nil
}

// ListTrades returns a copy, newest date first like the SQLite store.
func (m *Memory) ListTrades(_ context.Context) ([]Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Trade, len(m.trades))
	copy(out, m.trades)
	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].Date.Equal(out[b].Date) {
			return out[a].Date.After(out[b].Date)
		}
		return out[a].ID > out[b].ID
	})
	return out, nil
}

func (m *Memory) DeleteTrade(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.trades {
		if t.ID == id {
			m.trades = append(m.trades[:i], m.trades[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("trade %d: %w", id, ErrNotFound)
}

func (m *Memory) InsertCapital(_ context.Context, c CapitalTransaction) (CapitalTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	m.capital = append(m.capital, c)
	return c, nil
}

func (m *Memory) ListCapital(_ context.Context) ([]CapitalTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CapitalTransaction, len(m.capital))
	copy(out, m.capital)
	return out, nil
}

func (m *Memory) ListTradesBetween(ctx context.Context, start, end Day) ([]Trade, error) {
	all, _ := m.ListTrades(ctx)
	out := []Trade{}
	for i := len(all) - 1; i >= 0; i-- {
		t := all[i]
		if !t.Date.Before(start) && !t.Date.After(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) TradesMissingData(ctx context.Context, limit int) ([]Trade, error) {
	all, _ := m.ListTrades(ctx)
	out := []Trade{}
	for _, t := range all {
		if len(out) == limit {
			break
		}
		if !t.DataFetched {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) TickersMissingData(ctx context.Context, day Day) ([]string, error) {
	all, _ := m.ListTrades(ctx)
	seen := map[string]bool{}
	out := []string{}
	for _, t := range all {
		if t.Date.Equal(day) && !t.DataFetched && !seen[t.Ticker] {
			seen[t.Ticker] = true
			out = append(out, t.Ticker)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) SetEnrichment(_ context.Context, id int64, sd StockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.trades {
		t := &m.trades[i]
		if t.ID != id {
			continue
		}
		if t.DataFetched {
			return fmt.Errorf("trade %d: %w", id, ErrAlreadyFetched)
		}
		keepFloat(&t.Float, sd.SharesFloat)
		keepFloat(&t.AvgVolume, sd.AvgVolume)
		keepFloat(&t.DayVolume, sd.Volume)
		keepFloat(&t.MarketCap, sd.MarketCap)
		keepString(&t.StockType, sd.StockType)
		keepString(&t.Exchange, sd.Exchange)
		keepString(&t.AutoSector, sd.Sector)
		t.DataFetched = true
		return nil
	}
	return fmt.Errorf("trade %d: %w", id, ErrNotFound)
}

func (m *Memory) AddLog(_ context.Context, e LogEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id()
	m.logs = append(m.logs, e)
	return e.ID, nil
}

// Logs returns the recorded entries in insertion order.
func (m *Memory) Logs() []LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LogEntry, len(m.logs))
	copy(out, m.logs)
	return out
}

func optFloat(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func keepFloat(dst **float64, v float64) {
	if p := optFloat(v); p != nil {
		*dst = p
	}
}

func keepString(dst **string, v string) {
	if p := optString(v); p != nil {
		*dst = p
	}
}
