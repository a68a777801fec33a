// Package report assembles the dashboard: every analytic computed from one
// fresh read of the ledger, plus text and Org renderings of it.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/analytics"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/pkg/id"
	"github.com/rustyeddy/tradebook/tax"
)

// RecentTrades is how many of the newest trades the dashboard lists.
const RecentTrades = 5

type Options struct {
	Now time.Time

	// Calendar month; zero means the month of Now.
	Year  int
	Month time.Month

	// Nil means tax.DefaultRates. Zero rates are honored.
	Rates *tax.Rates
}

// Dashboard is one consistent snapshot of the ledger.
type Dashboard struct {
	RunID     string    `json:"run_id"`
	Generated time.Time `json:"generated"`

	HasTrades bool                     `json:"has_trades"`
	Stats     analytics.Stats          `json:"stats"`
	Capital   analytics.Capital        `json:"capital"`
	Streaks   analytics.Streaks        `json:"streaks"`
	Calendar  analytics.Calendar       `json:"calendar"`
	Hourly    []analytics.HourlyBucket `json:"hourly"`
	Prices    []analytics.PriceBand    `json:"prices"`
	Weekdays  []analytics.WeekdayRate  `json:"weekdays"`
	Taxes     tax.Report               `json:"taxes"`
	Recent    []journal.Trade          `json:"recent"`
}

// Build reads trades and capital once and derives every aggregate from
// that read.
func Build(ctx context.Context, l journal.Ledger, opts Options) (Dashboard, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Year == 0 || opts.Month == 0 {
		opts.Year, opts.Month = opts.Now.Year(), opts.Now.Month()
	}
	rates := tax.DefaultRates()
	if opts.Rates != nil {
		rates = *opts.Rates
	}

	trades, err := l.ListTrades(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard trades: %w", err)
	}
	txs, err := l.ListCapital(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard capital: %w", err)
	}

	d := Dashboard{
		RunID:     id.NewAt(opts.Now),
		Generated: opts.Now,
		Capital:   analytics.CapitalSummary(txs, trades),
		Streaks:   analytics.ComputeStreaks(trades),
		Calendar:  analytics.MonthlyCalendar(trades, opts.Year, opts.Month),
		Hourly:    analytics.HourlyPerformance(trades),
		Prices:    analytics.ProfitsByPrice(trades),
		Weekdays:  analytics.WinRateByWeekday(trades),
		Taxes:     tax.EstimateWithRates(trades, opts.Now, rates),
	}
	d.Stats, d.HasTrades = analytics.PortfolioStats(trades)

	n := len(trades)
	if n > RecentTrades {
		n = RecentTrades
	}
	d.Recent = append([]journal.Trade{}, trades[:n]...)
	return d, nil
}

// RatesFromFractions builds tax rates from config fractions such as 0.24.
func RatesFromFractions(federal, state float64) tax.Rates {
	return tax.Rates{
		Federal: decimal.NewFromFloat(federal),
		State:   decimal.NewFromFloat(state),
	}
}
