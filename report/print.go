package report

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/analytics"
	"github.com/rustyeddy/tradebook/tax"
)

const rule = "--------------------------------------------------"

func Print(w io.Writer, d Dashboard) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Trading Dashboard")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Generated:     %s\n", d.Generated.Format(time.RFC3339))
	fmt.Fprintf(w, "Run ID:        %s\n", d.RunID)

	fmt.Fprintln(w)
	PrintStats(w, d.Stats, d.HasTrades)

	fmt.Fprintln(w)
	PrintCapital(w, d.Capital)

	fmt.Fprintln(w)
	PrintStreaks(w, d.Streaks)

	fmt.Fprintln(w)
	PrintCalendar(w, d.Calendar)

	if len(d.Recent) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recent Trades")
		fmt.Fprintln(w, rule)
		for _, t := range d.Recent {
			fmt.Fprintf(w, "%s  %-5s  %4d @ %-8s  %10s\n",
				t.Date, t.Ticker, t.Shares, t.EntryPrice.StringFixed(2), signed(t.ProfitLoss))
		}
	}

	fmt.Fprintln(w)
	PrintWeekdays(w, d.Weekdays)

	fmt.Fprintln(w)
	PrintTaxes(w, d.Taxes)
	fmt.Fprintln(w)
}

func PrintStats(w io.Writer, s analytics.Stats, ok bool) {
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, rule)
	if !ok {
		fmt.Fprintln(w, "No trades recorded.")
		return
	}
	fmt.Fprintf(w, "Trades:        %d\n", s.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Win Rate:      %.1f%%\n", s.WinRate)
	fmt.Fprintf(w, "Total P/L:     %s\n", signed(s.TotalProfit))
	fmt.Fprintf(w, "Avg Win:       %s\n", signed(s.AvgWin))
	fmt.Fprintf(w, "Avg Loss:      %s\n", signed(s.AvgLoss))
	fmt.Fprintf(w, "Best Trade:    %s\n", signed(s.BestTrade))
	fmt.Fprintf(w, "Worst Trade:   %s\n", signed(s.WorstTrade))
}

func PrintCapital(w io.Writer, c analytics.Capital) {
	fmt.Fprintln(w, "Account")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Deposits:      %s\n", c.Deposits.StringFixed(2))
	fmt.Fprintf(w, "Withdrawals:   %s\n", c.Withdrawals.StringFixed(2))
	fmt.Fprintf(w, "Trading P/L:   %s\n", signed(c.TradingPL))
	fmt.Fprintf(w, "Total:         %s\n", c.Total.StringFixed(2))
}

func PrintStreaks(w io.Writer, s analytics.Streaks) {
	fmt.Fprintln(w, "Streaks (trading days)")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Green days:    %d current, %d best\n", s.NetPositiveCurrent, s.NetPositiveBest)
	fmt.Fprintf(w, "No-loss days:  %d current, %d best\n", s.ZeroLossCurrent, s.ZeroLossBest)
}

// PrintCalendar draws a Sunday-first month grid with each day's net P/L.
func PrintCalendar(w io.Writer, c analytics.Calendar) {
	fmt.Fprintf(w, "%s %d\n", c.MonthName, c.Year)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "   Sun    Mon    Tue    Wed    Thu    Fri    Sat")
	for _, week := range c.Weeks {
		for _, day := range week {
			if day == 0 {
				fmt.Fprint(w, "       ")
				continue
			}
			fmt.Fprintf(w, " %6d", day)
		}
		fmt.Fprintln(w)
		for _, day := range week {
			pl, ok := c.Daily[day]
			if day == 0 || !ok {
				fmt.Fprint(w, "       ")
				continue
			}
			fmt.Fprintf(w, " %6s", pl.StringFixed(0))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Month:         %s over %d days (%d green, %d red)\n",
		signed(c.MonthTotal), c.TradingDays, c.WinningDays, c.LosingDays)
}

func PrintHourly(w io.Writer, buckets []analytics.HourlyBucket) {
	fmt.Fprintln(w, "P/L by Entry Time")
	fmt.Fprintln(w, rule)
	for _, b := range buckets {
		fmt.Fprintf(w, "%-6s %4d trades  %12s\n", b.Label, b.Trades, signed(b.PnL))
	}
}

func PrintPrices(w io.Writer, bands []analytics.PriceBand) {
	fmt.Fprintln(w, "P/L by Entry Price")
	fmt.Fprintln(w, rule)
	for _, b := range bands {
		fmt.Fprintf(w, "%-8s %4d trades  %12s\n", b.Band, b.Trades, signed(b.PnL))
	}
}

func PrintWeekdays(w io.Writer, rates []analytics.WeekdayRate) {
	fmt.Fprintln(w, "Win Rate by Day")
	fmt.Fprintln(w, rule)
	for _, r := range rates {
		fmt.Fprintf(w, "%-10s %3d/%-3d %6.1f%%\n", r.Day, r.Wins, r.Trades, r.WinRate)
	}
}

func PrintTaxes(w io.Writer, r tax.Report) {
	fmt.Fprintln(w, "Estimated Taxes")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Gains:         %s\n", r.TotalGains.StringFixed(2))
	fmt.Fprintf(w, "Losses:        %s\n", r.TotalLosses.StringFixed(2))
	fmt.Fprintf(w, "Net Income:    %s\n", signed(r.NetIncome))
	fmt.Fprintf(w, "Federal (%s%%): %s\n", r.FederalRate.String(), r.FederalTax.StringFixed(2))
	fmt.Fprintf(w, "State (%s%%): %s\n", r.StateRate.String(), r.StateTax.StringFixed(2))
	fmt.Fprintf(w, "Total Tax:     %s\n", r.TotalTax.StringFixed(2))
	fmt.Fprintf(w, "Quarterly:     %s\n", r.QuarterlyEstimate.StringFixed(2))
	fmt.Fprintf(w, "Next Payment:  Q%d (%s) due %s\n", r.NextDeadline.Quarter, r.NextDeadline.Period, r.NextDeadline.Deadline)
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Disclaimer)
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
