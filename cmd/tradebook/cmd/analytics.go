package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/analytics"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/report"
	"github.com/rustyeddy/tradebook/tax"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Win rate, P/L and best and worst trades",
	Args:  cobra.NoArgs,
	RunE: withTrades(func(w io.Writer, trades []journal.Trade) error {
		st, ok := analytics.PortfolioStats(trades)
		if jsonOut {
			return writeJSON(w, map[string]any{"has_trades": ok, "stats": st})
		}
		report.PrintStats(w, st, ok)
		return nil
	}),
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Daily P/L for one month",
	Args:  cobra.NoArgs,
	RunE: withTrades(func(w io.Writer, trades []journal.Trade) error {
		now := nowFunc()
		year, month := calYear, time.Month(calMonth)
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = now.Month()
		}
		if month < 1 || month > 12 {
			return &journal.ValidationError{Field: "month", Reason: "must be 1-12"}
		}
		cal := analytics.MonthlyCalendar(trades, year, month)
		if jsonOut {
			return writeJSON(w, cal)
		}
		report.PrintCalendar(w, cal)
		return nil
	}),
}

var hourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "P/L by entry time in 15 minute buckets",
	Args:  cobra.NoArgs,
	RunE: withTrades(func(w io.Writer, trades []journal.Trade) error {
		b := analytics.HourlyPerformance(trades)
		if jsonOut {
			return writeJSON(w, b)
		}
		report.PrintHourly(w, b)
		return nil
	}),
}

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "P/L by entry price band",
	Args:  cobra.NoArgs,
	RunE: withTrades(func(w io.Writer, trades []journal.Trade) error {
		b := analytics.ProfitsByPrice(trades)
		if jsonOut {
			return writeJSON(w, b)
		}
		report.PrintPrices(w, b)
		return nil
	}),
}

var weekdaysCmd = &cobra.Command{
	Use:   "weekdays",
	Short: "Win rate by day of the week",
	Args:  cobra.NoArgs,
	RunE: withTrades(func(w io.Writer, trades []journal.Trade) error {
		r := analytics.WinRateByWeekday(trades)
		if jsonOut {
			return writeJSON(w, r)
		}
		report.PrintWeekdays(w, r)
		return nil
	}),
}

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Green day and no-loss day streaks",
	Args:  cobra.NoArgs,
	RunE: withTrades(func(w io.Writer, trades []journal.Trade) error {
		s := analytics.ComputeStreaks(trades)
		if jsonOut {
			return writeJSON(w, s)
		}
		report.PrintStreaks(w, s)
		return nil
	}),
}

var taxesCmd = &cobra.Command{
	Use:   "taxes",
	Short: "Estimated federal and state tax on net trading income",
	Args:  cobra.NoArgs,
	RunE: withTrades(func(w io.Writer, trades []journal.Trade) error {
		r := tax.EstimateWithRates(trades, nowFunc(), report.RatesFromFractions(cfg.Tax.FederalRate, cfg.Tax.StateRate))
		if jsonOut {
			return writeJSON(w, r)
		}
		report.PrintTaxes(w, r)
		return nil
	}),
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Every report at once",
	Long: `Build a dashboard snapshot from a single read of the journal.

Examples:
  tradebook dashboard
  tradebook dashboard --org dashboard.org
  tradebook dashboard --json`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all trades to CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var (
	jsonOut    bool
	calYear    int
	calMonth   int
	orgPath    string
	exportPath string
)

func init() {
	rootCmd.AddCommand(statsCmd, calendarCmd, hourlyCmd, pricesCmd, weekdaysCmd, streaksCmd, taxesCmd, dashboardCmd, exportCmd)

	for _, c := range []*cobra.Command{statsCmd, calendarCmd, hourlyCmd, pricesCmd, weekdaysCmd, streaksCmd, taxesCmd, dashboardCmd} {
		c.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	}
	calendarCmd.Flags().IntVar(&calYear, "year", 0, "year (default current)")
	calendarCmd.Flags().IntVar(&calMonth, "month", 0, "month 1-12 (default current)")
	dashboardCmd.Flags().StringVar(&orgPath, "org", "", "also write an Org report to this path")
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "CSV path (default trades_export_<date>.csv)")
}

// withTrades opens the journal, reads every trade and hands them to fn.
func withTrades(fn func(w io.Writer, trades []journal.Trade) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		trades, err := j.ListTrades(cmd.Context())
		if err != nil {
			return fmt.Errorf("list trades: %w", err)
		}
		return fn(cmd.OutOrStdout(), trades)
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rates := report.RatesFromFractions(cfg.Tax.FederalRate, cfg.Tax.StateRate)
	d, err := report.Build(cmd.Context(), j, report.Options{Now: nowFunc(), Rates: &rates})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOut {
		return writeJSON(w, d)
	}
	report.Print(w, d)

	if orgPath != "" {
		if err := report.WriteOrgFile(orgPath, d); err != nil {
			return err
		}
		fmt.Fprintf(w, "Org Report:    %s\n", orgPath)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	path := exportPath
	if path == "" {
		path = fmt.Sprintf("trades_export_%s.csv", nowFunc().Format("20060102_150405"))
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTrades(cmd.Context())
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}
	if err := journal.ExportTradesCSV(path, trades); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d trades to %s\n", len(trades), path)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
