package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/config"
	"github.com/rustyeddy/tradebook/enrich"
	"github.com/rustyeddy/tradebook/enrich/alphavantage"
	"github.com/rustyeddy/tradebook/enrich/fmp"
	"github.com/rustyeddy/tradebook/journal"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch stock data for trades",
	Long: `Fill float, volume, market cap, exchange and sector for trades that have
no stock data yet. The provider and API key come from the config file or the
ALPHAVANTAGE_API_KEY / FMP_API_KEY environment variables.

Subcommands:
  backfill - Older trades, up to half the provider's daily budget
  today    - Trades on one day (default today)`,
}

var enrichBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Enrich trades missing stock data",
	Args:  cobra.NoArgs,
	RunE:  runEnrichBackfill,
}

var enrichTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Enrich the day's trades",
	Args:  cobra.NoArgs,
	RunE:  runEnrichToday,
}

var (
	backfillLimit int
	enrichDate    string
)

var errNoProvider = errors.New("enrichment is disabled (enrich.provider: none)")

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.AddCommand(enrichBackfillCmd, enrichTodayCmd)

	enrichBackfillCmd.Flags().IntVarP(&backfillLimit, "limit", "n", 0, "max trades (default half the remaining budget)")
	enrichTodayCmd.Flags().StringVar(&enrichDate, "date", "", "day YYYY-MM-DD (default today)")
}

// newProvider builds the configured provider.
func newProvider(c *config.Config) (enrich.Provider, error) {
	switch c.Enrich.Provider {
	case "", "alphavantage":
		if c.Enrich.AlphaVantageKey == "" {
			return nil, fmt.Errorf("alpha vantage needs an API key: set %s", config.EnvAlphaVantageKey)
		}
		return alphavantage.NewClient(c.Enrich.AlphaVantageKey, log).WithDailyLimit(c.Enrich.DailyBudget), nil
	case "fmp":
		if c.Enrich.FMPKey == "" {
			return nil, fmt.Errorf("financial modeling prep needs an API key: set %s", config.EnvFMPKey)
		}
		return fmp.NewClient(c.Enrich.FMPKey, log).WithDailyLimit(c.Enrich.DailyBudget), nil
	default:
		return nil, errNoProvider
	}
}

func newBackfiller(j journal.Enrichable, reg prometheus.Registerer) (*enrich.Backfiller, error) {
	p, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	return enrich.NewBackfiller(j, p, enrich.Options{
		RequestsPerSecond: cfg.Enrich.RequestsPerSecond,
		Registerer:        reg,
		Logger:            log,
	}), nil
}

func runEnrichBackfill(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	b, err := newBackfiller(j, nil)
	if err != nil {
		return err
	}
	rep, err := b.Backfill(cmd.Context(), backfillLimit)
	printBackfill(cmd.OutOrStdout(), rep)
	return err
}

func runEnrichToday(cmd *cobra.Command, args []string) error {
	day, err := dayFlag(enrichDate)
	if err != nil {
		return err
	}
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	b, err := newBackfiller(j, nil)
	if err != nil {
		return err
	}
	rep, err := b.Today(cmd.Context(), day)
	printBackfill(cmd.OutOrStdout(), rep)
	return err
}

func printBackfill(w io.Writer, r enrich.BackfillReport) {
	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Provider:      %s (%s)\n", r.Provider, r.Mode)
	fmt.Fprintf(w, "Tickers:       %d\n", r.Tickers)
	fmt.Fprintf(w, "Updated:       %d trades\n", r.Updated)
	if r.Failed > 0 {
		fmt.Fprintf(w, "Failed:        %d trades %v\n", r.Failed, r.FailedTickers)
	}
	if r.Stopped != "" {
		fmt.Fprintf(w, "Stopped:       %s\n", r.Stopped)
	}
}
