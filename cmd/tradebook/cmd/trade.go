package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/journal"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record, list and remove trades",
	Long: `Manage closed trades in the journal.

Subcommands:
  add     - Record a closed trade
  list    - List trades, newest first
  show    - Print one trade as an Org entry
  delete  - Remove a trade

Examples:
  tradebook trade add --ticker ABCD --entry 18.90 --entry-time 09:35 --exit 22.00 --exit-time 10:05 --shares 100
  tradebook trade add --ticker WXYZ --industry Biotech --float 8500000 --volume 2100000 \
      --entry 4.10 --entry-time 09:31 --exit 4.60 --exit-time 09:40 --shares 500
  tradebook trade list --from 2024-03-01 --to 2024-03-31
  tradebook trade show 42`,
}

var tradeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a closed trade",
	Args:  cobra.NoArgs,
	RunE:  runTradeAdd,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades, newest first",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Print one trade as an Org entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeShow,
}

var tradeDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Remove a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeDelete,
}

var (
	tradeIn  journal.TradeInput
	entryStr string
	exitStr  string
	listFrom string
	listTo   string
	listOrg  bool

	volumeIn    float64
	avgVolumeIn float64
	floatIn     float64
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAddCmd, tradeListCmd, tradeShowCmd, tradeDeleteCmd)

	f := tradeAddCmd.Flags()
	f.StringVar(&tradeIn.Date, "date", "", "trade date YYYY-MM-DD (default today)")
	f.StringVarP(&tradeIn.Ticker, "ticker", "t", "", "ticker symbol, 1-5 letters")
	f.StringVar(&tradeIn.Sector, "sector", "", "sector")
	f.StringVar(&tradeIn.Industry, "industry", "", "industry")
	f.StringVar(&tradeIn.NewsType, "news", "", "news catalyst, e.g. Earnings, FDA, PR")
	f.StringVar(&entryStr, "entry", "", "entry price")
	f.StringVar(&tradeIn.EntryTime, "entry-time", "", "entry time HH:MM")
	f.StringVar(&exitStr, "exit", "", "exit price")
	f.StringVar(&tradeIn.ExitTime, "exit-time", "", "exit time HH:MM")
	f.Int64VarP(&tradeIn.Shares, "shares", "s", 0, "share count")
	f.StringVar(&tradeIn.Notes, "notes", "", "free form notes")
	f.Float64Var(&volumeIn, "volume", 0, "day volume when entered (optional)")
	f.Float64Var(&avgVolumeIn, "avg-volume", 0, "average volume (optional)")
	f.Float64Var(&floatIn, "float", 0, "shares float (optional)")

	tradeListCmd.Flags().StringVar(&listFrom, "from", "", "first date YYYY-MM-DD")
	tradeListCmd.Flags().StringVar(&listTo, "to", "", "last date YYYY-MM-DD")
	tradeListCmd.Flags().BoolVar(&listOrg, "org", false, "print as Org entries")
}

func runTradeAdd(cmd *cobra.Command, args []string) error {
	in := tradeIn
	if in.Date == "" {
		in.Date = today().String()
	}
	var err error
	if in.EntryPrice, err = priceArg("entry", entryStr); err != nil {
		return err
	}
	if in.ExitPrice, err = priceArg("exit", exitStr); err != nil {
		return err
	}
	in.Volume = optionalFlag(cmd, "volume", volumeIn)
	in.AvgVolume = optionalFlag(cmd, "avg-volume", avgVolumeIn)
	in.Float = optionalFlag(cmd, "float", floatIn)

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	t, err := journal.AddTrade(cmd.Context(), j, in, nowFunc())
	if err != nil {
		return err
	}
	log.Debug().Int64("trade_id", t.ID).Str("ticker", t.Ticker).Msg("trade added")

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Trade %d: %s %s P/L %s (%s%%) held %d min\n",
		t.ID, t.Date, t.Ticker, t.ProfitLoss.StringFixed(2), t.ProfitLossPercent.StringFixed(2), t.HoldMinutes)
	return nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	var trades []journal.Trade
	if listFrom == "" && listTo == "" {
		trades, err = j.ListTrades(cmd.Context())
	} else {
		from, to, perr := dateRange(listFrom, listTo)
		if perr != nil {
			return perr
		}
		trades, err = j.ListTradesBetween(cmd.Context(), from, to)
	}
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	w := cmd.OutOrStdout()
	if listOrg {
		fmt.Fprintln(w, journal.FormatTradesOrg(trades))
		return nil
	}
	printTrades(w, trades)
	return nil
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	id, err := idArg(args[0])
	if err != nil {
		return err
	}
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	t, err := j.GetTrade(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
	return nil
}

func runTradeDelete(cmd *cobra.Command, args []string) error {
	id, err := idArg(args[0])
	if err != nil {
		return err
	}
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	if err := journal.RemoveTrade(cmd.Context(), j, id); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted trade %d\n", id)
	return nil
}

func printTrades(w io.Writer, trades []journal.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(w, "No trades.")
		return
	}
	fmt.Fprintf(w, "%5s  %-10s  %-6s  %6s  %9s  %9s  %10s  %8s\n",
		"ID", "DATE", "TICKER", "SHARES", "ENTRY", "EXIT", "P/L", "P/L %")
	for _, t := range trades {
		fmt.Fprintf(w, "%5d  %-10s  %-6s  %6d  %9s  %9s  %10s  %8s\n",
			t.ID, t.Date, t.Ticker, t.Shares,
			t.EntryPrice.StringFixed(2), t.ExitPrice.StringFixed(2),
			t.ProfitLoss.StringFixed(2), t.ProfitLossPercent.StringFixed(2))
	}
}

func priceArg(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, &journal.ValidationError{Field: field + "_price", Reason: "is required"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &journal.ValidationError{Field: field + "_price", Reason: "must be a number", Err: err}
	}
	return d, nil
}

// optionalFlag returns v only when the flag was given.
func optionalFlag(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func idArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &journal.ValidationError{Field: "id", Reason: "must be a number", Err: err}
	}
	return id, nil
}

func dateRange(from, to string) (journal.Day, journal.Day, error) {
	var start, end journal.Day
	var err error
	if from == "" {
		start = journal.NewDay(1970, 1, 1)
	} else if start, err = journal.ParseDay(from); err != nil {
		return start, end, err
	}
	if to == "" {
		end = today()
	} else if end, err = journal.ParseDay(to); err != nil {
		return start, end, err
	}
	return start, end, nil
}
