package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/analytics"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/report"
)

var capitalCmd = &cobra.Command{
	Use:   "capital",
	Short: "Record deposits and withdrawals",
	Long: `Track money moved into and out of the trading account.

Examples:
  tradebook capital deposit 5000 --notes "initial funding"
  tradebook capital withdraw 750 --date 2024-03-29
  tradebook capital list`,
}

var capitalDepositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Record a deposit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCapital(cmd, journal.Deposit, args[0])
	},
}

var capitalWithdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Record a withdrawal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCapital(cmd, journal.Withdrawal, args[0])
	},
}

var capitalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions and the account total",
	Args:  cobra.NoArgs,
	RunE:  runCapitalList,
}

var (
	capitalDate  string
	capitalNotes string
)

func init() {
	rootCmd.AddCommand(capitalCmd)
	capitalCmd.AddCommand(capitalDepositCmd, capitalWithdrawCmd, capitalListCmd)

	for _, c := range []*cobra.Command{capitalDepositCmd, capitalWithdrawCmd} {
		c.Flags().StringVar(&capitalDate, "date", "", "transaction date YYYY-MM-DD (default today)")
		c.Flags().StringVar(&capitalNotes, "notes", "", "notes")
	}
}

func runCapital(cmd *cobra.Command, typ journal.TxType, amountStr string) error {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return &journal.ValidationError{Field: "amount", Reason: "must be a number", Err: err}
	}
	date := capitalDate
	if date == "" {
		date = today().String()
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	c, err := journal.AddCapital(cmd.Context(), j, date, typ, amount, capitalNotes, nowFunc())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded %s of %s on %s\n", c.Type, c.Amount.StringFixed(2), c.Date)
	return nil
}

func runCapitalList(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	txs, err := j.ListCapital(cmd.Context())
	if err != nil {
		return err
	}
	trades, err := j.ListTrades(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%5s  %-10s  %-10s  %12s  %s\n", "ID", "DATE", "TYPE", "AMOUNT", "NOTES")
	for _, tx := range txs {
		fmt.Fprintf(w, "%5d  %-10s  %-10s  %12s  %s\n", tx.ID, tx.Date, tx.Type, tx.Amount.StringFixed(2), tx.Notes)
	}
	fmt.Fprintln(w)
	report.PrintCapital(w, analytics.CapitalSummary(txs, trades))
	return nil
}
