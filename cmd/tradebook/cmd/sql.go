package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/journal"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run raw SQL against the journal",
	Long: `Run a SQL statement directly against the journal database.

The console is off by default. It runs only when the config file sets
console.enabled: true and --allow-sql is passed.

Example:
  tradebook sql --allow-sql "SELECT ticker, SUM(profit_loss) FROM trades GROUP BY ticker"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

var allowSQL bool

func init() {
	rootCmd.AddCommand(sqlCmd)
	sqlCmd.Flags().BoolVar(&allowSQL, "allow-sql", false, "permit raw SQL (console.enabled must also be set)")
}

func runSQL(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	res, err := j.Console(cfg.Console.Enabled && allowSQL).Exec(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	printQueryResult(cmd.OutOrStdout(), res)
	return nil
}

func printQueryResult(w io.Writer, r journal.QueryResult) {
	if r.Select {
		fmt.Fprintln(w, strings.Join(r.Columns, "\t"))
		for _, row := range r.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				if v == nil {
					cells[i] = "NULL"
					continue
				}
				cells[i] = fmt.Sprint(v)
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
	}
	fmt.Fprintln(w, r.Message())
}
