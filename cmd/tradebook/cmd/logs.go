package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/journal"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show and maintain the activity log",
	Long: `The activity log records every trade, capital movement, SQL query and
enrichment run.

Subcommands:
  list  - Newest entries first
  trim  - Keep only the most recent entries
  clear - Delete every entry
  read  - Mark all entries as read`,
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show log entries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runLogsList,
}

var logsTrimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Keep only the most recent entries",
	Args:  cobra.NoArgs,
	RunE:  runLogsTrim,
}

var logsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every log entry",
	Args:  cobra.NoArgs,
	RunE:  runLogsClear,
}

var logsReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Mark all entries as read",
	Args:  cobra.NoArgs,
	RunE:  runLogsRead,
}

var (
	logsLimit int
	logsKeep  int
)

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsListCmd, logsTrimCmd, logsClearCmd, logsReadCmd)

	logsListCmd.Flags().IntVarP(&logsLimit, "limit", "n", journal.DefaultLogKeep, "entries to show, 0 for all")
	logsTrimCmd.Flags().IntVar(&logsKeep, "keep", journal.DefaultLogKeep, "entries to keep")
}

func runLogsList(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.ListLogs(cmd.Context(), logsLimit)
	if err != nil {
		return err
	}
	unread, err := j.UnreadLogCount(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d unread\n", unread)
	for _, e := range entries {
		mark := " "
		if !e.IsRead {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s  %-8s  %-15s  %s\n", mark, e.Timestamp.Format("2006-01-02 15:04:05"), e.Category, e.ActionType, e.Description)
	}
	return nil
}

func runLogsTrim(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	n, err := j.TrimLogTrail(cmd.Context(), logsKeep)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d entries\n", n)
	return nil
}

func runLogsClear(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	n, err := j.ClearLogTrail(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d entries\n", n)
	return nil
}

func runLogsRead(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	if err := j.MarkLogsRead(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ All entries marked read")
	return nil
}
