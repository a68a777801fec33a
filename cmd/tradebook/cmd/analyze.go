package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/enrich"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <ticker>",
	Short: "Float, volume and recent news for a ticker",
	Long: `Look up a ticker before trading it: free float and its category, float
rotation, relative volume and news from today and yesterday. News needs the
alphavantage provider.

Float categories: Low < 20M shares, Medium < 100M, High otherwise.

Example:
  tradebook analyze ABCD`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeJSON bool

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	p, err := newProvider(cfg)
	if err != nil {
		return err
	}
	a, err := enrich.NewAnalyzer(p, log).Analyze(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if analyzeJSON {
		return writeJSON(w, a)
	}
	printAnalysis(w, a)
	return nil
}

func printAnalysis(w io.Writer, a enrich.Analysis) {
	fmt.Fprintf(w, "%s", a.Ticker)
	if a.Sector != "" {
		fmt.Fprintf(w, "  %s", a.Sector)
		if a.Industry != "" {
			fmt.Fprintf(w, " / %s", a.Industry)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Price:           $%.2f (%+.2f%%)\n", a.Price, a.ChangePercent)
	fmt.Fprintf(w, "Free Float:      %.2fM (%s)\n", a.FloatMillions, a.FloatCategory)
	fmt.Fprintf(w, "Volume:          %.0f (avg %.0f)\n", a.Volume, a.AvgVolume)
	fmt.Fprintf(w, "Float Rotation:  %.2fx\n", a.FloatRotation)
	fmt.Fprintf(w, "Relative Volume: %.2fx\n", a.RelativeVolume)

	switch {
	case a.NewsError != "":
		fmt.Fprintf(w, "News:            unavailable (%s)\n", a.NewsError)
	case len(a.News) == 0:
		fmt.Fprintln(w, "News:            none today or yesterday")
	default:
		fmt.Fprintf(w, "News (%d):\n", len(a.News))
		for _, n := range a.News {
			fmt.Fprintf(w, "  %s  %-16s %s\n", n.Published.Format("01-02 15:04"), n.Label, n.Title)
		}
	}

	if a.RemainingRequests != nil {
		fmt.Fprintf(w, "API requests remaining today: %d\n", *a.RemainingRequests)
	}
}
