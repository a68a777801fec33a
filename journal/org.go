package journal

import (
	"fmt"
	"strings"
)

// FormatTradeOrg renders a trade as an Org-mode block. Structured facts go
// in a PROPERTIES drawer; the subheadings are left for the trader's notes.
func FormatTradeOrg(t Trade) string {
	result := "LOSS"
	if t.IsWin {
		result = "WIN"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s %s\n", t.Date, t.Ticker, result)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %d\n", t.ID)
	fmt.Fprintf(&b, ":TICKER: %s\n", t.Ticker)
	fmt.Fprintf(&b, ":DATE: %s\n", t.Date)
	fmt.Fprintf(&b, ":DAY: %s\n", t.DayOfWeek)
	if t.Sector != "" {
		fmt.Fprintf(&b, ":SECTOR: %s\n", t.Sector)
	}
	if t.NewsType != "" {
		fmt.Fprintf(&b, ":NEWS: %s\n", t.NewsType)
	}
	fmt.Fprintf(&b, ":SHARES: %d\n", t.Shares)
	fmt.Fprintf(&b, ":ENTRY: %s @ %s\n", t.EntryPrice.StringFixed(2), t.EntryTime)
	fmt.Fprintf(&b, ":EXIT: %s @ %s\n", t.ExitPrice.StringFixed(2), t.ExitTime)
	fmt.Fprintf(&b, ":HOLD_MINUTES: %d\n", t.HoldMinutes)
	fmt.Fprintf(&b, ":PL: %s\n", t.ProfitLoss.StringFixed(2))
	fmt.Fprintf(&b, ":PL_PERCENT: %s\n", t.ProfitLossPercent.StringFixed(2))
	b.WriteString(":END:\n\n")
	if t.Notes != "" {
		b.WriteString(t.Notes)
		b.WriteString("\n\n")
	}
	b.WriteString("*** Setup\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")
	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}
