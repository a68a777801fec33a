package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

var orgFuncs = template.FuncMap{
	"money":  func(d decimal.Decimal) string { return d.StringFixed(2) },
	"signed": signed,
	"pct":    func(f float64) string { return fmt.Sprintf("%.1f", f) },
	"stamp":  func(t time.Time) string { return t.Format("2006-01-02 Mon 15:04") },
}

var orgTemplate = template.Must(template.New("dashboard").Funcs(orgFuncs).Parse(DashboardOrgTemplate))

// WriteOrg renders d as an Org-mode document.
func (d Dashboard) WriteOrg(w io.Writer) error {
	return orgTemplate.Execute(w, d)
}

// WriteOrgFile renders d to path.
func WriteOrgFile(path string, d Dashboard) error {
	buf := new(bytes.Buffer)
	if err := d.WriteOrg(buf); err != nil {
		return fmt.Errorf("render org: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

const DashboardOrgTemplate = `* DASHBOARD {{.Calendar.MonthName}} {{.Calendar.Year}}
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:CREATED:     [{{stamp .Generated}}]
:TRADES:      {{.Stats.TotalTrades}}
:WINS:        {{.Stats.Wins}}
:LOSSES:      {{.Stats.Losses}}
:WIN_RATE:    {{pct .Stats.WinRate}}
:NET_PL:      {{money .Stats.TotalProfit}}
:BALANCE:     {{money .Capital.Total}}
:END:

** Performance Summary
{{- if .HasTrades }}
- Total P/L:        *{{signed .Stats.TotalProfit}}*
- Win Rate:         *{{pct .Stats.WinRate}}%*
- Avg Win:          *{{signed .Stats.AvgWin}}*
- Avg Loss:         *{{signed .Stats.AvgLoss}}*
- Best Trade:       *{{signed .Stats.BestTrade}}*
- Worst Trade:      *{{signed .Stats.WorstTrade}}*
{{- else }}
- No trades recorded.
{{- end }}

** Account
| Deposits | Withdrawals | Trading P/L | Total |
|----------+-------------+-------------+-------|
| {{money .Capital.Deposits}} | {{money .Capital.Withdrawals}} | {{signed .Capital.TradingPL}} | {{money .Capital.Total}} |

** Streaks
- Net positive days: {{.Streaks.NetPositiveCurrent}} current, {{.Streaks.NetPositiveBest}} best
- Zero loss days:    {{.Streaks.ZeroLossCurrent}} current, {{.Streaks.ZeroLossBest}} best

** {{.Calendar.MonthName}} {{.Calendar.Year}}
- Month P/L: {{signed .Calendar.MonthTotal}} over {{.Calendar.TradingDays}} trading days ({{.Calendar.WinningDays}} green, {{.Calendar.LosingDays}} red)

{{- if .Hourly }}

** P/L by Entry Time
| Time | Trades | P/L |
|------+--------+-----|
{{- range .Hourly }}
| {{.Label}} | {{.Trades}} | {{signed .PnL}} |
{{- end }}
{{- end }}

** P/L by Entry Price
| Band | Trades | P/L |
|------+--------+-----|
{{- range .Prices }}
| {{.Band}} | {{.Trades}} | {{signed .PnL}} |
{{- end }}

** Win Rate by Day
| Day | Trades | Wins | Win Rate |
|-----+--------+------+----------|
{{- range .Weekdays }}
| {{.Day}} | {{.Trades}} | {{.Wins}} | {{pct .WinRate}}% |
{{- end }}

** Estimated Taxes
- Net trading income: {{signed .Taxes.NetIncome}}
- Federal ({{.Taxes.FederalRate}}%): {{money .Taxes.FederalTax}}
- State ({{.Taxes.StateRate}}%): {{money .Taxes.StateTax}}
- Quarterly estimate: *{{money .Taxes.QuarterlyEstimate}}*, next due {{.Taxes.NextDeadline.Deadline}}

# {{.Taxes.Disclaimer}}
{{- if .Recent }}

** Recent Trades
{{- range .Recent }}
- {{.Date}} {{.Ticker}} {{.Shares}} @ {{money .EntryPrice}} -> {{money .ExitPrice}} {{signed .ProfitLoss}}
{{- end }}
{{- end }}
`
