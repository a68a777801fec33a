package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/journal"
)

// Streaks counts consecutive trading dates, skipping days with no trades.
type Streaks struct {
	NetPositiveCurrent int `json:"net_positive_current"`
	NetPositiveBest    int `json:"net_positive_best"`
	ZeroLossCurrent    int `json:"zero_loss_current"`
	ZeroLossBest       int `json:"zero_loss_best"`
}

type tradingDay struct {
	day     journal.Day
	total   decimal.Decimal
	allWins bool
}

func ComputeStreaks(trades []journal.Trade) Streaks {
	days := tradingDays(trades)

	netPositive := func(d tradingDay) bool { return d.total.IsPositive() }
	zeroLoss := func(d tradingDay) bool { return d.allWins }

	return Streaks{
		NetPositiveCurrent: currentRun(days, netPositive),
		NetPositiveBest:    bestRun(days, netPositive),
		ZeroLossCurrent:    currentRun(days, zeroLoss),
		ZeroLossBest:       bestRun(days, zeroLoss),
	}
}

// tradingDays reduces trades to one entry per date, oldest first.
func tradingDays(trades []journal.Trade) []tradingDay {
	byDay := map[string]*tradingDay{}
	for _, t := range trades {
		key := t.Date.String()
		d, ok := byDay[key]
		if !ok {
			d = &tradingDay{day: t.Date, total: decimal.Zero, allWins: true}
			byDay[key] = d
		}
		d.total = d.total.Add(t.ProfitLoss)
		if !t.ProfitLoss.IsPositive() {
			d.allWins = false
		}
	}

	out := make([]tradingDay, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].day.Before(out[j].day) })
	return out
}

func bestRun(days []tradingDay, ok func(tradingDay) bool) int {
	best, run := 0, 0
	for _, d := range days {
		if !ok(d) {
			run = 0
			continue
		}
		run++
		if run > best {
			best = run
		}
	}
	return best
}

func currentRun(days []tradingDay, ok func(tradingDay) bool) int {
	n := 0
	for i := len(days) - 1; i >= 0 && ok(days[i]); i-- {
		n++
	}
	return n
}
