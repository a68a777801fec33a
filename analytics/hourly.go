package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/journal"
)

// BucketMinutes is the width of an hourly performance bucket.
const BucketMinutes = 15

type HourlyBucket struct {
	Label  string          `json:"time"`
	Minute int             `json:"minute"`
	PnL    decimal.Decimal `json:"pnl"`
	Trades int             `json:"trades"`
}

// HourlyPerformance sums P/L by entry time floored to 15 minutes, ordered
// by time of day.
func HourlyPerformance(trades []journal.Trade) []HourlyBucket {
	byStart := map[journal.Clock]*HourlyBucket{}
	for _, t := range trades {
		start := t.EntryTime.Floor(BucketMinutes)
		b, ok := byStart[start]
		if !ok {
			b = &HourlyBucket{Label: start.String(), Minute: start.Minutes(), PnL: decimal.Zero}
			byStart[start] = b
		}
		b.PnL = b.PnL.Add(t.ProfitLoss)
		b.Trades++
	}

	out := make([]HourlyBucket, 0, len(byStart))
	for _, b := range byStart {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minute < out[j].Minute })
	return out
}
