package analytics

import (
	"time"

	"github.com/rustyeddy/tradebook/journal"
)

type WeekdayRate struct {
	Day     string  `json:"day"`
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

var tradingWeek = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// WinRateByWeekday reports Monday through Friday in order, including days
// with no trades. Weekend trades are ignored.
func WinRateByWeekday(trades []journal.Trade) []WeekdayRate {
	idx := map[time.Weekday]int{}
	out := make([]WeekdayRate, len(tradingWeek))
	for i, d := range tradingWeek {
		idx[d] = i
		out[i].Day = d.String()
	}

	for _, t := range trades {
		i, ok := idx[t.Date.Weekday()]
		if !ok {
			continue
		}
		out[i].Trades++
		if t.IsWin {
			out[i].Wins++
		}
	}
	for i := range out {
		if out[i].Trades > 0 {
			out[i].WinRate = float64(out[i].Wins) / float64(out[i].Trades) * 100
		}
	}
	return out
}
