// Package analytics computes dashboard aggregates from ledger snapshots.
// Every function is a pure function of the slices passed in; callers pass a
// fresh scan of the ledger on each call.
package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/journal"
)

// Stats summarizes a set of trades.
type Stats struct {
	TotalTrades int             `json:"total_trades"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
	WinRate     float64         `json:"win_rate"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	AvgWin      decimal.Decimal `json:"avg_win"`
	AvgLoss     decimal.Decimal `json:"avg_loss"`
	BestTrade   decimal.Decimal `json:"best_trade"`
	WorstTrade  decimal.Decimal `json:"worst_trade"`
}

// PortfolioStats returns ok=false when there are no trades. AvgLoss is the
// mean P/L over non-winning trades, so it is zero or negative.
func PortfolioStats(trades []journal.Trade) (Stats, bool) {
	if len(trades) == 0 {
		return Stats{}, false
	}

	s := Stats{
		TotalTrades: len(trades),
		BestTrade:   trades[0].ProfitLoss,
		WorstTrade:  trades[0].ProfitLoss,
	}
	winSum, lossSum := decimal.Zero, decimal.Zero
	for _, t := range trades {
		s.TotalProfit = s.TotalProfit.Add(t.ProfitLoss)
		if t.IsWin {
			s.Wins++
			winSum = winSum.Add(t.ProfitLoss)
		} else {
			lossSum = lossSum.Add(t.ProfitLoss)
		}
		if t.ProfitLoss.GreaterThan(s.BestTrade) {
			s.BestTrade = t.ProfitLoss
		}
		if t.ProfitLoss.LessThan(s.WorstTrade) {
			s.WorstTrade = t.ProfitLoss
		}
	}
	s.Losses = s.TotalTrades - s.Wins
	s.WinRate = float64(s.Wins) / float64(s.TotalTrades) * 100
	s.AvgWin = mean(winSum, s.Wins)
	s.AvgLoss = mean(lossSum, s.Losses)
	return s, true
}

func mean(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

func sumPL(trades []journal.Trade) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.ProfitLoss)
	}
	return total
}
