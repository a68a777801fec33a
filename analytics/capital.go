package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/journal"
)

// Capital is the account balance built from capital movements and
// realized trading P/L.
type Capital struct {
	Deposits    decimal.Decimal `json:"deposits"`
	Withdrawals decimal.Decimal `json:"withdrawals"`
	TradingPL   decimal.Decimal `json:"trading_pl"`
	Total       decimal.Decimal `json:"total"`
}

func CapitalSummary(txs []journal.CapitalTransaction, trades []journal.Trade) Capital {
	c := Capital{
		Deposits:    decimal.Zero,
		Withdrawals: decimal.Zero,
		TradingPL:   sumPL(trades),
	}
	for _, tx := range txs {
		switch tx.Type {
		case journal.Deposit:
			c.Deposits = c.Deposits.Add(tx.Amount)
		case journal.Withdrawal:
			c.Withdrawals = c.Withdrawals.Add(tx.Amount)
		}
	}
	c.Total = c.Deposits.Sub(c.Withdrawals).Add(c.TradingPL)
	return c
}
