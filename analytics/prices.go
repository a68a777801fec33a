package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/journal"
)

type PriceBand struct {
	Band   string          `json:"price_band"`
	PnL    decimal.Decimal `json:"pnl"`
	Trades int             `json:"trades"`
}

// bandOrder lists every band from cheapest to most expensive.
var bandOrder = []string{
	"Sub $1", "$1", "$2", "$3", "$4", "$5", "$6", "$7", "$8", "$9",
	"$10-14", "$15-19", "$20+",
}

var (
	one     = decimal.NewFromInt(1)
	ten     = decimal.NewFromInt(10)
	fifteen = decimal.NewFromInt(15)
	twenty  = decimal.NewFromInt(20)
)

// PriceBandFor classifies an entry price. Lower bounds are inclusive.
func PriceBandFor(price decimal.Decimal) string {
	switch {
	case price.LessThan(one):
		return "Sub $1"
	case price.LessThan(ten):
		return bandOrder[price.IntPart()]
	case price.LessThan(fifteen):
		return "$10-14"
	case price.LessThan(twenty):
		return "$15-19"
	default:
		return "$20+"
	}
}

// ProfitsByPrice sums P/L per entry price band in price order. Bands with
// no trades are left out.
func ProfitsByPrice(trades []journal.Trade) []PriceBand {
	byBand := map[string]*PriceBand{}
	for _, t := range trades {
		name := PriceBandFor(t.EntryPrice)
		b, ok := byBand[name]
		if !ok {
			b = &PriceBand{Band: name, PnL: decimal.Zero}
			byBand[name] = b
		}
		b.PnL = b.PnL.Add(t.ProfitLoss)
		b.Trades++
	}

	out := make([]PriceBand, 0, len(byBand))
	for _, name := range bandOrder {
		if b, ok := byBand[name]; ok {
			out = append(out, *b)
		}
	}
	return out
}
