// Package tax produces a flat-rate estimate of tax owed on net trading
// income and the quarterly payment schedule.
package tax

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/journal"
)

const Disclaimer = "Simplified estimate only. Flat federal and state rates are applied to net trading income " +
	"with no deductions, brackets, wash-sale or holding-period rules. Consult a tax professional."

var (
	DefaultFederalRate = decimal.RequireFromString("0.24")
	DefaultStateRate   = decimal.RequireFromString("0.0549")
)

var (
	four    = decimal.NewFromInt(4)
	hundred = decimal.NewFromInt(100)
)

// Rates are fractional, e.g. 0.24 for 24%.
type Rates struct {
	Federal decimal.Decimal
	State   decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{Federal: DefaultFederalRate, State: DefaultStateRate}
}

type Quarter struct {
	Quarter  int    `json:"quarter"`
	Period   string `json:"period"`
	Deadline string `json:"deadline"`
}

// Report is the result of an estimate.
type Report struct {
	TotalGains        decimal.Decimal `json:"total_gains"`
	TotalLosses       decimal.Decimal `json:"total_losses"`
	NetIncome         decimal.Decimal `json:"net_trading_income"`
	FederalTax        decimal.Decimal `json:"federal_tax"`
	StateTax          decimal.Decimal `json:"state_tax"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	QuarterlyEstimate decimal.Decimal `json:"quarterly_estimate"`

	// FederalRate and StateRate are percentages for display.
	FederalRate decimal.Decimal `json:"federal_rate"`
	StateRate   decimal.Decimal `json:"state_rate"`

	CurrentQuarter int       `json:"current_quarter"`
	NextDeadline   Quarter   `json:"next_deadline"`
	Quarters       []Quarter `json:"quarters"`
	Disclaimer     string    `json:"disclaimer"`
}

// Estimate applies the default 24% federal and 5.49% state rates.
func Estimate(trades []journal.Trade, ref time.Time) Report {
	return EstimateWithRates(trades, ref, DefaultRates())
}

func EstimateWithRates(trades []journal.Trade, ref time.Time, r Rates) Report {
	gains, losses := decimal.Zero, decimal.Zero
	for _, t := range trades {
		switch t.ProfitLoss.Sign() {
		case 1:
			gains = gains.Add(t.ProfitLoss)
		case -1:
			losses = losses.Add(t.ProfitLoss.Abs())
		}
	}

	e := Report{
		TotalGains:        gains.Round(2),
		TotalLosses:       losses.Round(2),
		NetIncome:         gains.Sub(losses).Round(2),
		FederalTax:        decimal.Zero,
		StateTax:          decimal.Zero,
		TotalTax:          decimal.Zero,
		QuarterlyEstimate: decimal.Zero,
		FederalRate:       r.Federal.Mul(hundred),
		StateRate:         r.State.Mul(hundred),
		CurrentQuarter:    QuarterOf(ref.Month()),
		Quarters:          Schedule(ref.Year()),
		Disclaimer:        Disclaimer,
	}
	e.NextDeadline = e.Quarters[e.CurrentQuarter-1]

	net := gains.Sub(losses)
	if net.IsPositive() {
		federal := net.Mul(r.Federal)
		state := net.Mul(r.State)
		total := federal.Add(state)
		e.FederalTax = federal.Round(2)
		e.StateTax = state.Round(2)
		e.TotalTax = total.Round(2)
		e.QuarterlyEstimate = total.Div(four).Round(2)
	}
	return e
}

// QuarterOf maps a month to its estimated-payment quarter. The periods are
// uneven: Jan-Mar, Apr-May, Jun-Aug, Sep-Dec.
func QuarterOf(m time.Month) int {
	switch {
	case m <= time.March:
		return 1
	case m <= time.May:
		return 2
	case m <= time.August:
		return 3
	default:
		return 4
	}
}

// Schedule returns the four payment periods for year. The fourth deadline
// falls in January of the following year.
func Schedule(year int) []Quarter {
	return []Quarter{
		{Quarter: 1, Period: "Jan-Mar", Deadline: fmt.Sprintf("April 15, %d", year)},
		{Quarter: 2, Period: "Apr-May", Deadline: fmt.Sprintf("June 16, %d", year)},
		{Quarter: 3, Period: "Jun-Aug", Deadline: fmt.Sprintf("September 15, %d", year)},
		{Quarter: 4, Period: "Sep-Dec", Deadline: fmt.Sprintf("January 15, %d", year+1)},
	}
}
