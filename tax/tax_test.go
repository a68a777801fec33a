package tax

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebook/journal"
)

func pl(amounts ...string) []journal.Trade {
	out := make([]journal.Trade, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, journal.Trade{ProfitLoss: decimal.RequireFromString(a)})
	}
	return out
}

var ref = time.Date(2024, time.July, 10, 12, 0, 0, 0, time.UTC)

func TestEstimateNetGain(t *testing.T) {
	t.Parallel()

	e := Estimate(pl("6000", "4000", "-1500", "-500", "0"), ref)

	assert.Equal(t, "10000.00", e.TotalGains.StringFixed(2))
	assert.Equal(t, "2000.00", e.TotalLosses.StringFixed(2))
	assert.Equal(t, "8000.00", e.NetIncome.StringFixed(2))
	assert.Equal(t, "1920.00", e.FederalTax.StringFixed(2))
	assert.Equal(t, "439.20", e.StateTax.StringFixed(2))
	assert.Equal(t, "2359.20", e.TotalTax.StringFixed(2))
	assert.Equal(t, "589.80", e.QuarterlyEstimate.StringFixed(2))
	assert.Equal(t, "24", e.FederalRate.String())
	assert.Equal(t, "5.49", e.StateRate.String())
	assert.Equal(t, Disclaimer, e.Disclaimer)
}

func TestEstimateNetLoss(t *testing.T) {
	t.Parallel()

	e := Estimate(pl("1000", "-5000"), ref)

	assert.Equal(t, "-4000.00", e.NetIncome.StringFixed(2))
	assert.True(t, e.FederalTax.IsZero())
	assert.True(t, e.StateTax.IsZero())
	assert.True(t, e.TotalTax.IsZero())
	assert.True(t, e.QuarterlyEstimate.IsZero())
	assert.Equal(t, "1000.00", e.TotalGains.StringFixed(2))
	assert.Equal(t, "5000.00", e.TotalLosses.StringFixed(2))
}

func TestEstimateBreakevenAndEmpty(t *testing.T) {
	t.Parallel()

	for _, trades := range [][]journal.Trade{nil, pl("500", "-500")} {
		e := Estimate(trades, ref)
		assert.True(t, e.NetIncome.IsZero())
		assert.True(t, e.TotalTax.IsZero())
		assert.Len(t, e.Quarters, 4)
	}
}

func TestEstimateWithRates(t *testing.T) {
	t.Parallel()

	r := Rates{Federal: decimal.RequireFromString("0.10"), State: decimal.Zero}
	e := EstimateWithRates(pl("1000"), ref, r)
	assert.Equal(t, "100.00", e.FederalTax.StringFixed(2))
	assert.True(t, e.StateTax.IsZero())
	assert.Equal(t, "25.00", e.QuarterlyEstimate.StringFixed(2))
}

func TestQuarterOf(t *testing.T) {
	t.Parallel()

	want := map[time.Month]int{
		time.January: 1, time.February: 1, time.March: 1,
		time.April: 2, time.May: 2,
		time.June: 3, time.July: 3, time.August: 3,
		time.September: 4, time.October: 4, time.November: 4, time.December: 4,
	}
	for m, q := range want {
		assert.Equal(t, q, QuarterOf(m), m.String())
	}
}

func TestScheduleAndNextDeadline(t *testing.T) {
	t.Parallel()

	s := Schedule(2024)
	require.Len(t, s, 4)
	assert.Equal(t, Quarter{1, "Jan-Mar", "April 15, 2024"}, s[0])
	assert.Equal(t, Quarter{2, "Apr-May", "June 16, 2024"}, s[1])
	assert.Equal(t, Quarter{3, "Jun-Aug", "September 15, 2024"}, s[2])
	assert.Equal(t, Quarter{4, "Sep-Dec", "January 15, 2025"}, s[3])

	e := Estimate(nil, time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2, e.CurrentQuarter)
	assert.Equal(t, "June 16, 2024", e.NextDeadline.Deadline)

	e = Estimate(nil, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 4, e.CurrentQuarter)
	assert.Equal(t, "January 15, 2025", e.NextDeadline.Deadline)
}
