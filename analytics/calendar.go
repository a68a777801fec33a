package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/journal"
)

// Calendar is one month of daily P/L laid out Sunday-first.
type Calendar struct {
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	MonthName string     `json:"month_name"`

	// Weeks holds day-of-month numbers; 0 marks a blank cell.
	Weeks [][7]int `json:"weeks"`

	Daily       map[int]decimal.Decimal `json:"daily"`
	MonthTotal  decimal.Decimal         `json:"month_total"`
	TradingDays int                     `json:"trading_days"`
	WinningDays int                     `json:"winning_days"`
	LosingDays  int                     `json:"losing_days"`
}

func MonthlyCalendar(trades []journal.Trade, year int, month time.Month) Calendar {
	c := Calendar{
		Year:       year,
		Month:      month,
		MonthName:  month.String(),
		Weeks:      monthGrid(year, month),
		Daily:      map[int]decimal.Decimal{},
		MonthTotal: decimal.Zero,
	}

	for _, t := range trades {
		if t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		d := t.Date.Day()
		c.Daily[d] = c.Daily[d].Add(t.ProfitLoss)
		c.MonthTotal = c.MonthTotal.Add(t.ProfitLoss)
	}

	c.TradingDays = len(c.Daily)
	for _, pl := range c.Daily {
		switch pl.Sign() {
		case 1:
			c.WinningDays++
		case -1:
			c.LosingDays++
		}
	}
	return c
}

func monthGrid(year int, month time.Month) [][7]int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	var weeks [][7]int
	var week [7]int
	col := int(first.Weekday())
	for d := 1; d <= days; d++ {
		week[col] = d
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}
