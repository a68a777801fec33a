package journal

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

var tradeCSVHeader = []string{
	"id", "date", "day_of_week", "ticker", "sector", "industry", "news_type",
	"entry_price", "entry_time", "exit_price", "exit_time", "shares",
	"position_size", "hold_duration", "profit_loss", "profit_loss_percent", "is_win", "notes",
	"float", "avg_volume", "day_volume", "market_cap", "stock_type", "exchange", "auto_sector",
	"data_fetched",
}

// WriteTradesCSV writes trades in the order given with a header row.
// Unenriched fields are left empty.
func WriteTradesCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeCSVHeader); err != nil {
		return err
	}
	for _, t := range trades {
		if err := cw.Write(tradeRow(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportTradesCSV writes trades to a new file at path.
func ExportTradesCSV(path string, trades []Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTradesCSV(f, trades); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func tradeRow(t Trade) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		t.Date.String(),
		t.DayOfWeek,
		t.Ticker,
		t.Sector,
		t.Industry,
		t.NewsType,
		t.EntryPrice.String(),
		t.EntryTime.String(),
		t.ExitPrice.String(),
		t.ExitTime.String(),
		strconv.FormatInt(t.Shares, 10),
		t.PositionSize.StringFixed(2),
		strconv.Itoa(t.HoldMinutes),
		t.ProfitLoss.StringFixed(2),
		t.ProfitLossPercent.StringFixed(2),
		boolCol(t.IsWin),
		t.Notes,
		f(t.Float),
		f(t.AvgVolume),
		f(t.DayVolume),
		f(t.MarketCap),
		s(t.StockType),
		s(t.Exchange),
		s(t.AutoSector),
		boolCol(t.DataFetched),
	}
}

func f(x *float64) string {
	if x == nil {
		return ""
	}
	return strconv.FormatFloat(*x, 'f', -1, 64)
}

func s(x *string) string {
	if x == nil {
		return ""
	}
	return *x
}

func boolCol(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
