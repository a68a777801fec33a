package journal

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTradesCSV(t *testing.T) {
	t.Parallel()

	tr, err := NewTrade(validInput(), testNow)
	require.NoError(t, err)
	tr.ID = 7
	mc := 2.5e8
	ex := "NASDAQ"
	tr.MarketCap = &mc
	tr.Exchange = &ex
	tr.DataFetched = true

	var buf bytes.Buffer
	require.NoError(t, WriteTradesCSV(&buf, []Trade{tr}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, tradeCSVHeader, records[0])

	row := map[string]string{}
	for i, h := range records[0] {
		row[h] = records[1][i]
	}
	assert.Equal(t, "7", row["id"])
	assert.Equal(t, "2024-03-14", row["date"])
	assert.Equal(t, "ABCD", row["ticker"])
	assert.Equal(t, "09:35", row["entry_time"])
	assert.Equal(t, "310.00", row["profit_loss"])
	assert.Equal(t, "16.40", row["profit_loss_percent"])
	assert.Equal(t, "1", row["is_win"])
	assert.Equal(t, "250000000", row["market_cap"])
	assert.Equal(t, "NASDAQ", row["exchange"])
	assert.Equal(t, "", row["float"])
	assert.Equal(t, "1", row["data_fetched"])
}

func TestExportTradesCSVEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, ExportTradesCSV(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
