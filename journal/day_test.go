package journal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	t.Parallel()

	d, err := ParseDay("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 29, d.Day())
	assert.Equal(t, time.Thursday, d.Weekday())
	assert.Equal(t, "2024-02-29", d.String())

	for _, bad := range []string{"", "2024/02/29", "2023-02-29", "29-02-2024", "2024-2-9"} {
		_, err := ParseDay(bad)
		assert.Error(t, err, bad)
		assert.True(t, IsValidation(err), bad)
	}
}

func TestDayScan(t *testing.T) {
	t.Parallel()

	var d Day
	require.NoError(t, d.Scan("2024-06-03"))
	assert.Equal(t, "2024-06-03", d.String())

	require.NoError(t, d.Scan([]byte("2024-06-04 00:00:00")))
	assert.Equal(t, "2024-06-04", d.String())

	require.NoError(t, d.Scan(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-06-05", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestDayJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(NewDay(2024, time.July, 4))
	require.NoError(t, err)
	assert.Equal(t, `"2024-07-04"`, string(b))

	var d Day
	require.NoError(t, json.Unmarshal([]byte(`"2024-07-05"`), &d))
	assert.Equal(t, time.Friday, d.Weekday())
	assert.Error(t, json.Unmarshal([]byte(`"July 5"`), &d))
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:30", 570, false},
		{"9:30", 570, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{" 15:45 ", 945, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:5", 0, true},
		{"930", 0, true},
		{"+9:30", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
		{"9:30 PM", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			c, err := ParseClock(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTimeFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Minutes())
		})
	}
}

func TestClockFloorAndString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "09:45", MustClock("09:47").Floor(15).String())
	assert.Equal(t, "09:30", MustClock("09:44").Floor(15).String())
	assert.Equal(t, "10:00", MustClock("10:00").Floor(15).String())
	assert.Equal(t, "07:05", MustClock("7:05").String())
	assert.Equal(t, 7, MustClock("7:05").Hour())
	assert.Equal(t, 5, MustClock("7:05").Minute())
}

func TestClockScan(t *testing.T) {
	t.Parallel()

	var c Clock
	require.NoError(t, c.Scan("14:05"))
	assert.Equal(t, 845, c.Minutes())
	require.NoError(t, c.Scan(int64(61)))
	assert.Equal(t, "01:01", c.String())
	assert.Error(t, c.Scan("noon"))
	assert.Error(t, c.Scan(1.5))
}
