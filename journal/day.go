package journal

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// Day is a calendar date with no time of day or zone. It is stored as
// TEXT in YYYY-MM-DD form so string ordering matches date ordering.
type Day struct {
	t time.Time
}

// NewDay returns the Day for the given year, month and day of month.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar date of t in t's own location.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return Day{}, &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return Day{t: t}, nil
}

func (d Day) IsZero() bool          { return d.t.IsZero() }
func (d Day) Year() int             { return d.t.Year() }
func (d Day) Month() time.Month     { return d.t.Month() }
func (d Day) Day() int              { return d.t.Day() }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }
func (d Day) Time() time.Time       { return d.t }
func (d Day) Before(o Day) bool     { return d.t.Before(o.t) }
func (d Day) After(o Day) bool      { return d.t.After(o.t) }
func (d Day) Equal(o Day) bool      { return d.t.Equal(o.t) }
func (d Day) AddDays(n int) Day     { return Day{t: d.t.AddDate(0, 0, n)} }

func (d Day) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DayLayout)
}

func (d Day) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Day{}
		return nil
	case time.Time:
		*d = DayOf(v.UTC())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	}
	return fmt.Errorf("journal: cannot scan %T into Day", src)
}

func (d *Day) scanString(s string) error {
	// sqlite may hand back a full timestamp for date columns written by
	// other tools; only the date prefix matters.
	if len(s) > len(DayLayout) {
		s = s[:len(DayLayout)]
	}
	p, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses "H:MM" or "HH:MM" (24h). Hours run 0-23 and minutes
// 0-59; anything else is ErrInvalidTimeFormat.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, invalidTime(s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, invalidTime(s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, invalidTime(s)
	}
	return Clock(h*60 + m), nil
}

// MustClock is ParseClock for literals known to be valid.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func invalidTime(s string) error {
	return &ValidationError{Field: "time", Reason: fmt.Sprintf("%q is not HH:MM", s), Err: ErrInvalidTimeFormat}
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int { return int(c) }

// Floor rounds c down to a multiple of step minutes.
func (c Clock) Floor(step int) Clock {
	return Clock(int(c) / step * step)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) Value() (driver.Value, error) {
	return c.String(), nil
}

func (c *Clock) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		*c = Clock(v)
		return nil
	default:
		return fmt.Errorf("journal: cannot scan %T into Clock", src)
	}
	p, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = p
	return nil
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = p
	return nil
}
