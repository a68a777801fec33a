// Package enrich fills trades with stock metadata from an external
// provider. Provider failures never touch the trade itself; the optional
// fields simply stay empty.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rustyeddy/tradebook/journal"
)

type StockData = journal.StockData

// ErrUnavailable wraps every provider failure.
var ErrUnavailable = errors.New("enrichment unavailable")

// Provider looks up metadata for one ticker.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, ticker string) (StockData, error)
}

// Budgeted providers count requests against a daily allowance.
type Budgeted interface {
	GetRemainingRequests() int
}

// Unavailable wraps err as an enrichment failure from provider.
func Unavailable(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrUnavailable, err)
}

// DefaultHTTPClient is used by providers that are not given one.
var DefaultHTTPClient = &http.Client{Timeout: 10 * time.Second}

// GetJSON fetches url and decodes the body into v. Non-200 responses are
// errors.
func GetJSON(ctx context.Context, c *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "tradebook/1.0")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// ErrRateLimitExceeded is returned when a provider's daily budget is spent.
type ErrRateLimitExceeded struct {
	Limit int
}

func (e ErrRateLimitExceeded) Error() string {
	return fmt.Sprintf("daily request limit of %d reached", e.Limit)
}

// Budget counts requests per calendar day.
type Budget struct {
	mu   sync.Mutex
	max  int
	used int
	day  string
	now  func() time.Time
}

func NewBudget(max int) *Budget {
	return &Budget{max: max, now: time.Now}
}

// Take spends one request or reports ErrRateLimitExceeded.
func (b *Budget) Take() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	if b.used >= b.max {
		return ErrRateLimitExceeded{Limit: b.max}
	}
	b.used++
	return nil
}

func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	return b.max - b.used
}

func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	return b.used
}

func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used = 0
}

func (b *Budget) roll() {
	today := b.now().Format(journal.DayLayout)
	if today != b.day {
		b.day = today
		b.used = 0
	}
}
