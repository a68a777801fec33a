// Package fmp is an enrich.Provider backed by the Financial Modeling Prep
// profile and shares-float endpoints.
package fmp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradebook/enrich"
)

const (
	DefaultBaseURL = "https://financialmodelingprep.com/stable"
	DailyLimit     = 250

	cacheTTL = 12 * time.Hour
)

var ErrNoData = errors.New("no data for symbol")

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	budget  *enrich.Budget
	log     zerolog.Logger

	mu    sync.RWMutex
	cache map[string]any
	until map[string]time.Time
}

var _ enrich.Provider = (*Client)(nil)

func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    enrich.DefaultHTTPClient,
		budget:  enrich.NewBudget(DailyLimit),
		log:     log.With().Str("component", "fmp").Logger(),
		cache:   make(map[string]any),
		until:   make(map[string]time.Time),
	}
}

func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// WithDailyLimit replaces the free tier allowance.
func (c *Client) WithDailyLimit(n int) *Client {
	if n > 0 {
		c.budget = enrich.NewBudget(n)
	}
	return c
}

func (c *Client) Name() string { return "fmp" }

func (c *Client) GetRemainingRequests() int { return c.budget.Remaining() }

func (c *Client) ResetDailyCounter() { c.budget.Reset() }

// Profile is the subset of /profile the journal keeps.
type Profile struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	MarketCap         float64 `json:"marketCap"`
	Volume            float64 `json:"volume"`
	AverageVolume     float64 `json:"averageVolume"`
	ChangePercentage  float64 `json:"changePercentage"`
	Sector            string  `json:"sector"`
	Industry          string  `json:"industry"`
	Exchange          string  `json:"exchange"`
	ExchangeShortName string  `json:"exchangeShortName"`
	IsEtf             bool    `json:"isEtf"`
	IsFund            bool    `json:"isFund"`
}

func (p Profile) stockType() string {
	switch {
	case p.IsEtf:
		return "ETF"
	case p.IsFund:
		return "Fund"
	default:
		return "Common Stock"
	}
}

func (p Profile) exchange() string {
	if p.ExchangeShortName != "" {
		return p.ExchangeShortName
	}
	return p.Exchange
}

type SharesFloat struct {
	Symbol            string  `json:"symbol"`
	FreeFloat         float64 `json:"freeFloat"`
	FloatShares       float64 `json:"floatShares"`
	OutstandingShares float64 `json:"outstandingShares"`
}

// Lookup needs the profile; the float is optional.
func (c *Client) Lookup(ctx context.Context, ticker string) (enrich.StockData, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	p, err := c.Profile(ctx, ticker)
	if err != nil {
		return enrich.StockData{}, enrich.Unavailable(c.Name(), err)
	}

	sd := enrich.StockData{
		Ticker:        ticker,
		Sector:        p.Sector,
		Industry:      p.Industry,
		Exchange:      p.exchange(),
		StockType:     p.stockType(),
		MarketCap:     p.MarketCap,
		Price:         p.Price,
		Volume:        p.Volume,
		AvgVolume:     p.AverageVolume,
		ChangePercent: p.ChangePercentage,
	}

	f, err := c.SharesFloat(ctx, ticker)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("shares float unavailable")
		return sd, nil
	}
	sd.SharesFloat = f.FloatShares
	sd.SharesOutstanding = f.OutstandingShares
	return sd, nil
}

func (c *Client) Profile(ctx context.Context, ticker string) (Profile, error) {
	var out []Profile
	if err := c.get(ctx, "profile", ticker, &out); err != nil {
		return Profile{}, err
	}
	if len(out) == 0 {
		return Profile{}, fmt.Errorf("profile %s: %w", ticker, ErrNoData)
	}
	return out[0], nil
}

func (c *Client) SharesFloat(ctx context.Context, ticker string) (SharesFloat, error) {
	var out []SharesFloat
	if err := c.get(ctx, "shares-float", ticker, &out); err != nil {
		return SharesFloat{}, err
	}
	if len(out) == 0 {
		return SharesFloat{}, fmt.Errorf("shares-float %s: %w", ticker, ErrNoData)
	}
	return out[0], nil
}

func (c *Client) get(ctx context.Context, endpoint, ticker string, v any) error {
	key := endpoint + "&symbol=" + ticker
	if c.fromCache(key, v) {
		return nil
	}
	if err := c.budget.Take(); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("apikey", c.apiKey)
	if err := enrich.GetJSON(ctx, c.http, c.baseURL+"/"+endpoint+"?"+q.Encode(), v); err != nil {
		return fmt.Errorf("%s %s: %w", endpoint, ticker, err)
	}

	c.mu.Lock()
	c.cache[key] = v
	c.until[key] = time.Now().Add(cacheTTL)
	c.mu.Unlock()

	c.log.Debug().Str("endpoint", endpoint).Str("ticker", ticker).Int("remaining", c.budget.Remaining()).Msg("query")
	return nil
}

// fromCache copies a cached decode into v. Only the two slice types this
// client decodes are cached.
func (c *Client) fromCache(key string, v any) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.cache[key]
	if !ok || time.Now().After(c.until[key]) {
		return false
	}
	switch dst := v.(type) {
	case *[]Profile:
		src, ok := cached.(*[]Profile)
		if ok {
			*dst = *src
		}
		return ok
	case *[]SharesFloat:
		src, ok := cached.(*[]SharesFloat)
		if ok {
			*dst = *src
		}
		return ok
	}
	return false
}

func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]any)
	c.until = make(map[string]time.Time)
}
