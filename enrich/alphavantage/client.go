// Package alphavantage is an enrich.Provider backed by the Alpha Vantage
// OVERVIEW, GLOBAL_QUOTE and TIME_SERIES_DAILY endpoints. NEWS_SENTIMENT
// backs enrich.NewsSource.
package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradebook/enrich"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co/query"

	// DailyLimit is the free tier allowance.
	DailyLimit = 500

	// AverageVolumeDays is how many daily bars feed AvgVolume.
	AverageVolumeDays = 50

	cacheTTL     = 12 * time.Hour
	newsCacheTTL = 15 * time.Minute

	publishedLayout = "20060102T150405"
)

var (
	ErrNoData    = errors.New("no data for symbol")
	ErrThrottled = errors.New("api rate limit reached")
)

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	budget  *enrich.Budget
	log     zerolog.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	data    any
	expires time.Time
}

var (
	_ enrich.Provider   = (*Client)(nil)
	_ enrich.NewsSource = (*Client)(nil)
)

// Feed timestamps are US market time.
var marketTime = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}()

func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    enrich.DefaultHTTPClient,
		budget:  enrich.NewBudget(DailyLimit),
		log:     log.With().Str("component", "alphavantage").Logger(),
		cache:   make(map[string]cacheEntry),
	}
}

// WithBaseURL points the client at another server, e.g. a test double.
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

func (c *Client) Name() string { return "alphavantage" }

func (c *Client) GetRemainingRequests() int { return c.budget.Remaining() }

func (c *Client) ResetDailyCounter() { c.budget.Reset() }

// Lookup combines the company overview, the latest quote and the 50 day
// average volume. Overview and quote are required; a missing average
// volume is logged and left zero.
func (c *Client) Lookup(ctx context.Context, ticker string) (enrich.StockData, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	ov, err := c.CompanyOverview(ctx, ticker)
	if err != nil {
		return enrich.StockData{}, enrich.Unavailable(c.Name(), err)
	}
	q, err := c.GlobalQuote(ctx, ticker)
	if err != nil {
		return enrich.StockData{}, enrich.Unavailable(c.Name(), err)
	}
	avg, err := c.AverageVolume(ctx, ticker, AverageVolumeDays)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("average volume unavailable")
	}

	return enrich.StockData{
		Ticker:            ticker,
		Sector:            ov.Sector,
		Industry:          ov.Industry,
		Exchange:          ov.Exchange,
		StockType:         ov.AssetType,
		SharesFloat:       ov.SharesFloat,
		SharesOutstanding: ov.SharesOutstanding,
		MarketCap:         ov.MarketCap,
		Price:             q.Price,
		Volume:            q.Volume,
		ChangePercent:     q.ChangePercent,
		AvgVolume:         avg,
	}, nil
}

type Overview struct {
	Symbol            string
	AssetType         string
	Exchange          string
	Sector            string
	Industry          string
	SharesOutstanding float64
	SharesFloat       float64
	MarketCap         float64
}

func (c *Client) CompanyOverview(ctx context.Context, ticker string) (Overview, error) {
	raw, err := c.query(ctx, "OVERVIEW", map[string]string{"symbol": ticker})
	if err != nil {
		return Overview{}, err
	}
	return parseCompanyOverview(raw)
}

type Quote struct {
	Symbol        string
	Price         float64
	Volume        float64
	Change        float64
	ChangePercent float64
}

func (c *Client) GlobalQuote(ctx context.Context, ticker string) (Quote, error) {
	raw, err := c.query(ctx, "GLOBAL_QUOTE", map[string]string{"symbol": ticker})
	if err != nil {
		return Quote{}, err
	}
	return parseGlobalQuote(raw)
}

// AverageVolume is the integer mean volume of the most recent days bars.
func (c *Client) AverageVolume(ctx context.Context, ticker string, days int) (float64, error) {
	raw, err := c.query(ctx, "TIME_SERIES_DAILY", map[string]string{"symbol": ticker, "outputsize": "compact"})
	if err != nil {
		return 0, err
	}
	return parseAverageVolume(raw, days)
}

// News returns articles that carry a sentiment entry for ticker.
func (c *Client) News(ctx context.Context, ticker string, limit int) ([]enrich.Article, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	raw, err := c.queryTTL(ctx, "NEWS_SENTIMENT", map[string]string{
		"tickers": ticker,
		"limit":   strconv.Itoa(limit),
	}, newsCacheTTL)
	if err != nil {
		return nil, err
	}
	return parseNewsFeed(raw, ticker)
}

func (c *Client) query(ctx context.Context, function string, params map[string]string) (map[string]any, error) {
	return c.queryTTL(ctx, function, params, cacheTTL)
}

func (c *Client) queryTTL(ctx context.Context, function string, params map[string]string, ttl time.Duration) (map[string]any, error) {
	key := buildCacheKey(function, params)
	if v, ok := c.getFromCache(key); ok {
		return v.(map[string]any), nil
	}

	if err := c.checkRateLimit(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("function", function)
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("apikey", c.apiKey)

	var raw map[string]any
	if err := enrich.GetJSON(ctx, c.http, c.baseURL+"?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", function, err)
	}
	if err := checkAPIError(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", function, err)
	}

	c.setCache(key, raw, ttl)
	c.log.Debug().Str("function", function).Int("remaining", c.budget.Remaining()).Msg("query")
	return raw, nil
}

func (c *Client) checkRateLimit() error {
	return c.budget.Take()
}

// checkAPIError detects the error bodies Alpha Vantage returns with a 200.
func checkAPIError(raw map[string]any) error {
	if msg, ok := raw["Error Message"].(string); ok {
		return fmt.Errorf("%w: %s", ErrNoData, msg)
	}
	for _, k := range []string{"Note", "Information"} {
		if msg, ok := raw[k].(string); ok {
			return fmt.Errorf("%w: %s", ErrThrottled, msg)
		}
	}
	return nil
}

func parseCompanyOverview(raw map[string]any) (Overview, error) {
	sym := str(raw, "Symbol")
	if sym == "" {
		return Overview{}, ErrNoData
	}
	return Overview{
		Symbol:            sym,
		AssetType:         str(raw, "AssetType"),
		Exchange:          str(raw, "Exchange"),
		Sector:            titleCase(str(raw, "Sector")),
		Industry:          titleCase(str(raw, "Industry")),
		SharesOutstanding: parseFloat64(str(raw, "SharesOutstanding")),
		SharesFloat:       parseFloat64(str(raw, "SharesFloat")),
		MarketCap:         parseFloat64(str(raw, "MarketCapitalization")),
	}, nil
}

func parseGlobalQuote(raw map[string]any) (Quote, error) {
	gq, ok := raw["Global Quote"].(map[string]any)
	if !ok || len(gq) == 0 {
		return Quote{}, ErrNoData
	}
	return Quote{
		Symbol:        str(gq, "01. symbol"),
		Price:         parseFloat64(str(gq, "05. price")),
		Volume:        parseFloat64(str(gq, "06. volume")),
		Change:        parseFloat64(str(gq, "09. change")),
		ChangePercent: parseFloat64(str(gq, "10. change percent")),
	}, nil
}

func parseAverageVolume(raw map[string]any, days int) (float64, error) {
	series, ok := raw["Time Series (Daily)"].(map[string]any)
	if !ok || len(series) == 0 {
		return 0, ErrNoData
	}

	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	// newest first
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > days {
		dates = dates[:days]
	}

	var total int64
	for _, d := range dates {
		bar, _ := series[d].(map[string]any)
		total += int64(parseFloat64(str(bar, "5. volume")))
	}
	return float64(total / int64(len(dates))), nil
}

func parseNewsFeed(raw map[string]any, ticker string) ([]enrich.Article, error) {
	feed, ok := raw["feed"].([]any)
	if !ok {
		return nil, ErrNoData
	}

	out := []enrich.Article{}
	for _, item := range feed {
		m, _ := item.(map[string]any)
		sentiments, _ := m["ticker_sentiment"].([]any)
		for _, ts := range sentiments {
			tm, _ := ts.(map[string]any)
			if !strings.EqualFold(str(tm, "ticker"), ticker) {
				continue
			}
			published, err := time.ParseInLocation(publishedLayout, str(m, "time_published"), marketTime)
			if err != nil {
				break
			}
			out = append(out, enrich.Article{
				Title:     str(m, "title"),
				URL:       str(m, "url"),
				Source:    str(m, "source"),
				Summary:   str(m, "summary"),
				Published: published,
				Score:     parseFloat64(str(tm, "ticker_sentiment_score")),
				Label:     str(tm, "ticker_sentiment_label"),
			})
			break
		}
	}
	return out, nil
}

func (c *Client) getFromCache(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.cache[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.data, true
}

func (c *Client) setCache(key string, data any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{data: data, expires: time.Now().Add(ttl)}
}

func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// buildCacheKey is stable across map ordering and never includes the key.
func buildCacheKey(function string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "apikey" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(function)
	for _, k := range keys {
		fmt.Fprintf(&b, "&%s=%s", k, params[k])
	}
	return b.String()
}

func str(m map[string]any, k string) string {
	s, _ := m[k].(string)
	return strings.TrimSpace(s)
}

// parseFloat64 treats the placeholders Alpha Vantage uses for missing
// values as zero and strips a trailing percent sign.
func parseFloat64(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	switch s {
	case "", "None", "null", "-":
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// titleCase turns "LIFE SCIENCES" into "Life Sciences".
func titleCase(s string) string {
	if s == "" || s == "None" {
		return ""
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
