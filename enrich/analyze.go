package enrich

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradebook/journal"
)

// Float categories, in millions of free-floating shares.
const (
	LowFloatMillions    = 20
	MediumFloatMillions = 100

	LowFloat    = "Low Float"
	MediumFloat = "Medium Float"
	HighFloat   = "High Float"
)

// NewsLimit is how many articles an analysis asks a NewsSource for.
const NewsLimit = 50

// Article is one news item about a ticker. Score and Label are empty when
// the source has no sentiment.
type Article struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Source    string    `json:"source"`
	Summary   string    `json:"summary,omitempty"`
	Published time.Time `json:"time_published"`
	Score     float64   `json:"sentiment_score"`
	Label     string    `json:"sentiment_label,omitempty"`
}

// NewsSource is implemented by providers that can list recent articles.
type NewsSource interface {
	News(ctx context.Context, ticker string, limit int) ([]Article, error)
}

// Analysis is a pre-trade snapshot of one ticker.
type Analysis struct {
	Ticker        string  `json:"ticker"`
	Sector        string  `json:"sector,omitempty"`
	Industry      string  `json:"industry,omitempty"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`

	FloatMillions  float64 `json:"free_float_millions"`
	FloatCategory  string  `json:"float_category"`
	Volume         float64 `json:"volume"`
	AvgVolume      float64 `json:"avg_volume"`
	FloatRotation  float64 `json:"float_rotation"`
	RelativeVolume float64 `json:"relative_volume"`

	News      []Article `json:"news"`
	NewsError string    `json:"news_error,omitempty"`

	// RemainingRequests is nil for providers without a daily budget.
	RemainingRequests *int `json:"remaining_requests,omitempty"`
}

// FloatCategory buckets a share float. A zero float is Low.
func FloatCategory(sharesFloat float64) string {
	m := sharesFloat / 1e6
	switch {
	case m < LowFloatMillions:
		return LowFloat
	case m < MediumFloatMillions:
		return MediumFloat
	default:
		return HighFloat
	}
}

// Analyze derives float and volume figures from sd. Ratios with a zero
// denominator are zero.
func Analyze(sd StockData) Analysis {
	a := Analysis{
		Ticker:        sd.Ticker,
		Sector:        sd.Sector,
		Industry:      sd.Industry,
		Price:         sd.Price,
		ChangePercent: sd.ChangePercent,
		FloatMillions: sd.SharesFloat / 1e6,
		FloatCategory: FloatCategory(sd.SharesFloat),
		Volume:        sd.Volume,
		AvgVolume:     sd.AvgVolume,
		News:          []Article{},
	}
	if sd.SharesFloat > 0 {
		a.FloatRotation = sd.Volume / sd.SharesFloat
	}
	if sd.AvgVolume > 0 {
		a.RelativeVolume = sd.Volume / sd.AvgVolume
	}
	return a
}

// RecentNews keeps articles published on now's calendar day or the day
// before, in now's location.
func RecentNews(articles []Article, now time.Time) []Article {
	today := journal.DayOf(now)
	yesterday := today.AddDays(-1)

	out := []Article{}
	for _, a := range articles {
		d := journal.DayOf(a.Published.In(now.Location()))
		if d.Equal(today) || d.Equal(yesterday) {
			out = append(out, a)
		}
	}
	return out
}

// Analyzer looks up a ticker and turns it into an Analysis.
type Analyzer struct {
	provider Provider
	news     NewsSource
	log      zerolog.Logger
	now      func() time.Time
}

// NewAnalyzer uses p for news too when p implements NewsSource.
func NewAnalyzer(p Provider, log zerolog.Logger) *Analyzer {
	a := &Analyzer{
		provider: p,
		log:      log.With().Str("component", "analyze").Logger(),
		now:      time.Now,
	}
	if ns, ok := p.(NewsSource); ok {
		a.news = ns
	}
	return a
}

// WithNews overrides the news source. Nil disables news.
func (a *Analyzer) WithNews(ns NewsSource) *Analyzer {
	a.news = ns
	return a
}

// Analyze fails only when the stock lookup fails. A news failure is
// reported in NewsError.
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (Analysis, error) {
	ticker, err := journal.NormalizeTicker(ticker)
	if err != nil {
		return Analysis{}, err
	}

	sd, err := a.provider.Lookup(ctx, ticker)
	if err != nil {
		return Analysis{}, err
	}
	if sd.Ticker == "" {
		sd.Ticker = ticker
	}
	out := Analyze(sd)

	if a.news != nil {
		articles, err := a.news.News(ctx, ticker, NewsLimit)
		if err != nil {
			a.log.Warn().Err(err).Str("ticker", ticker).Msg("news unavailable")
			out.NewsError = err.Error()
		} else {
			out.News = RecentNews(articles, a.now())
		}
	}

	if b, ok := a.provider.(Budgeted); ok {
		n := b.GetRemainingRequests()
		out.RemainingRequests = &n
	}
	return out, nil
}
