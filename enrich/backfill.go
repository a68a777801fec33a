package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/pkg/id"
)

const (
	DefaultRequestsPerSecond = 2
	// DefaultLimit caps a backfill when the provider reports no budget.
	DefaultLimit = 100
)

type Options struct {
	RequestsPerSecond float64
	Registerer        prometheus.Registerer
	Logger            zerolog.Logger
}

// Backfiller fetches stock data for trades that have none yet, one
// provider lookup per ticker.
type Backfiller struct {
	store    journal.Enrichable
	audit    journal.AuditLog
	provider Provider
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	metrics  *Metrics
	log      zerolog.Logger
}

// BackfillReport summarizes one run.
type BackfillReport struct {
	RunID         string   `json:"run_id"`
	Provider      string   `json:"provider"`
	Mode          string   `json:"mode"`
	Tickers       int      `json:"tickers"`
	Updated       int      `json:"updated"`
	Failed        int      `json:"failed"`
	FailedTickers []string `json:"failed_tickers,omitempty"`
	Stopped       string   `json:"stopped,omitempty"`
}

func NewBackfiller(store journal.Enrichable, p Provider, opts Options) *Backfiller {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	b := &Backfiller{
		store:    store,
		provider: p,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		metrics:  NewMetrics(opts.Registerer),
		log:      opts.Logger.With().Str("component", "enrich").Str("provider", p.Name()).Logger(),
	}
	if a, ok := store.(journal.AuditLog); ok {
		b.audit = a
	}

	st := gobreaker.Settings{
		Name:     p.Name(),
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			b.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("breaker state change")
		},
	}
	b.breaker = gobreaker.NewCircuitBreaker(st)
	return b
}

// Backfill enriches up to limit trades missing data, newest first. A limit
// of zero or less uses half the provider's remaining budget.
func (b *Backfiller) Backfill(ctx context.Context, limit int) (BackfillReport, error) {
	if limit <= 0 {
		limit = DefaultLimit
		if bp, ok := b.provider.(Budgeted); ok {
			limit = bp.GetRemainingRequests() / 2
		}
	}
	rep := b.newReport("backfill")
	if limit <= 0 {
		rep.Stopped = "budget exhausted"
		return rep, nil
	}

	trades, err := b.store.TradesMissingData(ctx, limit)
	if err != nil {
		return rep, fmt.Errorf("backfill: %w", err)
	}
	return b.run(ctx, rep, groupByTicker(trades, nil))
}

// Today enriches the trades on day that have no data yet.
func (b *Backfiller) Today(ctx context.Context, day journal.Day) (BackfillReport, error) {
	rep := b.newReport("today")

	tickers, err := b.store.TickersMissingData(ctx, day)
	if err != nil {
		return rep, fmt.Errorf("today: %w", err)
	}
	if len(tickers) == 0 {
		return b.finish(ctx, rep), nil
	}
	trades, err := b.store.ListTradesBetween(ctx, day, day)
	if err != nil {
		return rep, fmt.Errorf("today: %w", err)
	}

	want := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		want[t] = true
	}
	return b.run(ctx, rep, groupByTicker(trades, want))
}

func (b *Backfiller) newReport(mode string) BackfillReport {
	return BackfillReport{RunID: id.New(), Provider: b.provider.Name(), Mode: mode}
}

type tickerGroup struct {
	ticker string
	ids    []int64
}

// groupByTicker keeps first-seen order and skips fetched trades. A nil
// filter accepts every ticker.
func groupByTicker(trades []journal.Trade, filter map[string]bool) []tickerGroup {
	var out []tickerGroup
	idx := make(map[string]int)
	for _, t := range trades {
		if t.DataFetched || (filter != nil && !filter[t.Ticker]) {
			continue
		}
		i, ok := idx[t.Ticker]
		if !ok {
			i = len(out)
			idx[t.Ticker] = i
			out = append(out, tickerGroup{ticker: t.Ticker})
		}
		out[i].ids = append(out[i].ids, t.ID)
	}
	return out
}

func (b *Backfiller) run(ctx context.Context, rep BackfillReport, groups []tickerGroup) (BackfillReport, error) {
	name := b.provider.Name()

	for _, g := range groups {
		if bp, ok := b.provider.(Budgeted); ok && bp.GetRemainingRequests() <= 0 {
			rep.Stopped = "budget exhausted"
			break
		}
		if err := b.limiter.Wait(ctx); err != nil {
			return b.finish(ctx, rep), err
		}

		rep.Tickers++
		res, err := b.breaker.Execute(func() (interface{}, error) {
			return b.provider.Lookup(ctx, g.ticker)
		})
		if err != nil {
			b.metrics.Lookups.WithLabelValues(name, "error").Inc()
			rep.Failed += len(g.ids)
			rep.FailedTickers = append(rep.FailedTickers, g.ticker)
			b.log.Warn().Err(err).Str("ticker", g.ticker).Msg("lookup failed")

			var limited ErrRateLimitExceeded
			if errors.As(err, &limited) {
				rep.Stopped = "budget exhausted"
				break
			}
			if ctx.Err() != nil {
				return b.finish(ctx, rep), ctx.Err()
			}
			continue
		}
		b.metrics.Lookups.WithLabelValues(name, "ok").Inc()

		sd := res.(StockData)
		for _, tid := range g.ids {
			err := b.store.SetEnrichment(ctx, tid, sd)
			switch {
			case err == nil:
				rep.Updated++
				b.metrics.TradesUpdated.WithLabelValues(name).Inc()
			case errors.Is(err, journal.ErrAlreadyFetched):
			default:
				rep.Failed++
				b.log.Error().Err(err).Int64("trade_id", tid).Msg("store enrichment")
			}
		}
		b.log.Debug().Str("ticker", g.ticker).Int("trades", len(g.ids)).Msg("enriched")
	}

	return b.finish(ctx, rep), nil
}

func (b *Backfiller) finish(ctx context.Context, rep BackfillReport) BackfillReport {
	b.log.Info().
		Str("run_id", rep.RunID).
		Str("mode", rep.Mode).
		Int("tickers", rep.Tickers).
		Int("updated", rep.Updated).
		Int("failed", rep.Failed).
		Msg("enrichment run complete")

	if b.audit != nil {
		desc := fmt.Sprintf("Fetched %s data for %d tickers, updated %d trades", rep.Provider, rep.Tickers, rep.Updated)
		if _, err := b.audit.AddLog(ctx, journal.NewLogEntry(journal.ActionEnrich, journal.CategorySystem, desc, rep)); err != nil {
			b.log.Warn().Err(err).Msg("audit enrichment")
		}
	}
	return rep
}
