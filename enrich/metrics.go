package enrich

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts provider lookups and enriched trades.
type Metrics struct {
	Lookups       *prometheus.CounterVec
	TradesUpdated *prometheus.CounterVec
	BreakerState  *prometheus.GaugeVec
}

// NewMetrics registers the enrichment collectors with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradebook_enrich_lookups_total",
				Help: "Provider lookups by result.",
			},
			[]string{"provider", "result"},
		),
		TradesUpdated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradebook_enrich_trades_updated_total",
				Help: "Trades that received stock data.",
			},
			[]string{"provider"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradebook_enrich_breaker_state",
				Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
			},
			[]string{"provider"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Lookups, m.TradesUpdated, m.BreakerState)
	}
	return m
}
