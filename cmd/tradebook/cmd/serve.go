package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/enrich"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/report"
	"github.com/rustyeddy/tradebook/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and run scheduled enrichment",
	Long: `Start the HTTP API on server.addr. Analytics are under /api and
Prometheus metrics under /metrics. GET /api/analyze/{ticker} needs a
configured provider.

When a provider is configured, enrich.schedule (cron syntax, default
"30 16 * * 1-5") runs the end of day enrichment for that day's trades.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&allowSQL, "allow-sql", false, "expose POST /api/sql (console.enabled must also be set)")
}

func runServe(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	rates := report.RatesFromFractions(cfg.Tax.FederalRate, cfg.Tax.StateRate)
	scfg := server.Config{
		Addr:        addr,
		CORSOrigins: cfg.Server.CORSOrigins,
		Ledger:      j,
		Logs:        j,
		Rates:       &rates,
		Gatherer:    reg,
		Log:         log,
	}
	if p, err := newProvider(cfg); err == nil {
		scfg.Analyzer = enrich.NewAnalyzer(p, log)
	}
	if cfg.Console.Enabled && allowSQL {
		scfg.Console = j.Console(true)
		log.Warn().Msg("sql console exposed at POST /api/sql")
	}
	srv := server.New(scfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, err := scheduleEnrichment(ctx, j, reg)
	if err != nil {
		return err
	}
	if sched != nil {
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// scheduleEnrichment returns nil when no provider or schedule is set.
func scheduleEnrichment(ctx context.Context, j journal.Enrichable, reg prometheus.Registerer) (*cron.Cron, error) {
	if cfg.Enrich.Schedule == "" {
		return nil, nil
	}
	b, err := newBackfiller(j, reg)
	if err != nil {
		log.Warn().Err(err).Msg("scheduled enrichment disabled")
		return nil, nil
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.Enrich.Schedule, func() {
		rep, err := b.Today(ctx, today())
		if err != nil {
			log.Error().Err(err).Msg("scheduled enrichment")
			return
		}
		log.Info().Str("run_id", rep.RunID).Int("updated", rep.Updated).Msg("scheduled enrichment done")
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("schedule", cfg.Enrich.Schedule).Msg("end of day enrichment scheduled")
	return c, nil
}
