package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/config"
	"github.com/rustyeddy/tradebook/internal/logger"
	"github.com/rustyeddy/tradebook/journal"
)

var rootCmd = &cobra.Command{
	Use:   "tradebook",
	Short: "A day trading journal with performance analytics",
	Long: `Tradebook records closed stock trades and capital movements in a local
SQLite journal and reports on them: win rate, P/L calendar, time of day and
price band breakdowns, streaks and estimated taxes.

Trades can be enriched with float, volume and market cap data from
Alpha Vantage or Financial Modeling Prep.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	dbPath     string
	logLevel   string
	prettyLog  bool

	cfg *config.Config
	log zerolog.Logger

	// nowFunc is replaced in tests.
	nowFunc = time.Now
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tradebook.yaml", "config file (YAML or JSON, optional)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite journal path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVar(&prettyLog, "pretty", false, "human readable log output")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.Database.Path = dbPath
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if prettyLog {
		c.Log.Pretty = true
	}
	cfg = c
	log = logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Out: cmd.ErrOrStderr()})
	cmd.SetContext(log.WithContext(cmd.Context()))
	return nil
}

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}

func today() journal.Day {
	return journal.DayOf(nowFunc())
}

// dayFlag parses a YYYY-MM-DD flag value, defaulting to today.
func dayFlag(s string) (journal.Day, error) {
	if s == "" {
		return today(), nil
	}
	return journal.ParseDay(s)
}
