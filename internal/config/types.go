package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/multierr"
)

// coinPattern matches the coin-name grammar: [A-Za-z0-9_]{1,20},
// no path components.
var coinPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,20}$`)

// datePattern matches the 8-digit YYYYMMDD event-file date grammar.
var datePattern = regexp.MustCompile(`^[0-9]{8}$`)

const maxRunSpanDays = 365

// Config aggregates everything one `perpsim` invocation needs: which run to
// execute, how to size and fee it, where its events and funding history
// come from, and how the ambient stack (logging, persistence, metrics)
// behaves.
type Config struct {
	Run      RunConfig      `mapstructure:"run"`
	Sim      SimConfig      `mapstructure:"sim"`
	Events   EventsConfig   `mapstructure:"events"`
	Funding  FundingConfig  `mapstructure:"funding"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// RunConfig names the single-coin, single-range backtest to execute.
type RunConfig struct {
	Coin        string `mapstructure:"coin"`
	StartDate   string `mapstructure:"start_date"` // YYYYMMDD
	EndDate     string `mapstructure:"end_date"`   // YYYYMMDD
	StrategyIR  string `mapstructure:"strategy_ir"`
}

// SimConfig holds the fee/sizing/cooldown knobs the perps
// engine reads directly.
type SimConfig struct {
	InitialCapital     float64 `mapstructure:"initial_capital"`
	MakerFeeBps        int32   `mapstructure:"maker_fee_bps"`
	TakerFeeBps        int32   `mapstructure:"taker_fee_bps"`
	SlippageBps        uint32  `mapstructure:"slippage_bps"`
	TradeCooldownMin   int     `mapstructure:"trade_cooldown_min"`
	CloseAtEnd         bool    `mapstructure:"close_at_end"`
	IndicatorsParallel bool    `mapstructure:"indicators_parallel"`
}

// EventsConfig controls how per-hour L2 snapshot files are located and how
// concurrently they may be loaded (ingest is the one collaborator
// permitted to run concurrently).
type EventsConfig struct {
	Source        string   `mapstructure:"source"` // "local" or "s3"
	LocalRoot     string   `mapstructure:"local_root"`
	IOConcurrency int      `mapstructure:"io_concurrency"`
	S3            S3Config `mapstructure:"s3"`
}

// S3Config is the bucket/credentials configuration for the S3-compatible
// event-file source, grounded on polymarketbot's s3blob.ClientConfig.
type S3Config struct {
	Endpoint       string `mapstructure:"endpoint"`
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Prefix         string `mapstructure:"prefix"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// FundingConfig controls the pre-run funding-rate fetch (fatal
// unless the caller opts into degraded mode).
type FundingConfig struct {
	Source            string        `mapstructure:"source"` // "hyperliquid"
	DegradedOnFailure bool          `mapstructure:"degraded_on_failure"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
}

// DatabaseConfig manages the run-history SQLite connection.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig controls zap output.
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// MetricsConfig toggles the in-process Prometheus registry (this CLI never
// asks for an HTTP server; see internal/metrics).
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Validate aggregates every configuration violation via multierr instead of
// failing on the first one.
func (c *Config) Validate() error {
	var err error

	if !coinPattern.MatchString(c.Run.Coin) {
		err = multierr.Append(err, fmt.Errorf("run.coin %q must match %s", c.Run.Coin, coinPattern.String()))
	}
	if !datePattern.MatchString(c.Run.StartDate) {
		err = multierr.Append(err, fmt.Errorf("run.start_date %q must be YYYYMMDD", c.Run.StartDate))
	}
	if !datePattern.MatchString(c.Run.EndDate) {
		err = multierr.Append(err, fmt.Errorf("run.end_date %q must be YYYYMMDD", c.Run.EndDate))
	}
	if datePattern.MatchString(c.Run.StartDate) && datePattern.MatchString(c.Run.EndDate) {
		if c.Run.StartDate > c.Run.EndDate {
			err = multierr.Append(err, errors.New("run.start_date must not be after run.end_date"))
		} else if days := dateSpanDays(c.Run.StartDate, c.Run.EndDate); days > maxRunSpanDays {
			err = multierr.Append(err, fmt.Errorf("run date range spans %d days, exceeds %d-day limit", days, maxRunSpanDays))
		}
	}
	if c.Run.StrategyIR == "" {
		err = multierr.Append(err, errors.New("run.strategy_ir is required"))
	}

	if c.Sim.InitialCapital <= 0 {
		err = multierr.Append(err, errors.New("sim.initial_capital must be positive"))
	}
	if c.Sim.TradeCooldownMin < 0 {
		err = multierr.Append(err, errors.New("sim.trade_cooldown_min must not be negative"))
	}

	switch c.Events.Source {
	case "local":
		if c.Events.LocalRoot == "" {
			err = multierr.Append(err, errors.New("events.local_root is required when events.source=local"))
		}
	case "s3":
		if c.Events.S3.Bucket == "" {
			err = multierr.Append(err, errors.New("events.s3.bucket is required when events.source=s3"))
		}
		if c.Events.S3.Region == "" {
			err = multierr.Append(err, errors.New("events.s3.region is required when events.source=s3"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("events.source %q must be \"local\" or \"s3\"", c.Events.Source))
	}
	if c.Events.IOConcurrency <= 0 {
		err = multierr.Append(err, errors.New("events.io_concurrency must be positive"))
	}

	if c.Funding.Source == "" {
		err = multierr.Append(err, errors.New("funding.source is required"))
	}
	if c.Funding.FetchTimeout <= 0 {
		err = multierr.Append(err, errors.New("funding.fetch_timeout must be positive"))
	}

	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path is required unless database.in_memory"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns must be positive"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns must not be negative"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime must not be negative"))
	}

	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level is required"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding is required"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths needs at least one target"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths needs at least one target"))
	}

	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// dateSpanDays returns the whole days from start to end for two YYYYMMDD
// dates (20240101 to 20240102 is 1) using simple calendar arithmetic (both
// are already pattern-validated).
func dateSpanDays(startDate, endDate string) int {
	start, err1 := time.Parse("20060102", startDate)
	end, err2 := time.Parse("20060102", endDate)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}
