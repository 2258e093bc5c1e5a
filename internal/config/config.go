// Package config loads the perpsim run configuration: a YAML default file
// plus environment overrides, decoded with viper/mapstructure the way the
// teacher codebase loads its own trading config.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/backtest.yaml"
	envPrefix         = "PERPSIM"
)

// Load reads the YAML config at path (or defaultConfigPath), applies
// PERPSIM_-prefixed environment overrides, decodes into a Config and
// validates it.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file %q not found: %w", path, err)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sim.initial_capital", 10000.0)
	v.SetDefault("sim.maker_fee_bps", -2)
	v.SetDefault("sim.taker_fee_bps", 5)
	v.SetDefault("sim.slippage_bps", 0)
	v.SetDefault("sim.trade_cooldown_min", 15)
	v.SetDefault("sim.close_at_end", true)
	v.SetDefault("sim.indicators_parallel", false)

	v.SetDefault("events.source", "local")
	v.SetDefault("events.local_root", "data/events")
	v.SetDefault("events.io_concurrency", 4)
	v.SetDefault("events.s3.region", "us-east-1")
	v.SetDefault("events.s3.use_ssl", true)
	v.SetDefault("events.s3.force_path_style", false)

	v.SetDefault("funding.source", "hyperliquid")
	v.SetDefault("funding.degraded_on_failure", false)
	v.SetDefault("funding.fetch_timeout", "30s")

	v.SetDefault("database.path", "data/runs.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.in_memory", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})

	v.SetDefault("metrics.enabled", true)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// FundingFetchTimeout is a small helper so callers building an http/ccxt
// client with a hard 30s ceiling don't silently inherit an
// unbounded zero value from a partially-populated Config in tests.
func FundingFetchTimeout(cfg FundingConfig) time.Duration {
	if cfg.FetchTimeout <= 0 {
		return 30 * time.Second
	}
	return cfg.FetchTimeout
}
