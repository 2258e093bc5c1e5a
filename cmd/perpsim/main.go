// Command perpsim runs one perps backtest from a YAML config file: it
// loads historical L2 events, fetches the funding-rate schedule, compiles
// a strategy IR document, plays the whole range through the perps engine,
// and persists the summary. It is a one-shot batch job, not a server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"perpsim/internal/config"
	"perpsim/internal/funding"
	"perpsim/internal/fundingfeed"
	"perpsim/internal/ingest"
	"perpsim/internal/ir"
	"perpsim/internal/log"
	"perpsim/internal/metrics"
	"perpsim/internal/perps"
	"perpsim/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/backtest.yaml", "path to the backtest YAML config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "perpsim:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	var runMetrics *metrics.Run
	if cfg.Metrics.Enabled {
		runMetrics = metrics.New()
	}

	db, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening run-history database: %w", err)
	}
	defer db.Close()

	result, sir, err := execute(ctx, cfg, logger, runMetrics)
	if err != nil {
		return err
	}

	var metricsSummary string
	if runMetrics != nil {
		snap := runMetrics.Snapshot()
		metricsSummary = fmt.Sprintf(", orders placed %.0f, rejected %.0f, funding accruals %.0f",
			snap["orders_placed"], snap["orders_rejected"], snap["funding_accruals"])
	}

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config for persistence: %w", err)
	}

	record := store.RunRecord{
		Coin:             cfg.Run.Coin,
		StartDate:        cfg.Run.StartDate,
		EndDate:          cfg.Run.EndDate,
		IRHash:           sir.IRHash,
		ConfigJSON:       string(configJSON),
		TradeCount:       result.NumTrades,
		EquityPointCount: len(result.EquityCurve),
		FinalEquity:      result.FinalEquity,
		TotalReturnPct:   result.TotalReturnPct,
		MaxDrawdownPct:   result.MaxDrawdownPct,
		SharpeRatio:      result.SharpeRatio,
		WinRate:          result.WinRate,
		CreatedAt:        runCompletedAt(cfg),
	}
	id, err := db.InsertRun(record)
	if err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}

	logger.Info("run complete",
		zap.Int64("run_id", id),
		zap.String("coin", cfg.Run.Coin),
		zap.Int("trades", result.NumTrades),
		zap.Float64("final_equity", result.FinalEquity),
		zap.Float64("total_return_pct", result.TotalReturnPct),
		zap.Float64("max_drawdown_pct", result.MaxDrawdownPct),
		zap.Float64("sharpe_ratio", result.SharpeRatio),
	)
	fmt.Printf("run %d: %d trades, final equity %.2f (%.2f%%), max drawdown %.2f%%, sharpe %.2f%s\n",
		id, result.NumTrades, result.FinalEquity, result.TotalReturnPct, result.MaxDrawdownPct, result.SharpeRatio, metricsSummary)
	return nil
}

// execute performs the actual backtest pass: ingest, funding, compile,
// play. Split from run so the database write-up stays simple to read.
func execute(ctx context.Context, cfg *config.Config, logger *zap.Logger, runMetrics *metrics.Run) (*perps.SimResult, *ir.StrategyIR, error) {
	irBytes, err := os.ReadFile(cfg.Run.StrategyIR)
	if err != nil {
		return nil, nil, fmt.Errorf("reading strategy IR %s: %w", cfg.Run.StrategyIR, err)
	}
	sir, err := ir.Compile(irBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling strategy IR: %w", err)
	}

	events, err := loadEvents(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	sched, degraded, err := fetchFundingSchedule(ctx, cfg, logger, events)
	if err != nil {
		return nil, nil, err
	}

	engine, err := perps.New(perps.Config{
		InitialCapital:  cfg.Sim.InitialCapital,
		MakerFeeBps:     cfg.Sim.MakerFeeBps,
		TakerFeeBps:     cfg.Sim.TakerFeeBps,
		SlippageBps:     cfg.Sim.SlippageBps,
		TradeCooldownMs: int64(cfg.Sim.TradeCooldownMin) * 60 * 1000,
		CloseAtEnd:      cfg.Sim.CloseAtEnd,
		DegradedFunding: degraded,
	}, sched, sir, logger, runMetrics)
	if err != nil {
		return nil, nil, fmt.Errorf("constructing engine: %w", err)
	}

	result, err := engine.Run(ctx, events)
	if err != nil {
		return nil, nil, fmt.Errorf("running engine: %w", err)
	}

	if runMetrics != nil {
		logger.Info("run metrics", zap.Any("snapshot", runMetrics.Snapshot()))
	}
	return result, sir, nil
}

func loadEvents(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]perps.Event, error) {
	var src ingest.FileSource
	switch cfg.Events.Source {
	case "s3":
		s3src, err := ingest.NewS3Source(ctx, cfg.Events.S3)
		if err != nil {
			return nil, fmt.Errorf("building s3 event source: %w", err)
		}
		src = s3src
	default:
		src = ingest.NewLocalSource(cfg.Events.LocalRoot)
	}

	return ingest.LoadRange(ctx, src, cfg.Run.Coin, cfg.Run.StartDate, cfg.Run.EndDate, cfg.Events.IOConcurrency, logger)
}

// fetchFundingSchedule returns the funding schedule and whether the run
// fell back to degraded mode (fetch failed, caller opted into
// funding.degraded_on_failure). In degraded mode the engine treats any
// timestamp the schedule doesn't cover as a 0 rate rather than aborting.
func fetchFundingSchedule(ctx context.Context, cfg *config.Config, logger *zap.Logger, events []perps.Event) (*funding.Schedule, bool, error) {
	client := fundingfeed.NewClient(logger)

	startMs := events[0].TsMs
	endMs := events[len(events)-1].TsMs

	fetchCtx, cancel := context.WithTimeout(ctx, config.FundingFetchTimeout(cfg.Funding))
	defer cancel()

	sched, err := client.FetchSchedule(fetchCtx, cfg.Run.Coin, startMs, endMs)
	if err != nil {
		if cfg.Funding.DegradedOnFailure {
			logger.Warn("funding fetch failed, continuing in degraded mode (0 rate on missing coverage)", zap.Error(err))
			return funding.NewSchedule(), true, nil
		}
		return nil, false, fmt.Errorf("fetching funding schedule: %w", err)
	}
	return sched, false, nil
}

func runCompletedAt(cfg *config.Config) time.Time {
	_ = cfg
	return time.Now().UTC()
}
