// Package perps implements the event-driven perps playback loop: the only
// subsystem with non-trivial ordering, state, and performance constraints.
// Everything else (ingestion, funding fetch, config, CLI) is plumbing
// around this package.
package perps

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"perpsim/internal/fees"
	"perpsim/internal/funding"
	"perpsim/internal/indicator"
	"perpsim/internal/ir"
	"perpsim/internal/metrics"
	"perpsim/internal/orderbook"
	"perpsim/internal/orders"
	"perpsim/internal/portfolio"
	"perpsim/internal/strategy"
)

const (
	PriceChangeThreshold     = 1e-4
	DefaultTradeCooldownMs   = 15 * 60 * 1000
	EquityRecordingIntervalMs = 60_000
	FundingIntervalMs         = funding.IntervalMs

	defaultTradesCapacity      = 1000
	defaultEquityCurveCapacity = 10000
)

// Event is one normalized L2 snapshot, already decoded from the wire
// decimal-string format and filtered/sorted by the ingest collaborator.
type Event struct {
	TsMs int64
	Bids []orderbook.InputLevel
	Asks []orderbook.InputLevel
}

// Config is the run's sizing/fee/cooldown knobs, independent of how it was
// loaded (CLI flags, YAML file, etc — that's internal/config's job).
type Config struct {
	InitialCapital  float64
	MakerFeeBps     int32
	TakerFeeBps     int32
	SlippageBps     uint32
	TradeCooldownMs int64
	CloseAtEnd      bool
	DegradedFunding bool
}

func (c *Config) normalize() {
	if c.InitialCapital <= 0 {
		c.InitialCapital = 10000
	}
	if c.TradeCooldownMs <= 0 {
		c.TradeCooldownMs = DefaultTradeCooldownMs
	}
}

// Trade is a realized fill record.
type Trade struct {
	TsMs        int64
	Side        orders.Side
	Size        float64
	Price       float64
	Fee         float64
	OrderID     int64
	RealizedPnl float64 // non-zero only for fills that reduce an existing position
}

// EquityPoint is one row of the equity curve, recorded at most once per
// EquityRecordingIntervalMs.
type EquityPoint struct {
	TsMs          int64
	Equity        float64
	Cash          float64
	PositionValue float64
}

// Engine owns every piece of mutable run state: book, indicators,
// portfolio, active-order list. One Engine runs exactly one backtest.
type Engine struct {
	cfg     Config
	book    *orderbook.Book
	sched   *funding.Schedule
	feeCalc fees.Calculator
	pf      *portfolio.Portfolio
	ind     *indicator.Set
	eval    *strategy.Evaluator
	entry   ir.Rule
	exit    *ir.Rule
	active  *orders.ActiveList
	log     *zap.Logger
	metrics *metrics.Run

	candle        indicator.Candle
	haveCandle    bool
	lastEvalMid   float64
	lastEntryTs   int64
	lastFundingTs int64
	haveFunding   bool
	lastEquityTs  int64
	haveEquity    bool

	trades      []Trade
	equityCurve []EquityPoint
}

// New builds an Engine from a compiled strategy and a pre-fetched funding
// schedule. Every dependency is validated non-nil. runMetrics may be nil
// when the caller has metrics disabled.
func New(cfg Config, sched *funding.Schedule, sir *ir.StrategyIR, log *zap.Logger, runMetrics *metrics.Run) (*Engine, error) {
	if sched == nil {
		return nil, fmt.Errorf("perps: funding schedule is required")
	}
	if sir == nil {
		return nil, fmt.Errorf("perps: strategy IR is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg.normalize()

	specs := make([]indicator.Spec, 0, len(sir.Indicators))
	for _, is := range sir.Indicators {
		specs = append(specs, indicator.Spec{ID: is.ID, Type: is.Type, Params: is.Params})
	}
	indSet, err := indicator.NewSet(specs)
	if err != nil {
		return nil, fmt.Errorf("perps: building indicator set: %w", err)
	}

	var exitCond *ir.Condition
	var exitRule *ir.Rule
	if sir.Exit != nil {
		exitCond = &sir.Exit.Condition
		exitRule = sir.Exit
	}
	evaluator := strategy.NewEvaluator(indSet, sir.Entry.Condition, exitCond)

	e := &Engine{
		cfg:     cfg,
		book:    orderbook.New(),
		sched:   sched,
		feeCalc: fees.New(cfg.MakerFeeBps, cfg.TakerFeeBps, cfg.SlippageBps),
		pf:      portfolio.New(cfg.InitialCapital),
		ind:     indSet,
		eval:    evaluator,
		entry:   sir.Entry,
		exit:    exitRule,
		active:  orders.NewActiveList(),
		log:     log,
		metrics: runMetrics,
	}
	e.trades = make([]Trade, 0, defaultTradesCapacity)
	e.equityCurve = make([]EquityPoint, 0, defaultEquityCurveCapacity)
	return e, nil
}

// SimResult is the final output of a run.
type SimResult struct {
	Trades        []Trade
	EquityCurve   []EquityPoint
	FinalEquity   float64
	TotalReturn   float64
	TotalReturnPct float64
	MaxDrawdown    float64
	MaxDrawdownPct float64
	SharpeRatio    float64
	NumTrades      int
	WinRate        float64
}

// Run processes events strictly in order. events must already be sorted by
// TsMs and filtered to the run's [start,end] range (the ingest
// collaborator's job, not this package's).
func (e *Engine) Run(ctx context.Context, events []Event) (*SimResult, error) {
	if len(events) == 0 {
		return e.finalize(0), nil
	}
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.book.ApplySnapshot(ev.Bids, ev.Asks)

		mid, ok := e.book.MidPrice()
		if !ok {
			continue
		}

		e.advanceCandle(ev.TsMs, mid)
		e.ind.UpdateAll(e.candle)

		if err := e.maybeEvaluateStrategy(ev.TsMs, mid); err != nil {
			return nil, fmt.Errorf("perps: strategy evaluation at ts_ms=%d: %w", ev.TsMs, err)
		}

		if err := e.executeActiveOrders(ev.TsMs, mid); err != nil {
			return nil, fmt.Errorf("perps: execution at ts_ms=%d: %w", ev.TsMs, err)
		}

		if err := e.maybeAccrueFunding(ev.TsMs, mid); err != nil {
			return nil, fmt.Errorf("perps: funding accrual at ts_ms=%d: %w", ev.TsMs, err)
		}

		e.maybeRecordEquity(ev.TsMs, mid)
	}

	lastMid, _ := e.book.MidPrice()
	if e.cfg.CloseAtEnd && !e.pf.Position.Flat() {
		e.closeAtMid(events[len(events)-1].TsMs, lastMid)
	}

	return e.finalize(lastMid), nil
}

// advanceCandle synthesizes one OHLC record per event from the new mid
// price, reusing the single in-place candle to avoid a per-event allocation.
func (e *Engine) advanceCandle(tsMs int64, mid float64) {
	prevClose := mid
	if e.haveCandle {
		prevClose = e.candle.Close
	}
	e.candle = indicator.Candle{
		TsMs:   tsMs,
		Open:   prevClose,
		High:   math.Max(prevClose, mid),
		Low:    math.Min(prevClose, mid),
		Close:  mid,
		Volume: 0,
	}
	e.haveCandle = true
}

func (e *Engine) maybeEvaluateStrategy(tsMs int64, mid float64) error {
	if e.pf.Position.Flat() {
		return e.maybeEvaluateEntry(tsMs, mid)
	}
	return e.evaluateExit(tsMs, mid)
}

func (e *Engine) maybeEvaluateEntry(tsMs int64, mid float64) error {
	priceChanged := e.lastEvalMid == 0 ||
		math.Abs(mid-e.lastEvalMid)/e.lastEvalMid > PriceChangeThreshold
	cooldownOk := tsMs-e.lastEntryTs >= e.cfg.TradeCooldownMs
	if !priceChanged || !cooldownOk {
		return nil
	}
	e.lastEvalMid = mid

	fire, err := e.eval.EvalEntry()
	if err != nil {
		return err
	}
	if !fire {
		return nil
	}
	if err := e.queueOrder(e.entry.Action, tsMs, mid); err != nil {
		return err
	}
	e.lastEntryTs = tsMs
	return nil
}

func (e *Engine) evaluateExit(tsMs int64, mid float64) error {
	fire, ok, err := e.eval.EvalExit()
	if err != nil {
		return err
	}
	if !ok || !fire {
		return nil
	}
	return e.queueOrder(e.exit.Action, tsMs, mid)
}

func (e *Engine) queueOrder(action ir.Action, tsMs int64, mid float64) error {
	ctx := orders.SizingContext{
		Mid:          mid,
		Equity:       e.pf.Equity(mid),
		PositionSize: e.pf.Position.Size,
	}
	o, err := orders.BuildFromAction(action, ctx, tsMs, e.active.NextID())
	if err != nil {
		return err
	}
	if o.Kind == orders.Limit && !orders.CanPlaceLimit(o.Side, o.LimitPx, e.book, o.PostOnly) {
		if o.PostOnly {
			if e.metrics != nil {
				e.metrics.OrdersRejected.Inc()
			}
			return nil // post-only reject
		}
	}
	limitPx := 0.0
	if o.Kind == orders.Limit {
		limitPx = o.LimitPx
	}
	if e.active.Dedup(o.Side, o.Kind, limitPx) {
		return nil
	}
	e.active.Add(o)
	if e.metrics != nil {
		e.metrics.OrdersPlaced.Inc()
	}
	return nil
}

func (e *Engine) executeActiveOrders(tsMs int64, mid float64) error {
	for _, o := range e.active.Orders() {
		if o.Live() && !o.Armed() {
			o.CheckTrigger(e.candle.High, e.candle.Low)
		}
	}

	if err := e.runExecutionPass(tsMs, orders.Market); err != nil {
		return err
	}
	return e.runExecutionPass(tsMs, orders.Limit)
}

func (e *Engine) runExecutionPass(tsMs int64, kind orders.Kind) error {
	snapshot := e.active.Orders()
	var toRemove []int
	for i, o := range snapshot {
		if !o.Live() || !o.Armed() || o.Kind != kind {
			continue
		}
		var fill orders.Fill
		var ok bool
		if kind == orders.Market {
			fill, ok = orders.ExecuteMarket(o, e.book)
		} else {
			fill, ok = orders.CheckLimitFill(o, e.book)
		}
		if ok {
			e.realizeFill(tsMs, o, fill)
		}
		if !o.Live() {
			toRemove = append(toRemove, i)
		}
	}
	for i := len(toRemove) - 1; i >= 0; i-- {
		e.active.RemoveAt(toRemove[i])
	}
	return nil
}

func (e *Engine) realizeFill(tsMs int64, o *orders.Order, fill orders.Fill) {
	notional := fill.Size * fill.Price
	fee := e.feeCalc.Calculate(notional, fill.IsMaker)
	pnl := realizedPnl(e.pf.Position, o.Side, fill.Size, fill.Price)
	e.pf.ExecuteFill(o.Side, fill.Size, fill.Price, fee)
	e.trades = append(e.trades, Trade{
		TsMs: tsMs, Side: o.Side, Size: fill.Size, Price: fill.Price, Fee: fee, OrderID: o.ID,
		RealizedPnl: pnl,
	})
	if e.metrics != nil {
		e.metrics.OrdersFilled.Inc()
	}
}

// realizedPnl computes the PnL realized by a fill that reduces pos, using
// pos's state from immediately before the fill is applied. A fill that
// opens or extends a position (same sign, or from flat) realizes nothing.
func realizedPnl(pos portfolio.Position, side orders.Side, size, price float64) float64 {
	if pos.Flat() {
		return 0
	}
	fillSigned := size
	if side == orders.Sell {
		fillSigned = -size
	}
	if (pos.Size > 0) == (fillSigned > 0) {
		return 0 // extending, not reducing
	}
	closing := math.Min(size, math.Abs(pos.Size))
	if pos.Size > 0 {
		return closing * (price - pos.EntryPx)
	}
	return closing * (pos.EntryPx - price)
}

func (e *Engine) maybeAccrueFunding(tsMs int64, mid float64) error {
	if !e.haveFunding {
		e.lastFundingTs = tsMs
		e.haveFunding = true
		return nil
	}
	if tsMs-e.lastFundingTs < FundingIntervalMs {
		return nil
	}
	if e.pf.Position.Flat() {
		e.lastFundingTs += ((tsMs - e.lastFundingTs) / FundingIntervalMs) * FundingIntervalMs
		return nil
	}
	notional := math.Abs(e.pf.Position.Size) * mid
	payment, err := e.sched.CalculatePayment(notional, tsMs)
	if err != nil {
		if !e.cfg.DegradedFunding {
			return fmt.Errorf("funding fetch failure (fatal unless degraded mode): %w", err)
		}
		e.log.Warn("funding: no rate coverage, treating as 0 in degraded mode",
			zap.Int64("ts_ms", tsMs))
		payment = 0
	}
	e.pf.ApplyFunding(payment)
	if e.metrics != nil {
		e.metrics.FundingAccruals.Inc()
	}
	e.lastFundingTs += ((tsMs - e.lastFundingTs) / FundingIntervalMs) * FundingIntervalMs
	return nil
}

func (e *Engine) maybeRecordEquity(tsMs int64, mid float64) {
	if e.haveEquity && tsMs-e.lastEquityTs < EquityRecordingIntervalMs {
		return
	}
	e.lastEquityTs = tsMs
	e.haveEquity = true
	e.equityCurve = append(e.equityCurve, EquityPoint{
		TsMs:          tsMs,
		Equity:        e.pf.Equity(mid),
		Cash:          e.pf.Cash,
		PositionValue: e.pf.PositionValue(mid),
	})
	if e.metrics != nil {
		e.metrics.EquityPoints.Inc()
	}
}

func (e *Engine) closeAtMid(tsMs int64, mid float64) {
	if e.pf.Position.Flat() || mid <= 0 {
		return
	}
	side := orders.Sell
	if e.pf.Position.Size < 0 {
		side = orders.Buy
	}
	size := math.Abs(e.pf.Position.Size)
	fee := e.feeCalc.Calculate(size*mid, false)
	pnl := realizedPnl(e.pf.Position, side, size, mid)
	e.pf.ExecuteFill(side, size, mid, fee)
	e.trades = append(e.trades, Trade{TsMs: tsMs, Side: side, Size: size, Price: mid, Fee: fee, OrderID: -1, RealizedPnl: pnl})
}
