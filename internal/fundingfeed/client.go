// Package fundingfeed retrieves historical Hyperliquid funding rates via
// ccxt exchange bindings, turning them into a
// funding.Schedule the perps engine consumes. The retry/backoff and error
// classification here follow the same pattern as the rest of this codebase's exchange clients.
package fundingfeed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"perpsim/internal/funding"
	"perpsim/internal/validate"
)

// ErrMaintenance is returned when the exchange reports itself under
// maintenance; callers should not retry.
var ErrMaintenance = errors.New("fundingfeed: exchange on maintenance")

// Client fetches funding rate history for one coin from Hyperliquid via
// ccxt, with bounded retry on transient network/exchange errors.
type Client struct {
	logger   *zap.Logger
	exchange *ccxt.Hyperliquid

	maxAttempts int
	minDelay    time.Duration
	maxDelay    time.Duration
}

// NewClient builds a Hyperliquid-backed funding feed client. No API key is
// required: funding-rate history is public market data.
func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	ex := ccxt.NewHyperliquid(map[string]interface{}{
		"enableRateLimit": true,
	})
	return &Client{
		logger:      logger,
		exchange:    ex,
		maxAttempts: 5,
		minDelay:    500 * time.Millisecond,
		maxDelay:    5 * time.Second,
	}
}

// coinToSymbol maps a bare coin name to the perp
// symbol ccxt's Hyperliquid adapter expects.
func coinToSymbol(coin string) string {
	return coin + "/USDC:USDC"
}

// FetchSchedule retrieves every funding-rate observation covering
// [startMs-8h, endMs] (the schedule must cover
// [start_ts-8h, end_ts]") and returns it as a funding.Schedule. ctx should
// carry a deadline; the caller is expected to impose the 30s timeout
// is required of the funding HTTP client.
func (c *Client) FetchSchedule(ctx context.Context, coin string, startMs, endMs int64) (*funding.Schedule, error) {
	if err := validate.Coin(coin); err != nil {
		return nil, err
	}
	if startMs > endMs {
		return nil, fmt.Errorf("fundingfeed: start_ts %d after end_ts %d", startMs, endMs)
	}
	const maxRangeMs = 365 * 24 * 3600 * 1000
	if endMs-startMs > maxRangeMs {
		return nil, fmt.Errorf("fundingfeed: range %d..%d spans more than 365 days", startMs, endMs)
	}

	symbol := coinToSymbol(coin)
	since := startMs - funding.IntervalMs

	var points []funding.Point
	limit := int64(500)
	cursor := since

	for {
		var page []ccxt.FundingRateHistory
		err := c.callWithRetry(ctx, "fetch_funding_rate_history", func() error {
			result, err := c.exchange.FetchFundingRateHistory(
				ccxt.WithFetchFundingRateHistorySymbol(symbol),
				ccxt.WithFetchFundingRateHistorySince(cursor),
				ccxt.WithFetchFundingRateHistoryLimit(limit),
			)
			if err != nil {
				return err
			}
			page = result
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("fundingfeed: fetching funding history for %s: %w", coin, err)
		}
		if len(page) == 0 {
			break
		}

		for _, p := range page {
			ts := p.Timestamp
			rate := p.FundingRate
			points = append(points, funding.Point{TsMs: ts, Rate: rate})
		}

		last := page[len(page)-1].Timestamp
		if last <= cursor || last >= endMs {
			break
		}
		cursor = last + 1
	}

	sched := funding.NewScheduleFromPoints(points)
	if !sched.Covers(startMs) {
		return nil, fmt.Errorf("fundingfeed: no funding coverage for %s before ts_ms=%d", coin, startMs)
	}
	c.logger.Info("funding schedule fetched",
		zap.String("coin", coin),
		zap.Int("points", sched.Len()),
		zap.Int64("start_ms", startMs),
		zap.Int64("end_ms", endMs),
	)
	return sched, nil
}

func (c *Client) callWithRetry(ctx context.Context, operation string, fn func() error) error {
	attempt := 0
	delay := c.minDelay

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		attempt++
		start := time.Now()
		err := fn()
		duration := time.Since(start)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("funding feed call recovered after retry",
					zap.String("operation", operation),
					zap.Int("attempts", attempt),
					zap.Duration("latency", duration),
				)
			}
			return nil
		}

		normalized, retry := classifyError(err)
		if errors.Is(normalized, ErrMaintenance) {
			c.logger.Warn("hyperliquid under maintenance", zap.String("operation", operation), zap.Error(normalized))
			return normalized
		}
		if !retry || attempt >= c.maxAttempts {
			c.logger.Error("funding feed call failed",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Error(normalized),
			)
			return normalized
		}

		wait := delay
		if wait > c.maxDelay {
			wait = c.maxDelay
		}
		c.logger.Warn("funding feed call failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(normalized),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
	}
}

func classifyError(err error) (error, bool) {
	if err == nil {
		return nil, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err, false
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		switch ccxtErr.Type {
		case ccxt.NetworkErrorErrType,
			ccxt.RequestTimeoutErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			return err, true
		case ccxt.OnMaintenanceErrType:
			return fmt.Errorf("%w: %s", ErrMaintenance, ccxtErr.Message), false
		default:
			return err, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return err, true
	}
	return err, false
}
