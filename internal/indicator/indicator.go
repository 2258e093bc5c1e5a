// Package indicator implements the incremental, O(1)-per-update technical
// indicators the strategy evaluator reads from: SMA, EMA, WMA, RSI, MACD,
// Bollinger, Stochastic, ATR, ADX and OBV. Stochastic is the exception to
// O(1): it rescans its k-period high/low window on each update. No inheritance — each indicator
// is a small struct satisfying one interface; a registry maps IR type
// strings to constructors.
package indicator

import "math"

// NaN is the sentinel an indicator reports before it has warmed up.
var NaN = math.NaN()

// Indicator is the capability every technical indicator exposes: consume
// one candle, report named outputs, and know its own warm-up state.
type Indicator interface {
	Update(c Candle)
	Get(output string) float64
	IsWarm() bool
	Reset()
}

func isWarm(v float64) bool { return !math.IsNaN(v) }
