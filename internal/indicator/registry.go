package indicator

import (
	"fmt"
	"strings"
)

// Spec describes one indicator instance as declared in a strategy IR's
// indicator manifest.
type Spec struct {
	ID     string
	Type   string
	Params map[string]float64
}

func paramInt(params map[string]float64, def int, keys ...string) int {
	for _, k := range keys {
		if v, ok := params[k]; ok {
			return int(v)
		}
	}
	return def
}

func paramFloat(params map[string]float64, def float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := params[k]; ok {
			return v
		}
	}
	return def
}

// New constructs the indicator named by spec.Type (case-insensitive),
// matching indicators2::registry's constructor dispatch.
func New(spec Spec) (Indicator, error) {
	switch strings.ToUpper(spec.Type) {
	case "SMA":
		return NewSMA(paramInt(spec.Params, 20, "period", "length")), nil
	case "EMA":
		return NewEMA(paramInt(spec.Params, 20, "period", "length")), nil
	case "WMA":
		return NewWMA(paramInt(spec.Params, 20, "period", "length")), nil
	case "RSI":
		return NewRSI(paramInt(spec.Params, 14, "period", "length")), nil
	case "MACD":
		return NewMACD(
			paramInt(spec.Params, 12, "fast"),
			paramInt(spec.Params, 26, "slow"),
			paramInt(spec.Params, 9, "signal"),
		), nil
	case "BBANDS", "BB", "BOLLINGER":
		return NewBollinger(
			paramInt(spec.Params, 20, "period", "length"),
			paramFloat(spec.Params, 2.0, "k", "stddev"),
		), nil
	case "STOCH", "STOCHASTIC":
		return NewStochastic(
			paramInt(spec.Params, 14, "k_period", "kperiod"),
			paramInt(spec.Params, 3, "d_period", "dperiod"),
		), nil
	case "ATR":
		return NewATR(paramInt(spec.Params, 14, "period", "length")), nil
	case "ADX":
		return NewADX(paramInt(spec.Params, 14, "period", "length")), nil
	case "OBV":
		return NewOBV(), nil
	default:
		return nil, fmt.Errorf("indicator: unknown type %q for id %q", spec.Type, spec.ID)
	}
}

// Lookback returns the number of lead-in candles the named indicator type
// is given before a run, matching the warmup formulas
// indicators2::registry::get_lookback uses to size a run's lead-in window.
// For EMA and MACD this is a multiple of the period so the smoothing
// settles, more than the candles needed for a first non-NaN value; STOCH
// counts k+d.
func Lookback(spec Spec) int {
	switch strings.ToUpper(spec.Type) {
	case "SMA":
		return paramInt(spec.Params, 20, "period", "length")
	case "EMA":
		return paramInt(spec.Params, 20, "period", "length") * 3
	case "WMA":
		return paramInt(spec.Params, 20, "period", "length")
	case "RSI":
		return paramInt(spec.Params, 14, "period", "length") + 1
	case "MACD":
		slow := paramInt(spec.Params, 26, "slow")
		signal := paramInt(spec.Params, 9, "signal")
		return slow + signal*3
	case "BBANDS", "BB", "BOLLINGER":
		return paramInt(spec.Params, 20, "period", "length")
	case "STOCH", "STOCHASTIC":
		return paramInt(spec.Params, 14, "k_period", "kperiod") + paramInt(spec.Params, 3, "d_period", "dperiod")
	case "ATR":
		return paramInt(spec.Params, 14, "period", "length") + 1
	case "ADX":
		return paramInt(spec.Params, 14, "period", "length") * 2
	case "OBV":
		return 1
	default:
		return 0
	}
}

// Set is the id->Indicator map the engine updates every event and the
// strategy evaluator reads conditions from.
type Set struct {
	byID map[string]Indicator
	ids  []string // stable iteration/update order
}

func NewSet(specs []Spec) (*Set, error) {
	s := &Set{byID: make(map[string]Indicator, len(specs))}
	for _, spec := range specs {
		ind, err := New(spec)
		if err != nil {
			return nil, err
		}
		s.byID[spec.ID] = ind
		s.ids = append(s.ids, spec.ID)
	}
	return s, nil
}

// UpdateAll feeds the candle to every indicator in declaration order.
// Indicators are mutually independent by construction; a parallel variant
// would only be worth it for large sets.
func (s *Set) UpdateAll(c Candle) {
	for _, id := range s.ids {
		s.byID[id].Update(c)
	}
}

// Value resolves an indicator reference of the form "id" (default output
// "value") or "id.output".
func (s *Set) Value(ref string) (float64, error) {
	id, output := ref, "value"
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		id, output = ref[:i], ref[i+1:]
	}
	ind, ok := s.byID[id]
	if !ok {
		return 0, fmt.Errorf("indicator: unknown id %q", id)
	}
	return ind.Get(output), nil
}

func (s *Set) Get(id string) (Indicator, bool) {
	ind, ok := s.byID[id]
	return ind, ok
}
