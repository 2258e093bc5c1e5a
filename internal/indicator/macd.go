package indicator

// MACD is two EMAs of Close plus an EMA of their difference. Outputs:
// "value" (MACD line), "signal", "histogram".
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
	value  float64
	hist   float64
	warm   bool
}

func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	return &MACD{
		fast:   NewEMA(fastPeriod),
		slow:   NewEMA(slowPeriod),
		signal: NewEMA(signalPeriod),
	}
}

func (m *MACD) Update(c Candle) {
	m.fast.Update(c)
	m.slow.Update(c)
	if !m.fast.IsWarm() || !m.slow.IsWarm() {
		return
	}
	m.value = m.fast.Value() - m.slow.Value()
	m.signal.Update(Candle{Close: m.value})
	if m.signal.IsWarm() {
		m.warm = true
		m.hist = m.value - m.signal.Value()
	}
}

func (m *MACD) Get(output string) float64 {
	if !m.warm {
		return NaN
	}
	switch output {
	case "signal":
		return m.signal.Value()
	case "histogram":
		return m.hist
	default:
		return m.value
	}
}

func (m *MACD) IsWarm() bool { return m.warm }
func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.value, m.hist, m.warm = 0, 0, false
}
