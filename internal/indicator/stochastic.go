package indicator

// Stochastic computes %K from the highest-high/lowest-low over kPeriod and
// %D as an SMA of %K over dPeriod. Outputs: "k", "d".
type Stochastic struct {
	kPeriod int
	highBuf []float64
	lowBuf  []float64
	idx     int
	filled  int
	d       *SMA
	k       float64
	kWarm   bool
}

func NewStochastic(kPeriod, dPeriod int) *Stochastic {
	return &Stochastic{
		kPeriod: kPeriod,
		highBuf: make([]float64, kPeriod),
		lowBuf:  make([]float64, kPeriod),
		d:       NewSMA(dPeriod),
	}
}

func (s *Stochastic) Update(c Candle) {
	s.highBuf[s.idx] = c.High
	s.lowBuf[s.idx] = c.Low
	s.idx = (s.idx + 1) % s.kPeriod
	if s.filled < s.kPeriod {
		s.filled++
	}
	if s.filled < s.kPeriod {
		return
	}
	hh, ll := s.highBuf[0], s.lowBuf[0]
	for i := 1; i < s.kPeriod; i++ {
		if s.highBuf[i] > hh {
			hh = s.highBuf[i]
		}
		if s.lowBuf[i] < ll {
			ll = s.lowBuf[i]
		}
	}
	s.kWarm = true
	if hh == ll {
		s.k = 50
	} else {
		s.k = 100 * (c.Close - ll) / (hh - ll)
	}
	s.d.Update(Candle{Close: s.k})
}

func (s *Stochastic) Get(output string) float64 {
	if !s.kWarm {
		return NaN
	}
	if output == "d" {
		if !s.d.IsWarm() {
			return NaN
		}
		return s.d.Value()
	}
	return s.k
}

func (s *Stochastic) IsWarm() bool { return s.kWarm }
func (s *Stochastic) Reset() {
	s.highBuf = make([]float64, s.kPeriod)
	s.lowBuf = make([]float64, s.kPeriod)
	s.idx, s.filled, s.k = 0, 0, 0
	s.kWarm = false
	s.d.Reset()
}
