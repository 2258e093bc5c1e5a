package indicator

import "math"

// ATR is Wilder-smoothed average true range.
type ATR struct {
	period    int
	prevClose float64
	haveClose bool
	count     int
	sum       float64
	value     float64
	warm      bool
}

func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func trueRange(c Candle, prevClose float64) float64 {
	tr := c.High - c.Low
	tr = math.Max(tr, math.Abs(c.High-prevClose))
	tr = math.Max(tr, math.Abs(c.Low-prevClose))
	return tr
}

func (a *ATR) Update(c Candle) {
	if !a.haveClose {
		a.prevClose = c.Close
		a.haveClose = true
		return
	}
	tr := trueRange(c, a.prevClose)
	a.prevClose = c.Close
	a.count++

	if a.count <= a.period {
		a.sum += tr
		if a.count == a.period {
			a.value = a.sum / float64(a.period)
			a.warm = true
		}
		return
	}
	a.value = (a.value*float64(a.period-1) + tr) / float64(a.period)
}

func (a *ATR) Get(output string) float64 {
	if !a.warm {
		return NaN
	}
	return a.value
}

func (a *ATR) IsWarm() bool { return a.warm }
func (a *ATR) Reset()       { *a = ATR{period: a.period} }
