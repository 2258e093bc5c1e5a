package indicator

// OBV is cumulative signed volume: += Volume on a higher close, -= Volume
// on a lower close. Fed from the synthetic candle, whose Volume field is
// always zero (see DESIGN.md), OBV stays flat at 0 for the lifetime of a
// run unless a real trade-tape volume feed is wired into the candle
// synthesis step. This is a documented limitation, not a bug.
type OBV struct {
	haveClose bool
	prevClose float64
	value     float64
	warm      bool
}

func NewOBV() *OBV {
	return &OBV{}
}

func (o *OBV) Update(c Candle) {
	if !o.haveClose {
		o.prevClose = c.Close
		o.haveClose = true
		o.warm = true
		return
	}
	switch {
	case c.Close > o.prevClose:
		o.value += c.Volume
	case c.Close < o.prevClose:
		o.value -= c.Volume
	}
	o.prevClose = c.Close
}

func (o *OBV) Get(output string) float64 {
	if !o.warm {
		return NaN
	}
	return o.value
}

func (o *OBV) IsWarm() bool { return o.warm }
func (o *OBV) Reset()       { *o = OBV{} }
