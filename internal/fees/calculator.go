// Package fees computes maker/taker fees and market-order slippage from
// basis-point configuration. Pure functions, no state.
package fees

// Calculator turns (is-maker, notional) into a fee amount. A negative bps
// value is a rebate: the fee is negative, i.e. cash increases.
type Calculator struct {
	MakerFeeBps  int32
	TakerFeeBps  int32
	SlippageBps  uint32
}

func New(makerFeeBps, takerFeeBps int32, slippageBps uint32) Calculator {
	return Calculator{MakerFeeBps: makerFeeBps, TakerFeeBps: takerFeeBps, SlippageBps: slippageBps}
}

// Calculate returns the fee for a fill of the given notional value. A
// negative result is a rebate paid to the trader.
func (c Calculator) Calculate(notional float64, isMaker bool) float64 {
	bps := c.TakerFeeBps
	if isMaker {
		bps = c.MakerFeeBps
	}
	if bps < 0 {
		return -notional * float64(-bps) / 10000
	}
	return notional * float64(bps) / 10000
}

// ApplySlippage adjusts a reference price for a market order's configured
// slippage allowance; only meaningful for execution paths that don't already
// derive their fill price from swept book depth.
func (c Calculator) ApplySlippage(price float64, isBuy bool) float64 {
	adj := float64(c.SlippageBps) / 10000
	if isBuy {
		return price * (1 + adj)
	}
	return price * (1 - adj)
}
