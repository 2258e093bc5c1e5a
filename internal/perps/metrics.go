package perps

import "math"

// finalize turns accumulated trades/equityCurve into a SimResult: a
// total return / drawdown / Sharpe summary of the run.
func (e *Engine) finalize(lastMid float64) *SimResult {
	finalEquity := e.cfg.InitialCapital
	switch {
	case lastMid > 0:
		finalEquity = e.pf.Equity(lastMid)
	case len(e.equityCurve) > 0:
		finalEquity = e.equityCurve[len(e.equityCurve)-1].Equity
	}

	totalReturn := finalEquity - e.cfg.InitialCapital
	totalReturnPct := 0.0
	if e.cfg.InitialCapital > 0 {
		totalReturnPct = totalReturn / e.cfg.InitialCapital * 100
	}

	maxDD, maxDDPct := computeDrawdown(e.equityCurve)
	sharpe := computeSharpe(e.equityCurve)
	wins, total := countWins(e.trades)
	winRate := 0.0
	if total > 0 {
		winRate = float64(wins) / float64(total) * 100
	}

	return &SimResult{
		Trades:         e.trades,
		EquityCurve:    e.equityCurve,
		FinalEquity:    finalEquity,
		TotalReturn:    totalReturn,
		TotalReturnPct: totalReturnPct,
		MaxDrawdown:    maxDD,
		MaxDrawdownPct: maxDDPct,
		SharpeRatio:    sharpe,
		NumTrades:      len(e.trades),
		WinRate:        winRate,
	}
}

// computeDrawdown returns the largest peak-to-trough drop in the equity
// curve, in both absolute and percentage terms.
func computeDrawdown(curve []EquityPoint) (float64, float64) {
	if len(curve) == 0 {
		return 0, 0
	}
	peak := curve[0].Equity
	maxDD := 0.0
	maxDDPct := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		dd := peak - p.Equity
		if dd > maxDD {
			maxDD = dd
			if peak > 0 {
				maxDDPct = dd / peak * 100
			}
		}
	}
	return maxDD, maxDDPct
}

// computeSharpe annualizes the Sharpe ratio of the equity curve's
// per-sample returns, assuming one sample per EquityRecordingIntervalMs
// (one minute).
func computeSharpe(curve []EquityPoint) float64 {
	if len(curve) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	if len(returns) > 1 {
		variance /= float64(len(returns) - 1)
	}

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	samplesPerYear := float64(365 * 24 * 60 * 60 * 1000 / EquityRecordingIntervalMs)
	annualFactor := math.Sqrt(samplesPerYear)
	return (mean / std) * annualFactor
}

// countWins counts fills with a strictly positive realized PnL against the
// total number of PnL-bearing (i.e. reducing) fills.
func countWins(trades []Trade) (wins int, total int) {
	for _, t := range trades {
		if t.RealizedPnl == 0 {
			continue
		}
		total++
		if t.RealizedPnl > 0 {
			wins++
		}
	}
	return wins, total
}
