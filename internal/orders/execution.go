package orders

import "perpsim/internal/orderbook"

// ExecuteMarket sweeps the opposite side of the book for order's remaining
// size. ok is false if no fill occurred at all (no opposite depth): the
// order is left exactly as it was, to retry on a later event.
func ExecuteMarket(o *Order, book *orderbook.Book) (Fill, bool) {
	remaining := o.Remaining()
	if remaining <= orderbook.MinFillSize {
		o.Status = Filled
		return Fill{}, false
	}

	var res orderbook.SweepResult
	var ok bool
	if o.Side == Buy {
		res, ok = book.SweepBuy(remaining)
	} else {
		res, ok = book.SweepSell(remaining)
	}
	if !ok {
		return Fill{}, false
	}

	filled := res.Filled
	if o.TIF == FOK && filled < remaining-orderbook.MinFillSize {
		// FOK: a fill covering less than the full remaining size does not
		// happen atomically; leave the order untouched for this event.
		return Fill{}, false
	}

	o.FilledSz += filled
	if o.Remaining() <= orderbook.MinFillSize {
		o.Status = Filled
	} else {
		o.Status = PartiallyFilled
		if o.TIF == IOC {
			// IOC: any residue after the first fill attempt is canceled.
			o.Status = Canceled
		}
	}
	return Fill{Size: filled, Price: res.VWAP, IsMaker: false}, true
}

// CanPlaceLimit reports whether a new limit order may be queued: a
// post-only order must not cross the book at placement time.
func CanPlaceLimit(side Side, limitPx float64, book *orderbook.Book, postOnly bool) bool {
	if !postOnly {
		return true
	}
	if side == Buy {
		return !book.WouldCrossBuy(limitPx)
	}
	return !book.WouldCrossSell(limitPx)
}

// CheckLimitFill fills a resting limit order only once its price crosses
// the opposite best, sweeping up to the limit price (VWAP across whatever
// levels are swept) and up to the order's remaining size. A post_only order
// never fills: one that would cross is rejected at placement, and one that
// rests and is later crossed by the book reaches this function and is left
// unfilled.
func CheckLimitFill(o *Order, book *orderbook.Book) (Fill, bool) {
	remaining := o.Remaining()
	if remaining <= orderbook.MinFillSize {
		o.Status = Filled
		return Fill{}, false
	}

	var crosses bool
	if o.Side == Buy {
		crosses = book.WouldCrossBuy(o.LimitPx)
	} else {
		crosses = book.WouldCrossSell(o.LimitPx)
	}
	if !crosses {
		return Fill{}, false
	}
	if o.PostOnly {
		return Fill{}, false
	}

	var res orderbook.SweepResult
	var ok bool
	if o.Side == Buy {
		res, ok = book.SweepBuyToLimit(remaining, o.LimitPx)
	} else {
		res, ok = book.SweepSellToLimit(remaining, o.LimitPx)
	}
	if !ok {
		return Fill{}, false
	}

	filled := res.Filled
	if o.TIF == FOK && filled < remaining-orderbook.MinFillSize {
		return Fill{}, false
	}

	o.FilledSz += filled
	if o.Remaining() <= orderbook.MinFillSize {
		o.Status = Filled
	} else {
		o.Status = PartiallyFilled
		if o.TIF == IOC {
			o.Status = Canceled
		}
	}
	return Fill{Size: filled, Price: res.VWAP, IsMaker: true}, true
}
