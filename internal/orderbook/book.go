// Package orderbook maintains L2 book state for a single coin: two ordered
// price->size maps, replaced wholesale on every snapshot.
package orderbook

import "sort"

// PriceKey is a price scaled by PriceScale, used as the ordered-map key so
// iteration order is deterministic and free of floating point pitfalls.
type PriceKey uint64

// PriceScale converts a decimal price into an integer PriceKey: round(px*1e8).
const PriceScale = 1e8

// MinFillSize is the remaining size below which an order is treated as fully
// filled rather than left open for an unfillable dust remainder.
const MinFillSize = 1e-10

func ToPriceKey(px float64) PriceKey {
	return PriceKey(px*PriceScale + 0.5)
}

func (k PriceKey) Float() float64 {
	return float64(k) / PriceScale
}

// Level is one side's aggregate size at a price, used for both Bids() and
// Asks() snapshots and for sweep results.
type Level struct {
	Price PriceKey
	Size  float64
}

// Book holds bid/ask levels sorted ascending by PriceKey. Bids are read in
// descending order (iterate from the tail); asks ascending (iterate from the
// head). A plain sorted slice plus binary search stands in for the BTreeMap
// the reference implementation uses: Go's standard library has no ordered
// map, and nothing in the example corpus supplies one, so this is built on
// sort.Search rather than imported (see DESIGN.md).
type Book struct {
	bids []Level // ascending by Price; best bid is the last element
	asks []Level // ascending by Price; best ask is the first element
}

func New() *Book {
	return &Book{}
}

// InputLevel is one (price, size) pair as decoded from a snapshot event,
// before scaling to a PriceKey.
type InputLevel struct {
	Px float64
	Sz float64
}

// ApplySnapshot replaces both sides of the book. bids/asks need not be
// pre-sorted or pre-aggregated; duplicate prices within a side are summed.
func (b *Book) ApplySnapshot(bids, asks []InputLevel) {
	b.bids = aggregateSorted(bids)
	b.asks = aggregateSorted(asks)
}

func aggregateSorted(raw []InputLevel) []Level {
	if len(raw) == 0 {
		return nil
	}
	byPrice := make(map[PriceKey]float64, len(raw))
	for _, l := range raw {
		byPrice[ToPriceKey(l.Px)] += l.Sz
	}
	out := make([]Level, 0, len(byPrice))
	for px, sz := range byPrice {
		out = append(out, Level{Price: px, Size: sz})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

// BestBid returns the highest bid level. ok is false if the book has no bids.
func (b *Book) BestBid() (Level, bool) {
	if len(b.bids) == 0 {
		return Level{}, false
	}
	return b.bids[len(b.bids)-1], true
}

// BestAsk returns the lowest ask level. ok is false if the book has no asks.
func (b *Book) BestAsk() (Level, bool) {
	if len(b.asks) == 0 {
		return Level{}, false
	}
	return b.asks[0], true
}

// MidPrice is undefined (ok=false) unless both sides are non-empty.
func (b *Book) MidPrice() (float64, bool) {
	bid, ok := b.BestBid()
	if !ok {
		return 0, false
	}
	ask, ok := b.BestAsk()
	if !ok {
		return 0, false
	}
	return (bid.Price.Float() + ask.Price.Float()) / 2, true
}

// BidDepthTo sums bid size at prices >= px (better-or-equal for a seller
// checking how much liquidity they'd walk through to sell down to px).
func (b *Book) BidDepthTo(px float64) float64 {
	threshold := ToPriceKey(px)
	var total float64
	for _, l := range b.bids {
		if l.Price >= threshold {
			total += l.Size
		}
	}
	return total
}

// AskDepthTo sums ask size at prices <= px.
func (b *Book) AskDepthTo(px float64) float64 {
	threshold := ToPriceKey(px)
	var total float64
	for _, l := range b.asks {
		if l.Price <= threshold {
			total += l.Size
		}
	}
	return total
}

// WouldCrossBuy reports whether a buy limit at limitPx would take liquidity
// immediately (limitPx >= best ask).
func (b *Book) WouldCrossBuy(limitPx float64) bool {
	ask, ok := b.BestAsk()
	return ok && limitPx >= ask.Price.Float()
}

// WouldCrossSell reports whether a sell limit at limitPx would take
// liquidity immediately (limitPx <= best bid).
func (b *Book) WouldCrossSell(limitPx float64) bool {
	bid, ok := b.BestBid()
	return ok && limitPx <= bid.Price.Float()
}

// SweepResult is the outcome of walking one side of the book for a market or
// limit fill. Filled is zero when no liquidity was available at all.
type SweepResult struct {
	Filled float64
	VWAP   float64
}

// SweepBuy walks asks ascending from the best price, filling up to size. The
// book itself is never mutated: historical depth is authoritative input, not
// something the simulator's own fills may deplete.
func (b *Book) SweepBuy(size float64) (SweepResult, bool) {
	return sweep(b.asks, size, 0)
}

// SweepSell walks bids descending from the best price.
func (b *Book) SweepSell(size float64) (SweepResult, bool) {
	return sweepReverse(b.bids, size, 0)
}

// SweepBuyToLimit walks asks ascending, same as SweepBuy, but stops at the
// first level priced above limitPx (exclusive of levels worse than the
// limit), matching a resting buy limit's right to fill only at-or-better.
func (b *Book) SweepBuyToLimit(size, limitPx float64) (SweepResult, bool) {
	limit := ToPriceKey(limitPx)
	return sweep(b.asks, size, limit)
}

// SweepSellToLimit walks bids descending, stopping below limitPx.
func (b *Book) SweepSellToLimit(size, limitPx float64) (SweepResult, bool) {
	limit := ToPriceKey(limitPx)
	return sweepReverse(b.bids, size, limit)
}

func sweep(levels []Level, size float64, limit PriceKey) (SweepResult, bool) {
	remaining := size
	var cost, filled float64
	for _, l := range levels {
		if remaining <= MinFillSize {
			break
		}
		if limit != 0 && l.Price > limit {
			break
		}
		take := remaining
		if l.Size < take {
			take = l.Size
		}
		cost += take * l.Price.Float()
		filled += take
		remaining -= take
	}
	if filled <= 0 {
		return SweepResult{}, false
	}
	return SweepResult{Filled: filled, VWAP: cost / filled}, true
}

func sweepReverse(levels []Level, size float64, limit PriceKey) (SweepResult, bool) {
	remaining := size
	var cost, filled float64
	for i := len(levels) - 1; i >= 0; i-- {
		if remaining <= MinFillSize {
			break
		}
		l := levels[i]
		if limit != 0 && l.Price < limit {
			break
		}
		take := remaining
		if l.Size < take {
			take = l.Size
		}
		cost += take * l.Price.Float()
		filled += take
		remaining -= take
	}
	if filled <= 0 {
		return SweepResult{}, false
	}
	return SweepResult{Filled: filled, VWAP: cost / filled}, true
}
