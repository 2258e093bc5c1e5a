// Package orders models the active-order list and its market/limit fill
// semantics against a historical, simulator-immutable order book.
package orders

import "perpsim/internal/portfolio"

// Side reuses the portfolio's Buy/Sell direction; a fill always resolves to
// exactly one of these regardless of which IR action produced the order.
type Side = portfolio.Side

const (
	Buy  = portfolio.Buy
	Sell = portfolio.Sell
)

// Kind is the order type that actually executes against the book. Stop and
// take-profit IR variants are represented via Trigger and reduce to one of
// these once triggered.
type Kind int

const (
	Market Kind = iota
	Limit
)

// TIF is time-in-force; ExecuteMarket and CheckLimitFill both honor FOK
// and IOC.
type TIF int

const (
	GTC TIF = iota
	IOC
	FOK
)

// Status is an order's lifecycle state.
type Status int

const (
	Pending Status = iota
	PartiallyFilled
	Filled
	Canceled
)

// TriggerKind distinguishes the four stop/take IR variants that reduce to a
// plain Market or Limit order once their trigger level is touched.
type TriggerKind int

const (
	TriggerStop TriggerKind = iota
	TriggerTake
)

// Trigger holds an order's pre-arming state. By design, a trigger fires on
// touch-through of the synthetic candle's high/low, mirroring the only
// concrete trigger semantics present anywhere in the domain (the
// candle-mode fill logic).
type Trigger struct {
	Kind       TriggerKind
	Price      float64
	ArmKind    Kind // Market or Limit once triggered
	ArmLimitPx float64 // meaningful only if ArmKind == Limit
}

// Order is one entry in the engine's active-order list.
type Order struct {
	ID          int64
	Side        Side
	Kind        Kind
	Size        float64
	LimitPx     float64 // meaningful only if Kind == Limit
	TIF         TIF
	PostOnly    bool
	ReduceOnly  bool
	CreatedAtMs int64
	FilledSz    float64
	Status      Status
	Trigger     *Trigger
}

func (o *Order) Remaining() float64 {
	return o.Size - o.FilledSz
}

func (o *Order) Live() bool {
	return o.Status == Pending || o.Status == PartiallyFilled
}

// Armed reports whether the order is ready to execute against the book
// (has no pending trigger, or its trigger already fired).
func (o *Order) Armed() bool {
	return o.Trigger == nil
}

// Arm converts a triggered stop/take order into the plain order it reduces
// to, clearing Trigger.
func (o *Order) Arm() {
	if o.Trigger == nil {
		return
	}
	o.Kind = o.Trigger.ArmKind
	if o.Kind == Limit {
		o.LimitPx = o.Trigger.ArmLimitPx
	}
	o.Trigger = nil
}

// CheckTrigger evaluates a pending trigger against one synthetic candle's
// high/low and arms the order if touched. No-op if already armed.
func (o *Order) CheckTrigger(high, low float64) {
	if o.Trigger == nil {
		return
	}
	t := o.Trigger
	touched := false
	switch t.Kind {
	case TriggerStop:
		if o.Side == Buy {
			touched = high >= t.Price
		} else {
			touched = low <= t.Price
		}
	case TriggerTake:
		if o.Side == Buy {
			touched = low <= t.Price
		} else {
			touched = high >= t.Price
		}
	}
	if touched {
		o.Arm()
	}
}

// Fill is the outcome of one execution attempt against the book.
type Fill struct {
	Size     float64
	Price    float64
	IsMaker  bool
}
