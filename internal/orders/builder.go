package orders

import (
	"fmt"
	"math"

	"perpsim/internal/ir"
)

// SizingContext is the portfolio state a sizing mode needs to turn an
// action's declared Size into a coin quantity.
type SizingContext struct {
	Mid            float64
	Equity         float64
	PositionSize   float64 // signed
}

// resolveSize converts action.Size (interpreted per action.Sizing) into an
// absolute coin size: buy sizes off available
// cash/equity, sell sizes off the current position.
func resolveSize(action ir.Action, ctx SizingContext) (float64, error) {
	switch action.Sizing {
	case ir.SizingQty:
		return action.Size, nil
	case ir.SizingCash:
		if ctx.Mid <= 0 {
			return 0, fmt.Errorf("orders: cannot size by cash with mid=%v", ctx.Mid)
		}
		return action.Size / ctx.Mid, nil
	case ir.SizingPct:
		if action.Kind == ir.ActionSell {
			return math.Abs(ctx.PositionSize) * action.Size / 100, nil
		}
		if ctx.Mid <= 0 {
			return 0, fmt.Errorf("orders: cannot size by pct with mid=%v", ctx.Mid)
		}
		return (ctx.Equity * action.Size / 100) / ctx.Mid, nil
	default:
		return 0, fmt.Errorf("orders: unknown sizing mode %q", action.Sizing)
	}
}

func tifFromIR(t ir.TIF) TIF {
	switch t {
	case ir.TIFIoc:
		return IOC
	case ir.TIFFok:
		return FOK
	default:
		return GTC
	}
}

// BuildFromAction turns a triggered IR action into an Order ready to queue.
// Close actions flatten the entire position regardless of the action's own
// declared Size/Sizing.
func BuildFromAction(action ir.Action, ctx SizingContext, createdAtMs, id int64) (*Order, error) {
	side := Buy
	size := 0.0
	reduceOnly := action.ReduceOnly

	switch action.Kind {
	case ir.ActionBuy:
		side = Buy
		var err error
		size, err = resolveSize(action, ctx)
		if err != nil {
			return nil, err
		}
	case ir.ActionSell:
		side = Sell
		reduceOnly = true
		var err error
		size, err = resolveSize(action, ctx)
		if err != nil {
			return nil, err
		}
	case ir.ActionClose:
		reduceOnly = true
		size = math.Abs(ctx.PositionSize)
		if ctx.PositionSize > 0 {
			side = Sell
		} else {
			side = Buy
		}
	default:
		return nil, fmt.Errorf("orders: unsupported action kind %q", action.Kind)
	}

	if size <= 0 {
		return nil, fmt.Errorf("orders: resolved non-positive size for action %q", action.Kind)
	}

	o := &Order{
		ID:          id,
		Side:        side,
		Size:        size,
		TIF:         tifFromIR(action.TIF),
		PostOnly:    action.PostOnly,
		ReduceOnly:  reduceOnly,
		CreatedAtMs: createdAtMs,
		Status:      Pending,
	}

	switch action.Order {
	case ir.OrderLimit:
		o.Kind = Limit
		o.LimitPx = action.LimitPrice
	case ir.OrderStopMarket:
		o.Trigger = &Trigger{Kind: TriggerStop, Price: action.TriggerPrice, ArmKind: Market}
	case ir.OrderStopLimit:
		o.Trigger = &Trigger{Kind: TriggerStop, Price: action.TriggerPrice, ArmKind: Limit, ArmLimitPx: action.LimitPrice}
	case ir.OrderTakeMarket:
		o.Trigger = &Trigger{Kind: TriggerTake, Price: action.TriggerPrice, ArmKind: Market}
	case ir.OrderTakeLimit:
		o.Trigger = &Trigger{Kind: TriggerTake, Price: action.TriggerPrice, ArmKind: Limit, ArmLimitPx: action.LimitPrice}
	default:
		o.Kind = Market
	}

	return o, nil
}
