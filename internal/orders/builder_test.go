package orders

import (
	"testing"

	"perpsim/internal/ir"
)

func TestBuildFromActionBuyPctSizesOffEquity(t *testing.T) {
	action := ir.Action{Kind: ir.ActionBuy, Sizing: ir.SizingPct, Size: 50, Order: ir.OrderMarket, TIF: ir.TIFGtc}
	ctx := SizingContext{Mid: 100, Equity: 1000}

	o, err := BuildFromAction(action, ctx, 1, 1)
	if err != nil {
		t.Fatalf("BuildFromAction: %v", err)
	}
	if o.Side != Buy || o.Kind != Market {
		t.Fatalf("unexpected order: %+v", o)
	}
	if got, want := o.Size, 5.0; got != want {
		t.Fatalf("size = %v, want %v", got, want)
	}
}

func TestBuildFromActionSellPctSizesOffPosition(t *testing.T) {
	action := ir.Action{Kind: ir.ActionSell, Sizing: ir.SizingPct, Size: 50, Order: ir.OrderMarket, TIF: ir.TIFGtc}
	ctx := SizingContext{Mid: 100, Equity: 1000, PositionSize: 4}

	o, err := BuildFromAction(action, ctx, 1, 2)
	if err != nil {
		t.Fatalf("BuildFromAction: %v", err)
	}
	if o.Side != Sell || !o.ReduceOnly {
		t.Fatalf("expected a reduce-only sell, got %+v", o)
	}
	if got, want := o.Size, 2.0; got != want {
		t.Fatalf("size = %v, want %v", got, want)
	}
}

func TestBuildFromActionCloseFlattensPosition(t *testing.T) {
	action := ir.Action{Kind: ir.ActionClose, Order: ir.OrderMarket, TIF: ir.TIFGtc}
	ctx := SizingContext{Mid: 100, PositionSize: -3}

	o, err := BuildFromAction(action, ctx, 1, 3)
	if err != nil {
		t.Fatalf("BuildFromAction: %v", err)
	}
	if o.Side != Buy || !o.ReduceOnly || o.Size != 3 {
		t.Fatalf("expected a reduce-only buy of 3, got %+v", o)
	}
}

func TestBuildFromActionRejectsZeroSize(t *testing.T) {
	action := ir.Action{Kind: ir.ActionClose, Order: ir.OrderMarket}
	ctx := SizingContext{Mid: 100, PositionSize: 0}

	if _, err := BuildFromAction(action, ctx, 1, 4); err == nil {
		t.Fatal("expected an error for a zero-size close")
	}
}

func TestBuildFromActionStopLimitSetsTrigger(t *testing.T) {
	action := ir.Action{
		Kind: ir.ActionBuy, Sizing: ir.SizingQty, Size: 1,
		Order: ir.OrderStopLimit, TIF: ir.TIFGtc,
		TriggerPrice: 99, LimitPrice: 98.5,
	}
	o, err := BuildFromAction(action, SizingContext{Mid: 100}, 1, 5)
	if err != nil {
		t.Fatalf("BuildFromAction: %v", err)
	}
	if o.Trigger == nil || o.Trigger.Kind != TriggerStop || o.Trigger.ArmKind != Limit {
		t.Fatalf("expected a stop-limit trigger, got %+v", o.Trigger)
	}
}

func TestBuildFromActionRejectsUnknownKind(t *testing.T) {
	action := ir.Action{Kind: "bogus"}
	if _, err := BuildFromAction(action, SizingContext{Mid: 100}, 1, 6); err == nil {
		t.Fatal("expected an error for an unsupported action kind")
	}
}
