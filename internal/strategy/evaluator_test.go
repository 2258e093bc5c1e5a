package strategy

import (
	"testing"

	"perpsim/internal/indicator"
	"perpsim/internal/ir"
)

func setUpCrossoverSet(t *testing.T) *indicator.Set {
	t.Helper()
	set, err := indicator.NewSet([]indicator.Spec{
		{ID: "fast", Type: "SMA", Params: map[string]float64{"period": 2}},
		{ID: "slow", Type: "SMA", Params: map[string]float64{"period": 2}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestThresholdConditionFalseWhileNaN(t *testing.T) {
	set := setUpCrossoverSet(t)
	cond := ir.Condition{Kind: ir.CondThreshold, Ref: "fast", Op: ir.OpGt, Const: 0}
	ev := NewEvaluator(set, cond, nil)
	ok, err := ev.EvalEntry()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected false while indicator not warm")
	}
}

func TestCrossoverAboveFiresOnce(t *testing.T) {
	// SMA(1) against SMA(3): flat at 10, then a rise puts fast above slow
	// (13 vs 11) and keeps it there (14 vs 12.33) on the next candle.
	set, err := indicator.NewSet([]indicator.Spec{
		{ID: "fast", Type: "SMA", Params: map[string]float64{"period": 1}},
		{ID: "slow", Type: "SMA", Params: map[string]float64{"period": 3}},
	})
	if err != nil {
		t.Fatal(err)
	}
	cond := ir.Condition{Kind: ir.CondCrossoverAbove, Fast: "fast", Slow: "slow"}
	ev := NewEvaluator(set, cond, nil)

	closes := []float64{10, 10, 10, 13, 14}
	want := []bool{false, false, false, true, false}
	for i, c := range closes {
		set.UpdateAll(indicator.Candle{Close: c})
		ok, err := ev.EvalEntry()
		if err != nil {
			t.Fatal(err)
		}
		if ok != want[i] {
			t.Fatalf("candle %d (close %v): crossover fired=%v, want %v", i, c, ok, want[i])
		}
	}
}

func TestAndShortCircuitsLeftToRight(t *testing.T) {
	set := setUpCrossoverSet(t)
	cond := ir.Condition{
		Kind: ir.CondAnd,
		Children: []ir.Condition{
			{Kind: ir.CondThreshold, Ref: "fast", Op: ir.OpGt, Const: 0}, // NaN -> false
			{Kind: ir.CondThreshold, Ref: "__missing__", Op: ir.OpGt, Const: 0},
		},
	}
	ev := NewEvaluator(set, cond, nil)
	ok, err := ev.EvalEntry()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected and() to short-circuit false on first NaN child")
	}
}

func TestOrFiresOnFirstTrueChild(t *testing.T) {
	set := setUpCrossoverSet(t)
	for i := 0; i < 2; i++ {
		set.UpdateAll(indicator.Candle{Close: 10})
	}
	cond := ir.Condition{
		Kind: ir.CondOr,
		Children: []ir.Condition{
			{Kind: ir.CondThreshold, Ref: "fast", Op: ir.OpGt, Const: -1},
			{Kind: ir.CondThreshold, Ref: "__missing__", Op: ir.OpGt, Const: 0},
		},
	}
	ev := NewEvaluator(set, cond, nil)
	ok, err := ev.EvalEntry()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected or() to fire true on first true child")
	}
}

func TestEvalExitReturnsNotOkWhenNoExitRule(t *testing.T) {
	set := setUpCrossoverSet(t)
	ev := NewEvaluator(set, ir.Condition{Kind: ir.CondThreshold, Ref: "fast", Op: ir.OpGt, Const: 0}, nil)
	_, ok, err := ev.EvalExit()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected ok=false with no compiled exit rule")
	}
}
