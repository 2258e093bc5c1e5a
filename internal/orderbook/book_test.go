package orderbook

import "testing"

func TestApplySnapshotAndBest(t *testing.T) {
	b := New()
	b.ApplySnapshot(
		[]InputLevel{{Px: 25000.0, Sz: 1.5}, {Px: 24999.0, Sz: 2.0}},
		[]InputLevel{{Px: 25001.0, Sz: 1.0}, {Px: 25002.0, Sz: 1.5}},
	)

	bid, ok := b.BestBid()
	if !ok || bid.Price.Float() != 25000.0 || bid.Size != 1.5 {
		t.Fatalf("unexpected best bid: %+v ok=%v", bid, ok)
	}
	ask, ok := b.BestAsk()
	if !ok || ask.Price.Float() != 25001.0 || ask.Size != 1.0 {
		t.Fatalf("unexpected best ask: %+v ok=%v", ask, ok)
	}
	mid, ok := b.MidPrice()
	if !ok || mid != 25000.5 {
		t.Fatalf("unexpected mid: %v ok=%v", mid, ok)
	}
}

func TestApplySnapshotDedupesDuplicatePrices(t *testing.T) {
	b := New()
	b.ApplySnapshot(
		[]InputLevel{{Px: 100, Sz: 1}, {Px: 100, Sz: 2}},
		[]InputLevel{{Px: 101, Sz: 1}},
	)
	bid, ok := b.BestBid()
	if !ok || bid.Size != 3 {
		t.Fatalf("expected aggregated size 3, got %+v", bid)
	}
}

func TestSweepBuySingleLevel(t *testing.T) {
	b := New()
	b.ApplySnapshot(
		[]InputLevel{{Px: 25000.0, Sz: 1.0}},
		[]InputLevel{{Px: 25001.0, Sz: 2.0}},
	)
	res, ok := b.SweepBuy(1.5)
	if !ok {
		t.Fatal("expected fill")
	}
	if res.Filled != 1.5 || res.VWAP != 25001.0 {
		t.Fatalf("unexpected sweep result: %+v", res)
	}
}

func TestSweepBuyMultipleLevels(t *testing.T) {
	b := New()
	b.ApplySnapshot(
		[]InputLevel{{Px: 25000.0, Sz: 1.0}, {Px: 24999.0, Sz: 2.0}},
		[]InputLevel{{Px: 25001.0, Sz: 1.5}, {Px: 25002.0, Sz: 2.0}},
	)
	res, ok := b.SweepBuy(3.0)
	if !ok {
		t.Fatal("expected fill")
	}
	if res.Filled != 3.0 {
		t.Fatalf("expected filled 3.0, got %v", res.Filled)
	}
	want := (1.5*25001.0 + 1.5*25002.0) / 3.0
	if diff := res.VWAP - want; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected vwap ~%v, got %v", want, res.VWAP)
	}
}

func TestSweepExhaustedSideReturnsNoFill(t *testing.T) {
	b := New()
	b.ApplySnapshot([]InputLevel{{Px: 100, Sz: 1}}, nil)
	if _, ok := b.SweepBuy(1); ok {
		t.Fatal("expected no fill with empty ask side")
	}
}

func TestWouldCross(t *testing.T) {
	b := New()
	b.ApplySnapshot([]InputLevel{{Px: 25000.0, Sz: 1.0}}, []InputLevel{{Px: 25001.0, Sz: 1.0}})

	if !b.WouldCrossBuy(25001.0) {
		t.Error("buy at ask should cross")
	}
	if !b.WouldCrossBuy(25002.0) {
		t.Error("buy above ask should cross")
	}
	if b.WouldCrossBuy(25000.0) {
		t.Error("buy below ask should not cross")
	}

	if !b.WouldCrossSell(25000.0) {
		t.Error("sell at bid should cross")
	}
	if !b.WouldCrossSell(24999.0) {
		t.Error("sell below bid should cross")
	}
	if b.WouldCrossSell(25001.0) {
		t.Error("sell above bid should not cross")
	}
}

func TestDepthQueries(t *testing.T) {
	b := New()
	b.ApplySnapshot(
		[]InputLevel{{Px: 25000.0, Sz: 1.0}, {Px: 24999.0, Sz: 2.0}},
		[]InputLevel{{Px: 25001.0, Sz: 1.5}, {Px: 25002.0, Sz: 2.0}},
	)

	if got := b.BidDepthTo(25000.0); got != 1.0 {
		t.Errorf("bid depth to 25000.0 = %v, want 1.0", got)
	}
	if got := b.BidDepthTo(24999.0); got != 3.0 {
		t.Errorf("bid depth to 24999.0 = %v, want 3.0", got)
	}
	if got := b.AskDepthTo(25002.0); got != 3.5 {
		t.Errorf("ask depth to 25002.0 = %v, want 3.5", got)
	}
	if got := b.AskDepthTo(25001.0); got != 1.5 {
		t.Errorf("ask depth to 25001.0 = %v, want 1.5", got)
	}
}

func TestSweepBuyToLimitStopsAtWorseLevel(t *testing.T) {
	// S3: BUY limit 100 sz=1, best_ask moves to 99 with levels [(99,0.6),(100,1.0)].
	b := New()
	b.ApplySnapshot(nil, []InputLevel{{Px: 99.0, Sz: 0.6}, {Px: 100.0, Sz: 1.0}})
	res, ok := b.SweepBuyToLimit(1.0, 100.0)
	if !ok {
		t.Fatal("expected fill")
	}
	if res.Filled != 1.0 {
		t.Fatalf("expected filled 1.0, got %v", res.Filled)
	}
	want := (0.6*99.0 + 0.4*100.0) / 1.0
	if diff := res.VWAP - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected vwap %v, got %v", want, res.VWAP)
	}
}

func TestApplySnapshotReplacesPreviousState(t *testing.T) {
	b := New()
	b.ApplySnapshot([]InputLevel{{Px: 1, Sz: 1}}, []InputLevel{{Px: 2, Sz: 1}})
	b.ApplySnapshot([]InputLevel{{Px: 5, Sz: 1}}, []InputLevel{{Px: 6, Sz: 1}})
	bid, _ := b.BestBid()
	if bid.Price.Float() != 5 {
		t.Fatalf("expected snapshot to fully replace book, got bid %v", bid.Price.Float())
	}
}
