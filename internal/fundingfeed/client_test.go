package fundingfeed

import (
	"context"
	"testing"
	"time"
)

func TestCoinToSymbol(t *testing.T) {
	if got := coinToSymbol("BTC"); got != "BTC/USDC:USDC" {
		t.Fatalf("unexpected symbol: %q", got)
	}
}

func TestFetchScheduleRejectsInvalidCoin(t *testing.T) {
	c := NewClient(nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := c.FetchSchedule(ctx, "../etc", 0, 1); err == nil {
		t.Fatal("expected an error for a path-traversal coin name")
	}
}

func TestFetchScheduleRejectsInvertedRange(t *testing.T) {
	c := NewClient(nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := c.FetchSchedule(ctx, "BTC", 1000, 500); err == nil {
		t.Fatal("expected an error for start_ts after end_ts")
	}
}
