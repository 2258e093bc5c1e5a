package fees

import "testing"

func TestCalculatePositiveFee(t *testing.T) {
	c := New(-1, 5, 10)
	fee := c.Calculate(1000, false)
	if fee != 0.5 {
		t.Fatalf("expected taker fee 0.5, got %v", fee)
	}
}

func TestCalculateMakerRebate(t *testing.T) {
	c := New(-1, 5, 10)
	fee := c.Calculate(1000, true)
	if fee != -0.1 {
		t.Fatalf("expected maker rebate -0.1, got %v", fee)
	}
}

func TestApplySlippage(t *testing.T) {
	c := New(0, 0, 10)
	if got := c.ApplySlippage(100, true); got != 100.1 {
		t.Fatalf("expected buy slippage to raise price, got %v", got)
	}
	if got := c.ApplySlippage(100, false); got != 99.9 {
		t.Fatalf("expected sell slippage to lower price, got %v", got)
	}
}
