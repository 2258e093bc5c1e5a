package validate

import "testing"

func TestCoinAcceptsValidNames(t *testing.T) {
	for _, coin := range []string{"BTC", "ETH", "k_PEPE", "A"} {
		if err := Coin(coin); err != nil {
			t.Errorf("Coin(%q) = %v, want nil", coin, err)
		}
	}
}

func TestCoinRejectsPathTraversal(t *testing.T) {
	for _, coin := range []string{"../etc", "BTC/../ETH", "..\\ETH", "a/b", "a\\b"} {
		if err := Coin(coin); err == nil {
			t.Errorf("Coin(%q) = nil, want an error", coin)
		}
	}
}

func TestCoinRejectsEmptyAndOverlong(t *testing.T) {
	if err := Coin(""); err == nil {
		t.Error("Coin(\"\") = nil, want an error")
	}
	over := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if err := Coin(over); err == nil {
		t.Errorf("Coin(%q) = nil, want an error", over)
	}
}

func TestCoinRejectsNUL(t *testing.T) {
	if err := Coin("BTC\x00"); err == nil {
		t.Error("Coin with NUL byte = nil, want an error")
	}
}
