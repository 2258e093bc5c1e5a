package indicator

import (
	"math"
	"testing"
)

func feed(ind Indicator, closes []float64) {
	for _, c := range closes {
		ind.Update(Candle{Close: c, High: c, Low: c, Open: c})
	}
}

func TestSMAReturnsNaNUntilWarm(t *testing.T) {
	sma := NewSMA(5)
	feed(sma, []float64{1, 2, 3, 4})
	if !math.IsNaN(sma.Value()) {
		t.Fatal("expected NaN before warmup")
	}
	sma.Update(Candle{Close: 5})
	if math.IsNaN(sma.Value()) {
		t.Fatal("expected a value once warm")
	}
	if sma.Value() != 3 {
		t.Fatalf("expected 3, got %v", sma.Value())
	}
}

func TestOBVStaysInertOnZeroVolume(t *testing.T) {
	obv := NewOBV()
	feed(obv, []float64{100, 101, 99, 105})
	if obv.Get("value") != 0 {
		t.Fatalf("expected OBV to stay at 0 fed zero-volume candles, got %v", obv.Get("value"))
	}
}

func TestRegistryBuildsKnownTypes(t *testing.T) {
	for _, typ := range []string{"SMA", "ema", "Wma", "RSI", "MACD", "BBANDS", "STOCH", "ATR", "ADX", "OBV"} {
		if _, err := New(Spec{ID: "x", Type: typ, Params: map[string]float64{}}); err != nil {
			t.Fatalf("unexpected error constructing %s: %v", typ, err)
		}
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	if _, err := New(Spec{ID: "x", Type: "NOPE"}); err == nil {
		t.Fatal("expected error for unknown indicator type")
	}
}

func TestSetValueResolvesIDAndOutput(t *testing.T) {
	set, err := NewSet([]Spec{{ID: "bb", Type: "BBANDS", Params: map[string]float64{"period": 5}}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		set.UpdateAll(Candle{Close: float64(100 + i)})
	}
	v, err := set.Value("bb.upper")
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(v) {
		t.Fatal("expected a warm value")
	}
}
