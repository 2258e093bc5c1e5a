package funding

import "testing"

func TestRateAtFindsMostRecentPoint(t *testing.T) {
	s := NewScheduleFromPoints([]Point{
		{TsMs: 1000, Rate: 0.0001},
		{TsMs: 2000, Rate: 0.0002},
		{TsMs: 3000, Rate: 0.0003},
	})
	rate, ok := s.RateAt(1500)
	if !ok || rate != 0.0001 {
		t.Fatalf("expected 0.0001, got %v ok=%v", rate, ok)
	}
}

func TestRateAtNoCoverageBeforeFirstPoint(t *testing.T) {
	s := NewScheduleFromPoints([]Point{{TsMs: 1000, Rate: 0.0001}})
	if _, ok := s.RateAt(500); ok {
		t.Fatal("expected no coverage before first point")
	}
}

func TestCalculatePaymentOnLong(t *testing.T) {
	// long 1.0 at mark 1000, rate +0.0001 -> payment 0.1 debited.
	s := NewScheduleFromPoints([]Point{{TsMs: 0, Rate: 0.0001}})
	notional := 1.0 * 1000.0
	payment, err := s.CalculatePayment(notional, 0)
	if err != nil {
		t.Fatal(err)
	}
	if payment != 0.1 {
		t.Fatalf("expected payment 0.1, got %v", payment)
	}
}
