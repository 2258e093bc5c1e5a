package store

import (
	"testing"
	"time"

	"perpsim/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(config.DatabaseConfig{InMemory: true, MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndListRuns(t *testing.T) {
	s := newTestStore(t)

	id, err := s.InsertRun(RunRecord{
		Coin:             "BTC",
		StartDate:        "20240101",
		EndDate:          "20240102",
		IRHash:           "abc123",
		ConfigJSON:       `{"sim":{}}`,
		TradeCount:       3,
		EquityPointCount: 120,
		FinalEquity:      10500,
		TotalReturnPct:   5.0,
		MaxDrawdownPct:   1.2,
		SharpeRatio:      1.4,
		WinRate:          0.66,
		CreatedAt:        time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive run id, got %d", id)
	}

	runs, err := s.ListRuns("BTC", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].TradeCount != 3 || runs[0].IRHash != "abc123" {
		t.Fatalf("unexpected run record: %+v", runs[0])
	}
}

func TestListRunsFiltersByCoin(t *testing.T) {
	s := newTestStore(t)

	for _, coin := range []string{"BTC", "ETH"} {
		if _, err := s.InsertRun(RunRecord{Coin: coin, StartDate: "20240101", EndDate: "20240101", CreatedAt: time.Now()}); err != nil {
			t.Fatalf("InsertRun(%s): %v", coin, err)
		}
	}

	runs, err := s.ListRuns("ETH", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Coin != "ETH" {
		t.Fatalf("expected only ETH runs, got %+v", runs)
	}
}
