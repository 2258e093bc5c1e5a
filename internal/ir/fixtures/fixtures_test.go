package fixtures

import (
	"testing"

	"perpsim/internal/ir"
)

func TestLoadJSONCompiles(t *testing.T) {
	data, err := LoadJSON("testdata/sma_cross.yaml")
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}

	sir, err := ir.Compile(data)
	if err != nil {
		t.Fatalf("ir.Compile: %v", err)
	}
	if len(sir.Indicators) != 2 {
		t.Fatalf("expected 2 indicators, got %d", len(sir.Indicators))
	}
	if sir.Exit == nil {
		t.Fatal("expected an exit rule")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/does_not_exist.yaml"); err == nil {
		t.Fatal("expected an error for a missing fixture file")
	}
}
