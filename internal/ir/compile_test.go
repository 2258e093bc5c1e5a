package ir

import "testing"

const flatDoc = `{
  "version": "1.0",
  "indicators": [
    {"id": "rsi14", "type": "RSI", "params": {"period": 14}, "outputs": ["value"]},
    {"id": "emaFast", "type": "EMA", "params": {"period": 12}, "outputs": ["value"]},
    {"id": "emaSlow", "type": "EMA", "params": {"period": 26}, "outputs": ["value"]}
  ],
  "entry": {
    "condition": {
      "kind": "and",
      "children": [
        {"kind": "threshold", "ref": "rsi14", "op": "lt", "const": 30},
        {"kind": "crossover_above", "fast": "emaFast", "slow": "emaSlow"}
      ]
    },
    "action": {"kind": "buy", "sizing": "pct", "size": 10, "order": "MARKET"}
  },
  "exit": {
    "condition": {"kind": "threshold", "ref": "rsi14", "op": "gt", "const": 70},
    "action": {"kind": "close"}
  }
}`

func TestCompileFlatDoc(t *testing.T) {
	sir, err := Compile([]byte(flatDoc))
	if err != nil {
		t.Fatal(err)
	}
	if len(sir.Indicators) != 3 {
		t.Fatalf("expected 3 indicators, got %d", len(sir.Indicators))
	}
	if sir.Entry.Action.Kind != ActionBuy {
		t.Fatalf("expected buy action, got %v", sir.Entry.Action.Kind)
	}
	if sir.Exit == nil || sir.Exit.Action.Kind != ActionClose {
		t.Fatal("expected exit close action")
	}
}

const graphDocJSON = `{
  "version": "1.0",
  "scopes": [{
    "indicators": [{"id": "rsi14", "type": "RSI", "params": {"period": 14}, "outputs": ["value"]}],
    "graph": {
      "entry": "n1",
      "nodes": {
        "n1": {"type": "condition", "expr": {"op": "<", "lhs": {"ref": "rsi14"}, "rhs": {"const": 30}}, "true": "n2", "false": "terminal"},
        "n2": {"type": "action", "action": {"kind": "buy", "sizing": "pct", "size": 5, "order": "MARKET"}, "guards": [], "next": "terminal"},
        "terminal": {"type": "terminal"}
      }
    }
  }]
}`

func TestCompileGraphDoc(t *testing.T) {
	sir, err := Compile([]byte(graphDocJSON))
	if err != nil {
		t.Fatal(err)
	}
	if sir.Entry.Condition.Kind != CondThreshold || sir.Entry.Condition.Ref != "rsi14" {
		t.Fatalf("expected threshold condition on rsi14, got %+v", sir.Entry.Condition)
	}
	if sir.Entry.Action.Kind != ActionBuy {
		t.Fatalf("expected buy action, got %v", sir.Entry.Action.Kind)
	}
}

func TestCompileRejectsMissingEntry(t *testing.T) {
	if _, err := Compile([]byte(`{"indicators": []}`)); err == nil {
		t.Fatal("expected error for missing entry")
	}
}

func TestCanonicalHashRoundTrip(t *testing.T) {
	sir, err := Compile([]byte(flatDoc))
	if err != nil {
		t.Fatal(err)
	}
	hash, err := CanonicalHash(sir)
	if err != nil {
		t.Fatal(err)
	}
	sir.IRHash = hash
	ok, err := VerifyHash(sir)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected hash to verify")
	}
	sir.IRHash = "deadbeef"
	ok, _ = VerifyHash(sir)
	if ok {
		t.Fatal("expected tampered hash to fail verification")
	}
}
