package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	errMissingEntry     = errors.New("ir: document has no entry rule")
	errNoScopes         = errors.New("ir: graph document has no scopes")
	errGraphUnreachable = errors.New("ir: graph entry does not reach an action node")
)

// Compile parses a Strategy IR document, detecting which of the two wire
// shapes it uses (flat condition tree, or the original's
// node-graph under "scopes"), and validates the result.
func Compile(data []byte) (*StrategyIR, error) {
	raw := json.RawMessage(data)

	var sir *StrategyIR
	var err error
	if looksLikeFlatDoc(raw) {
		sir, err = parseFlat(raw)
	} else {
		sir, err = parseGraph(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("ir: compile: %w", err)
	}
	if err := validate(sir); err != nil {
		return nil, fmt.Errorf("ir: validate: %w", err)
	}
	return sir, nil
}

func validate(sir *StrategyIR) error {
	ids := make(map[string]bool, len(sir.Indicators))
	for _, ind := range sir.Indicators {
		if ind.ID == "" {
			return errors.New("indicator spec missing id")
		}
		if ids[ind.ID] {
			return fmt.Errorf("duplicate indicator id %q", ind.ID)
		}
		ids[ind.ID] = true
	}
	if err := validateCondition(sir.Entry.Condition); err != nil {
		return fmt.Errorf("entry condition: %w", err)
	}
	if err := validateAction(sir.Entry.Action); err != nil {
		return fmt.Errorf("entry action: %w", err)
	}
	if sir.Exit != nil {
		if err := validateCondition(sir.Exit.Condition); err != nil {
			return fmt.Errorf("exit condition: %w", err)
		}
		if err := validateAction(sir.Exit.Action); err != nil {
			return fmt.Errorf("exit action: %w", err)
		}
	}
	return nil
}

func validateCondition(c Condition) error {
	switch c.Kind {
	case CondAlways:
	case CondThreshold:
		if c.Ref == "" {
			return errors.New("threshold condition missing ref")
		}
	case CondCrossoverAbove, CondCrossoverBelow:
		if c.Fast == "" || c.Slow == "" {
			return errors.New("crossover condition missing fast/slow ref")
		}
	case CondAnd, CondOr:
		if len(c.Children) == 0 {
			return fmt.Errorf("%s condition has no children", c.Kind)
		}
		for _, child := range c.Children {
			if err := validateCondition(child); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown condition kind %q", c.Kind)
	}
	return nil
}

func validateAction(a Action) error {
	switch a.Kind {
	case ActionBuy, ActionSell, ActionClose:
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	if a.Kind != ActionClose {
		switch a.Sizing {
		case SizingCash, SizingQty, SizingPct:
		default:
			return fmt.Errorf("unknown sizing mode %q", a.Sizing)
		}
	}
	return nil
}

// CanonicalHash recomputes the ir_hash an IR document claims to carry:
// sha256 over the JSON-marshaled indicator manifest and both rule graphs,
// field order fixed by Go's struct marshaling. Used to detect an IR
// document edited out of band from its own compiler.
func CanonicalHash(sir *StrategyIR) (string, error) {
	type canonical struct {
		Indicators []IndicatorSpec
		Entry      Rule
		Exit       *Rule
	}
	b, err := json.Marshal(canonical{sir.Indicators, sir.Entry, sir.Exit})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyHash reports whether sir.IRHash matches CanonicalHash(sir). An
// empty IRHash is treated as "not asserted" and always verifies.
func VerifyHash(sir *StrategyIR) (bool, error) {
	if sir.IRHash == "" {
		return true, nil
	}
	got, err := CanonicalHash(sir)
	if err != nil {
		return false, err
	}
	return got == sir.IRHash, nil
}
