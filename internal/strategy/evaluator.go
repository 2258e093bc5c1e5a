// Package strategy evaluates a compiled Strategy IR rule's condition tree
// against live indicator state, remembering one step of prior values per
// crossover node, without baking that memory into
// the (immutable) IR itself.
package strategy

import (
	"fmt"
	"math"

	"perpsim/internal/indicator"
	"perpsim/internal/ir"
)

type crossState struct {
	prevFast, prevSlow float64
	have               bool
}

// compiledCond mirrors ir.Condition but carries a stable crossover-memory
// slot index assigned once, by structural position, so short-circuit
// evaluation of and/or never shifts which slot a given crossover node
// reads from call to call.
type compiledCond struct {
	kind     ir.ConditionKind
	ref      string
	op       ir.ComparisonOp
	constVal float64
	fast     string
	slow     string
	crossID  int
	children []compiledCond
}

func compileCondition(c ir.Condition, next *int) compiledCond {
	cc := compiledCond{
		kind: c.Kind, ref: c.Ref, op: c.Op, constVal: c.Const,
		fast: c.Fast, slow: c.Slow,
	}
	if c.Kind == ir.CondCrossoverAbove || c.Kind == ir.CondCrossoverBelow {
		cc.crossID = *next
		*next++
	}
	for _, child := range c.Children {
		cc.children = append(cc.children, compileCondition(child, next))
	}
	return cc
}

// Rule is one compiled, evaluable entry or exit rule.
type Rule struct {
	cond compiledCond
	mem  []crossState
}

func compileRule(cond ir.Condition) Rule {
	count := 0
	cc := compileCondition(cond, &count)
	return Rule{cond: cc, mem: make([]crossState, count)}
}

// Evaluator holds the compiled entry and (optional) exit rules for one
// strategy scope plus their independent crossover memory.
type Evaluator struct {
	indicators *indicator.Set
	entry      Rule
	exit       *Rule
}

func NewEvaluator(indicators *indicator.Set, entry ir.Condition, exit *ir.Condition) *Evaluator {
	e := &Evaluator{indicators: indicators}
	er := compileRule(entry)
	e.entry = er
	if exit != nil {
		xr := compileRule(*exit)
		e.exit = &xr
	}
	return e
}

// EvalEntry evaluates the entry rule's condition tree.
func (e *Evaluator) EvalEntry() (bool, error) {
	return e.eval(&e.entry)
}

// EvalExit evaluates the exit rule's condition tree. ok is false if no
// exit rule was compiled (the IR document omitted one).
func (e *Evaluator) EvalExit() (fire bool, ok bool, err error) {
	if e.exit == nil {
		return false, false, nil
	}
	fire, err = e.eval(e.exit)
	return fire, true, err
}

func (e *Evaluator) eval(r *Rule) (bool, error) {
	return e.evalNode(r.cond, r.mem)
}

func (e *Evaluator) evalNode(n compiledCond, mem []crossState) (bool, error) {
	switch n.kind {
	case ir.CondAlways:
		return true, nil

	case ir.CondThreshold:
		v, err := e.indicators.Value(n.ref)
		if err != nil {
			return false, err
		}
		if math.IsNaN(v) {
			return false, nil
		}
		return compare(v, n.op, n.constVal), nil

	case ir.CondCrossoverAbove, ir.CondCrossoverBelow:
		fastV, err := e.indicators.Value(n.fast)
		if err != nil {
			return false, err
		}
		slowV, err := e.indicators.Value(n.slow)
		if err != nil {
			return false, err
		}
		st := &mem[n.crossID]
		if math.IsNaN(fastV) || math.IsNaN(slowV) {
			return false, nil
		}
		fired := false
		if st.have {
			if n.kind == ir.CondCrossoverAbove {
				fired = fastV > slowV && st.prevFast <= st.prevSlow
			} else {
				fired = fastV < slowV && st.prevFast >= st.prevSlow
			}
		}
		st.prevFast, st.prevSlow, st.have = fastV, slowV, true
		return fired, nil

	case ir.CondAnd:
		for _, child := range n.children {
			ok, err := e.evalNode(child, mem)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case ir.CondOr:
		for _, child := range n.children {
			ok, err := e.evalNode(child, mem)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("strategy: unknown condition kind %q", n.kind)
	}
}

func compare(v float64, op ir.ComparisonOp, c float64) bool {
	switch op {
	case ir.OpLt:
		return v < c
	case ir.OpLte:
		return v <= c
	case ir.OpEq:
		return v == c
	case ir.OpNe:
		return v != c
	case ir.OpGte:
		return v >= c
	case ir.OpGt:
		return v > c
	default:
		return false
	}
}
