package ir

import "encoding/json"

// graphDoc is the node-graph wire shape original_source/src/ir/types.rs
// defines: a named entry node plus a map of condition/action/terminal
// nodes, reached via string ids. Retained so IR documents produced by the
// original tooling remain loadable; compiled down to the same Rule the
// evaluator walks.
type graphDoc struct {
	Version          string            `json:"version"`
	CompilerVersion  string            `json:"compiler_version"`
	RegistryVersions map[string]string `json:"registry_versions"`
	DefaultsVersion  string            `json:"defaults_version"`
	Meta             map[string]string `json:"meta"`
	Settings         map[string]any    `json:"settings"`
	IRHash           string            `json:"ir_hash"`
	Scopes           []graphScope      `json:"scopes"`
}

type graphScope struct {
	Indicators []wireIndicator `json:"indicators"`
	Graph      graph           `json:"graph"`
	ExitGraph  *graph          `json:"exit_graph"`
}

type graph struct {
	Entry string           `json:"entry"`
	Nodes map[string]gnode `json:"nodes"`
}

type gnode struct {
	Type   string     `json:"type"` // "condition" | "action" | "terminal"
	Expr   *gexpr      `json:"expr,omitempty"`
	True   string      `json:"true,omitempty"`
	False  string      `json:"false,omitempty"`
	Action *wireAction `json:"action,omitempty"`
	Guards []string    `json:"guards,omitempty"`
	Next   string      `json:"next,omitempty"`
}

type gexpr struct {
	Op  string   `json:"op"`
	LHS gexprVal `json:"lhs"`
	RHS gexprVal `json:"rhs"`
}

type gexprVal struct {
	Ref    string   `json:"ref,omitempty"`
	Const  *float64 `json:"const,omitempty"`
	Series string   `json:"series,omitempty"`
}

var gopToCondOp = map[string]ComparisonOp{
	"<": OpLt, "<=": OpLte, "==": OpEq, "!=": OpNe, ">=": OpGte, ">": OpGt,
}

// compileGraph walks a node graph from its entry node to the first
// terminal/action reachable along true branches, folding every condition
// on the path into a single `and` tree. This flattens the original's
// branch-on-false-goes-elsewhere topology into the condition-tree shape
// the flat condition tree uses; graphs using the false branch for anything other than
// "stay at the terminal" are not representable this way.
func compileGraph(g graph) (Condition, *wireAction, bool) {
	var conds []Condition
	nodeID := g.Entry
	for {
		node, ok := g.Nodes[nodeID]
		if !ok {
			return Condition{}, nil, false
		}
		switch node.Type {
		case "condition":
			conds = append(conds, exprToCondition(*node.Expr))
			nodeID = node.True
		case "action":
			if len(conds) == 0 {
				return Condition{Kind: CondAlways}, node.Action, true
			}
			if len(conds) == 1 {
				return conds[0], node.Action, true
			}
			return Condition{Kind: CondAnd, Children: conds}, node.Action, true
		case "terminal":
			return Condition{}, nil, false
		default:
			return Condition{}, nil, false
		}
	}
}

func exprToCondition(e gexpr) Condition {
	if e.Op == "crosses_above" || e.Op == "crosses_below" {
		kind := CondCrossoverAbove
		if e.Op == "crosses_below" {
			kind = CondCrossoverBelow
		}
		return Condition{Kind: kind, Fast: e.LHS.Ref, Slow: e.RHS.Ref}
	}
	op, ok := gopToCondOp[e.Op]
	if !ok {
		op = OpEq
	}
	constVal := 0.0
	ref := e.LHS.Ref
	if e.LHS.Const != nil {
		constVal = *e.LHS.Const
		ref = e.RHS.Ref
	} else if e.RHS.Const != nil {
		constVal = *e.RHS.Const
	}
	return Condition{Kind: CondThreshold, Ref: ref, Op: op, Const: constVal}
}

func parseGraph(raw json.RawMessage) (*StrategyIR, error) {
	var doc graphDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc.Scopes) == 0 {
		return nil, errNoScopes
	}
	scope := doc.Scopes[0]

	sir := &StrategyIR{
		Version:          doc.Version,
		CompilerVersion:  doc.CompilerVersion,
		RegistryVersions: doc.RegistryVersions,
		DefaultsVersion:  doc.DefaultsVersion,
		Meta:             doc.Meta,
		Settings:         doc.Settings,
		IRHash:           doc.IRHash,
		Indicators:       convertIndicators(scope.Indicators),
	}

	cond, act, ok := compileGraph(scope.Graph)
	if !ok || act == nil {
		return nil, errGraphUnreachable
	}
	sir.Entry = Rule{Condition: cond, Action: convertAction(*act)}

	if scope.ExitGraph != nil {
		ec, ea, ok := compileGraph(*scope.ExitGraph)
		if ok && ea != nil {
			sir.Exit = &Rule{Condition: ec, Action: convertAction(*ea)}
		}
	}
	return sir, nil
}
