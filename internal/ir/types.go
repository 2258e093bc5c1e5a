// Package ir models the compiled Strategy IR: an indicator manifest plus
// entry/exit rule graphs. The wire format is JSON; this package's types are
// the semantic shape the strategy evaluator walks, independent of which of
// the two on-disk shapes (flat condition tree, or original-style node
// graph) produced them.
package ir

// StrategyIR is one compiled strategy document. Version/CompilerVersion/
// RegistryVersions/DefaultsVersion/Meta/Settings/IRHash are carried for
// provenance even though only Indicators/Entry/Exit drive evaluation.
type StrategyIR struct {
	Version          string
	CompilerVersion  string
	RegistryVersions map[string]string
	DefaultsVersion  string
	Meta             map[string]string
	Settings         map[string]any
	IRHash           string

	Indicators []IndicatorSpec
	Entry      Rule
	Exit       *Rule
}

// IndicatorSpec is one entry in the indicator manifest.
type IndicatorSpec struct {
	ID      string
	Type    string
	Params  map[string]float64
	Outputs []string
}

// Rule is {condition, action}.
type Rule struct {
	Condition Condition
	Action    Action
}

// ConditionKind discriminates the recursive Condition tree.
type ConditionKind string

const (
	CondThreshold       ConditionKind = "threshold"
	CondCrossoverAbove  ConditionKind = "crossover_above"
	CondCrossoverBelow  ConditionKind = "crossover_below"
	CondAnd             ConditionKind = "and"
	CondOr              ConditionKind = "or"
	// CondAlways always fires. It is what an action node with no preceding
	// condition node compiles to: there is nothing to gate it on.
	CondAlways ConditionKind = "always"
)

// ComparisonOp is a threshold condition's operator.
type ComparisonOp string

const (
	OpLt  ComparisonOp = "lt"
	OpLte ComparisonOp = "lte"
	OpEq  ComparisonOp = "eq"
	OpNe  ComparisonOp = "ne"
	OpGte ComparisonOp = "gte"
	OpGt  ComparisonOp = "gt"
)

// Condition is a node in the recursive condition tree: threshold,
// crossover, and, or. Node-local fields are populated according to Kind;
// fields irrelevant to a given Kind are left zero.
type Condition struct {
	Kind ConditionKind

	// threshold
	Ref   string // "id" or "id.output"
	Op    ComparisonOp
	Const float64

	// crossover_above / crossover_below
	Fast string
	Slow string

	// and / or
	Children []Condition
}

// ActionKind discriminates Action.
type ActionKind string

const (
	ActionBuy   ActionKind = "buy"
	ActionSell  ActionKind = "sell"
	ActionClose ActionKind = "close"
)

// OrderKind is the order type an Action issues on trigger.
type OrderKind string

const (
	OrderMarket OrderKind = "MARKET"
	OrderLimit  OrderKind = "LIMIT"
	// StopMarket/StopLimit/TakeMarket/TakeLimit reduce to Market or Limit
	// at the triggered instant; see DESIGN.md Open Question #2.
	OrderStopMarket OrderKind = "STOP_MARKET"
	OrderStopLimit  OrderKind = "STOP_LIMIT"
	OrderTakeMarket OrderKind = "TAKE_MARKET"
	OrderTakeLimit  OrderKind = "TAKE_LIMIT"
)

// TIF is an order's time-in-force.
type TIF string

const (
	TIFGtc TIF = "GTC"
	TIFIoc TIF = "IOC"
	TIFFok TIF = "FOK"
)

// SizingMode controls how Action.Size is interpreted.
type SizingMode string

const (
	SizingCash SizingMode = "cash" // absolute quote-currency value
	SizingQty  SizingMode = "qty"  // literal coin size
	SizingPct  SizingMode = "pct"  // percentage of equity (buy) or position (sell)
)

// Action is the buy/sell/close an entry or exit rule issues.
type Action struct {
	Kind ActionKind

	Sizing SizingMode
	Size   float64 // interpreted per Sizing

	Order        OrderKind
	TIF          TIF
	PostOnly     bool
	ReduceOnly   bool
	LimitPrice   float64 // for OrderLimit/OrderStopLimit/OrderTakeLimit, absolute
	TriggerPrice float64 // for stop/take variants
}
