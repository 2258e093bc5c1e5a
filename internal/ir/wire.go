package ir

import "encoding/json"

// wireDoc is the flat condition-tree wire shape:
// top-level indicators/entry/exit, plus the provenance envelope fields
// original_source/src/ir/types.rs carries (version/compiler_version/...).
type wireDoc struct {
	Version          string            `json:"version"`
	CompilerVersion  string            `json:"compiler_version"`
	RegistryVersions map[string]string `json:"registry_versions"`
	DefaultsVersion  string            `json:"defaults_version"`
	Meta             map[string]string `json:"meta"`
	Settings         map[string]any    `json:"settings"`
	IRHash           string            `json:"ir_hash"`

	Indicators []wireIndicator `json:"indicators"`
	Entry      *wireRule       `json:"entry"`
	Exit       *wireRule       `json:"exit"`
}

type wireIndicator struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Params  map[string]float64 `json:"params"`
	Outputs []string           `json:"outputs"`
}

type wireRule struct {
	Condition wireCondition `json:"condition"`
	Action    wireAction    `json:"action"`
}

type wireCondition struct {
	Kind     string          `json:"kind"`
	Ref      string          `json:"ref"`
	Op       string          `json:"op"`
	Const    float64         `json:"const"`
	Fast     string          `json:"fast"`
	Slow     string          `json:"slow"`
	Children []wireCondition `json:"children"`
}

type wireAction struct {
	Kind         string  `json:"kind"`
	Sizing       string  `json:"sizing"`
	Size         float64 `json:"size"`
	Order        string  `json:"order"`
	TIF          string  `json:"tif"`
	PostOnly     bool    `json:"post_only"`
	ReduceOnly   bool    `json:"reduce_only"`
	LimitPrice   float64 `json:"limit_price"`
	TriggerPrice float64 `json:"trigger_price"`
}

func looksLikeFlatDoc(raw json.RawMessage) bool {
	var probe struct {
		Entry      json.RawMessage `json:"entry"`
		Indicators json.RawMessage `json:"indicators"`
		Scopes     json.RawMessage `json:"scopes"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.Entry != nil && probe.Scopes == nil
}

func convertCondition(w wireCondition) Condition {
	c := Condition{
		Kind:  ConditionKind(w.Kind),
		Ref:   w.Ref,
		Op:    ComparisonOp(w.Op),
		Const: w.Const,
		Fast:  w.Fast,
		Slow:  w.Slow,
	}
	for _, child := range w.Children {
		c.Children = append(c.Children, convertCondition(child))
	}
	return c
}

func convertAction(w wireAction) Action {
	return Action{
		Kind:         ActionKind(w.Kind),
		Sizing:       SizingMode(w.Sizing),
		Size:         w.Size,
		Order:        OrderKind(w.Order),
		TIF:          TIF(w.TIF),
		PostOnly:     w.PostOnly,
		ReduceOnly:   w.ReduceOnly,
		LimitPrice:   w.LimitPrice,
		TriggerPrice: w.TriggerPrice,
	}
}

func convertRule(w *wireRule) *Rule {
	if w == nil {
		return nil
	}
	return &Rule{Condition: convertCondition(w.Condition), Action: convertAction(w.Action)}
}

func convertIndicators(specs []wireIndicator) []IndicatorSpec {
	out := make([]IndicatorSpec, 0, len(specs))
	for _, s := range specs {
		out = append(out, IndicatorSpec{ID: s.ID, Type: s.Type, Params: s.Params, Outputs: s.Outputs})
	}
	return out
}

func parseFlat(raw json.RawMessage) (*StrategyIR, error) {
	var doc wireDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	sir := &StrategyIR{
		Version:          doc.Version,
		CompilerVersion:  doc.CompilerVersion,
		RegistryVersions: doc.RegistryVersions,
		DefaultsVersion:  doc.DefaultsVersion,
		Meta:             doc.Meta,
		Settings:         doc.Settings,
		IRHash:           doc.IRHash,
		Indicators:       convertIndicators(doc.Indicators),
		Exit:             convertRule(doc.Exit),
	}
	if doc.Entry == nil {
		return nil, errMissingEntry
	}
	sir.Entry = *convertRule(doc.Entry)
	return sir, nil
}
