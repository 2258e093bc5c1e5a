// Package fixtures loads strategy IR test fixtures written in YAML (easier
// to hand-edit than the wire JSON) and converts them to the JSON bytes
// ir.Compile expects, preferring
// yaml.v3 over hand-written JSON for anything a human edits directly.
package fixtures

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Doc mirrors the flat strategy IR wire shape using yaml tags, so a
// fixture file can be written once and fed either to yaml.Unmarshal here
// or, after Doc.JSON(), to ir.Compile directly.
type Doc struct {
	Version          string            `yaml:"version"`
	CompilerVersion  string            `yaml:"compiler_version"`
	RegistryVersions map[string]string `yaml:"registry_versions"`
	DefaultsVersion  string            `yaml:"defaults_version"`
	Meta             map[string]string `yaml:"meta"`
	Settings         map[string]any    `yaml:"settings"`

	Indicators []Indicator `yaml:"indicators"`
	Entry      Rule        `yaml:"entry"`
	Exit       *Rule       `yaml:"exit,omitempty"`
}

type Indicator struct {
	ID      string             `yaml:"id" json:"id"`
	Type    string             `yaml:"type" json:"type"`
	Params  map[string]float64 `yaml:"params" json:"params"`
	Outputs []string           `yaml:"outputs" json:"outputs"`
}

type Rule struct {
	Condition Condition `yaml:"condition" json:"condition"`
	Action    Action    `yaml:"action" json:"action"`
}

type Condition struct {
	Kind     string      `yaml:"kind" json:"kind"`
	Ref      string      `yaml:"ref,omitempty" json:"ref,omitempty"`
	Op       string      `yaml:"op,omitempty" json:"op,omitempty"`
	Const    float64     `yaml:"const,omitempty" json:"const,omitempty"`
	Fast     string      `yaml:"fast,omitempty" json:"fast,omitempty"`
	Slow     string      `yaml:"slow,omitempty" json:"slow,omitempty"`
	Children []Condition `yaml:"children,omitempty" json:"children,omitempty"`
}

type Action struct {
	Kind         string  `yaml:"kind" json:"kind"`
	Sizing       string  `yaml:"sizing" json:"sizing"`
	Size         float64 `yaml:"size" json:"size"`
	Order        string  `yaml:"order" json:"order"`
	TIF          string  `yaml:"tif" json:"tif"`
	PostOnly     bool    `yaml:"post_only,omitempty" json:"post_only,omitempty"`
	ReduceOnly   bool    `yaml:"reduce_only,omitempty" json:"reduce_only,omitempty"`
	LimitPrice   float64 `yaml:"limit_price,omitempty" json:"limit_price,omitempty"`
	TriggerPrice float64 `yaml:"trigger_price,omitempty" json:"trigger_price,omitempty"`
}

// Load reads a YAML fixture file and decodes it into a Doc.
func Load(path string) (*Doc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: reading %s: %w", path, err)
	}
	var doc Doc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("fixtures: parsing %s: %w", path, err)
	}
	return &doc, nil
}

// JSON renders the fixture as the flat wire-shape JSON ir.Compile expects.
func (d *Doc) JSON() ([]byte, error) {
	wire := struct {
		Version          string            `json:"version,omitempty"`
		CompilerVersion  string            `json:"compiler_version,omitempty"`
		RegistryVersions map[string]string `json:"registry_versions,omitempty"`
		DefaultsVersion  string            `json:"defaults_version,omitempty"`
		Meta             map[string]string `json:"meta,omitempty"`
		Settings         map[string]any    `json:"settings,omitempty"`
		Indicators       []Indicator       `json:"indicators"`
		Entry            Rule              `json:"entry"`
		Exit             *Rule             `json:"exit,omitempty"`
	}{
		Version:          d.Version,
		CompilerVersion:  d.CompilerVersion,
		RegistryVersions: d.RegistryVersions,
		DefaultsVersion:  d.DefaultsVersion,
		Meta:             d.Meta,
		Settings:         d.Settings,
		Indicators:       d.Indicators,
		Entry:            d.Entry,
		Exit:             d.Exit,
	}
	return json.Marshal(wire)
}

// LoadJSON reads a YAML fixture and directly returns its wire-shape JSON,
// the one call most tests need.
func LoadJSON(path string) ([]byte, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return doc.JSON()
}
