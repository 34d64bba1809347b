// Package model implements the declarative model format: a
// human-authorable YAML description of the grid, the cell alphabet, and
// the node graph, validated structurally against a CUE schema and
// compiled once into an immutable rule set reused across resets.
package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is the decoded form of a model file.
type Definition struct {
	// Name identifies the model in logs and the run archive.
	Name string `yaml:"name"`

	// Grid declares the coordinate system and its extent.
	Grid GridDef `yaml:"grid"`

	// Alphabet lists the cell symbols in value order; the first symbol
	// is value 0, the conventional "empty". At most 64 symbols.
	Alphabet string `yaml:"alphabet"`

	// Seed optionally presets cells before the first step.
	Seed []SeedCell `yaml:"seed,omitempty"`

	// Root is the node graph to execute.
	Root *NodeDef `yaml:"root"`
}

// GridDef declares a grid. Euclidean grids use width/height/depth and
// wrap; polar and spherical grids use rings plus the radial subdivision
// knobs (zero values take engine defaults).
type GridDef struct {
	Kind   string `yaml:"kind"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Depth  int    `yaml:"depth,omitempty"`
	Wrap   bool   `yaml:"wrap,omitempty"`

	Rings     int     `yaml:"rings,omitempty"`
	TargetArc float64 `yaml:"target_arc,omitempty"`
	RingDepth float64 `yaml:"ring_depth,omitempty"`
	MaxRatio  float64 `yaml:"max_ratio,omitempty"`
}

// SeedCell presets one cell to an alphabet symbol.
type SeedCell struct {
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	Z     int    `yaml:"z,omitempty"`
	Value string `yaml:"value"`
}

// NodeDef declares one node of the execution graph.
type NodeDef struct {
	// Type is one of: one, all, markov, sequence, wfc.
	Type string `yaml:"type"`

	// Name optionally labels the node for diagnostics; defaults to a
	// path-derived label.
	Name string `yaml:"name,omitempty"`

	// Leaf fields (one, all).
	Symmetry string    `yaml:"symmetry,omitempty"` // group name; "all" adapts to the grid
	Limit    int       `yaml:"limit,omitempty"`    // max applications; 0 = unlimited
	Rules    []RuleDef `yaml:"rules,omitempty"`

	// Container fields (markov, sequence).
	Children []*NodeDef `yaml:"children,omitempty"`

	// Wfc fields.
	Model           string             `yaml:"model,omitempty"` // tiled | overlapping
	Tiles           string             `yaml:"tiles,omitempty"`
	Weights         map[string]float64 `yaml:"weights,omitempty"`
	Adjacent        [][]string         `yaml:"adjacent,omitempty"` // [a, b] or [a, b, direction]
	Sample          []string           `yaml:"sample,omitempty"`
	N               int                `yaml:"n,omitempty"`
	PeriodicSample  bool               `yaml:"periodic_sample,omitempty"`
	OnContradiction string             `yaml:"on_contradiction,omitempty"` // fail | retry | skip
	Retries         int                `yaml:"retries,omitempty"`
}

// RuleDef declares one rewrite rule. Direction keys accept the
// canonical axis names x-/x+/y-/y+/z-/z+ and, on radial grids, the
// aliases in/out, prev/next, and down/up.
type RuleDef struct {
	// Center is the expected center symbol; "*" is a wildcard.
	Center string `yaml:"center"`

	// Where maps neighbor directions to expected symbols.
	Where map[string]string `yaml:"where,omitempty"`

	// Out is the symbol written to the center; "*" leaves it unchanged.
	Out string `yaml:"out"`

	// Write maps neighbor directions to symbols written to every
	// neighbor in that direction, for multi-cell rewrites.
	Write map[string]string `yaml:"write,omitempty"`
}

// Parse decodes a model file without compiling it. Structural schema
// validation happens here; semantic validation happens in Compile.
func Parse(data []byte) (*Definition, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &def, nil
}
