package model

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/roach88/tessera/internal/grid"
	"github.com/roach88/tessera/internal/interp"
	"github.com/roach88/tessera/internal/node"
	"github.com/roach88/tessera/internal/rule"
	"github.com/roach88/tessera/internal/wfc"
)

// Compiled is an immutable compiled model: validated definition,
// expanded rule orbits, and prebuilt wfc specs. One Compiled can mint
// any number of independent interpreters.
type Compiled struct {
	def      *Definition
	hash     string
	symbols  string
	template []node.Node
	root     node.ID
}

// Name returns the model name.
func (c *Compiled) Name() string { return c.def.Name }

// Hash returns the canonical content hash of the model file, used by
// the run archive to pin results to an exact model version.
func (c *Compiled) Hash() string { return c.hash }

// Alphabet returns the symbol string, in cell-value order.
func (c *Compiled) Alphabet() string { return c.symbols }

// Symbol returns the alphabet symbol for a cell value.
func (c *Compiled) Symbol(v grid.Cell) byte {
	if int(v) < len(c.symbols) {
		return c.symbols[v]
	}
	return '?'
}

// Compile parses, validates, and compiles a model file. All structural
// validation and symmetry-orbit expansion happens here, once; the
// resulting rule set is shared by every interpreter and reset.
func Compile(data []byte) (*Compiled, error) {
	def, err := Parse(data)
	if err != nil {
		return nil, err
	}

	h := fnv.New64a()
	h.Write(data)

	c := &Compiled{
		def:     def,
		hash:    fmt.Sprintf("%016x", h.Sum64()),
		symbols: def.Alphabet,
	}

	if len(def.Alphabet) > grid.MaxAlphabet {
		return nil, &Error{Model: def.Name, Path: "alphabet",
			Message: fmt.Sprintf("%d symbols exceeds the maximum of %d", len(def.Alphabet), grid.MaxAlphabet)}
	}
	seen := make(map[byte]bool, len(def.Alphabet))
	for i := 0; i < len(def.Alphabet); i++ {
		if seen[def.Alphabet[i]] {
			return nil, &Error{Model: def.Name, Path: "alphabet",
				Message: fmt.Sprintf("duplicate symbol %q", def.Alphabet[i])}
		}
		seen[def.Alphabet[i]] = true
	}

	// Build a throwaway grid to validate dimensions and to know which
	// directions and coordinates are legal for this model.
	g, err := c.buildGrid()
	if err != nil {
		return nil, &Error{Model: def.Name, Path: "grid", Message: err.Error()}
	}
	for i, s := range def.Seed {
		if _, err := c.symbolValue(s.Value, false); err != nil {
			return nil, &Error{Model: def.Name, Path: fmt.Sprintf("seed[%d]", i), Message: err.Error()}
		}
		at := grid.Coords{X: s.X, Y: s.Y, Z: s.Z}
		if !g.Contains(at) {
			return nil, &Error{Model: def.Name, Path: fmt.Sprintf("seed[%d]", i),
				Message: fmt.Sprintf("cell %v out of range", at)}
		}
	}

	if def.Root == nil {
		return nil, &Error{Model: def.Name, Path: "root", Message: "root node is required"}
	}
	c.root, err = c.compileNode(def.Root, "root", g)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewInterpreter builds a fresh grid, applies the seed cells, and
// returns an interpreter over a private copy of the node graph. Each
// interpreter owns its grid and RNG, so independent instances may be
// stepped concurrently by the host.
func (c *Compiled) NewInterpreter(seed uint64) (*interp.Interpreter, error) {
	g, err := c.buildGrid()
	if err != nil {
		return nil, err
	}
	if err := c.applySeed(g); err != nil {
		return nil, err
	}
	arena := node.NewArena()
	for _, n := range c.template {
		arena.Add(n)
	}
	return interp.New(c.def.Name, g, arena, c.root, seed), nil
}

// applySeed writes the model's preset cells into g.
func (c *Compiled) applySeed(g grid.Grid) error {
	for _, s := range c.def.Seed {
		v, err := c.symbolValue(s.Value, false)
		if err != nil {
			return err
		}
		g.Set(grid.Coords{X: s.X, Y: s.Y, Z: s.Z}, grid.Cell(v))
	}
	return nil
}

// buildGrid constructs the declared grid.
func (c *Compiled) buildGrid() (grid.Grid, error) {
	gd := c.def.Grid
	switch grid.Kind(gd.Kind) {
	case grid.KindEuclid:
		w, h, d := gd.Width, gd.Height, gd.Depth
		if d == 0 {
			d = 1
		}
		return grid.NewEuclid(w, h, d, gd.Wrap)
	case grid.KindPolar:
		return grid.NewPolar(gd.Rings, c.radialConfig())
	case grid.KindSphere:
		return grid.NewSphere(gd.Rings, c.radialConfig())
	default:
		return nil, fmt.Errorf("unknown grid kind %q", gd.Kind)
	}
}

func (c *Compiled) radialConfig() grid.RadialConfig {
	cfg := grid.DefaultRadialConfig()
	gd := c.def.Grid
	if gd.TargetArc > 0 {
		cfg.TargetArc = gd.TargetArc
	}
	if gd.RingDepth > 0 {
		cfg.RingDepth = gd.RingDepth
	}
	if gd.MaxRatio >= 1 {
		cfg.MaxRatio = gd.MaxRatio
	}
	return cfg
}

// symbolValue resolves a one-character alphabet symbol, or the "*"
// wildcard when wild is true.
func (c *Compiled) symbolValue(s string, wild bool) (int16, error) {
	if s == "*" {
		if wild {
			return rule.Wildcard, nil
		}
		return 0, fmt.Errorf("wildcard not allowed here")
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("symbol %q must be a single character", s)
	}
	i := strings.IndexByte(c.symbols, s[0])
	if i < 0 {
		return 0, fmt.Errorf("symbol %q not in alphabet %q", s, c.symbols)
	}
	return int16(i), nil
}

// parseDirection resolves a direction key, accepting radial aliases
// appropriate to the grid kind.
func parseDirection(s string, kind grid.Kind) (grid.Direction, error) {
	switch s {
	case "x-":
		return grid.XNeg, nil
	case "x+":
		return grid.XPos, nil
	case "y-":
		return grid.YNeg, nil
	case "y+":
		return grid.YPos, nil
	case "z-":
		return grid.ZNeg, nil
	case "z+":
		return grid.ZPos, nil
	}
	if kind == grid.KindPolar || kind == grid.KindSphere {
		switch s {
		case "in":
			return grid.XNeg, nil
		case "out":
			return grid.XPos, nil
		}
	}
	if kind == grid.KindPolar {
		switch s {
		case "prev":
			return grid.YNeg, nil
		case "next":
			return grid.YPos, nil
		}
	}
	if kind == grid.KindSphere {
		switch s {
		case "prev":
			return grid.ZNeg, nil
		case "next":
			return grid.ZPos, nil
		case "down":
			return grid.YNeg, nil
		case "up":
			return grid.YPos, nil
		}
	}
	return 0, fmt.Errorf("direction %q not valid on %s grids", s, kind)
}

// validDirection checks a direction against the grid's direction set.
func validDirection(d grid.Direction, g grid.Grid) bool {
	for _, gd := range g.Directions() {
		if gd == d {
			return true
		}
	}
	return false
}

// symmetryGroup resolves a node's symmetry name; "all" adapts to the
// grid's dimensionality and the default is no expansion.
func symmetryGroup(name string, g grid.Grid) (rule.Group, error) {
	if name == "" {
		name = "none"
	}
	if name == "all" {
		if len(g.Directions()) == grid.NumDirections {
			name = "xyz"
		} else {
			name = "xy"
		}
	}
	return rule.GroupByName(name)
}

// compileNode recursively compiles a node definition into the template
// arena, depth-first so children precede their parents.
func (c *Compiled) compileNode(nd *NodeDef, path string, g grid.Grid) (node.ID, error) {
	name := nd.Name
	if name == "" {
		name = path + ":" + nd.Type
	}
	fail := func(format string, args ...any) (node.ID, error) {
		return 0, &Error{Model: c.def.Name, Path: name, Message: fmt.Sprintf(format, args...)}
	}

	switch nd.Type {
	case "one", "all":
		if len(nd.Children) > 0 {
			return fail("rewriting nodes cannot have children")
		}
		if len(nd.Rules) == 0 {
			return fail("at least one rule is required")
		}
		group, err := symmetryGroup(nd.Symmetry, g)
		if err != nil {
			return fail("%v", err)
		}
		var rules []rule.Rule
		for i, rd := range nd.Rules {
			r, err := c.compileRule(rd, g)
			if err != nil {
				return fail("rule %d: %v", i, err)
			}
			rules = append(rules, r.WithAllSymmetries(group)...)
		}
		kind := node.KindOne
		if nd.Type == "all" {
			kind = node.KindAll
		}
		n := node.Node{Kind: kind, Name: name, Rules: rules, Limit: nd.Limit}
		c.template = append(c.template, n)
		return node.ID(len(c.template) - 1), nil

	case "markov", "sequence":
		if len(nd.Rules) > 0 {
			return fail("containers cannot have rules")
		}
		if len(nd.Children) == 0 {
			return fail("at least one child is required")
		}
		var children []node.ID
		for i, child := range nd.Children {
			id, err := c.compileNode(child, fmt.Sprintf("%s.%d", path, i), g)
			if err != nil {
				return 0, err
			}
			children = append(children, id)
		}
		kind := node.KindMarkov
		if nd.Type == "sequence" {
			kind = node.KindSequence
		}
		n := node.Node{Kind: kind, Name: name, Children: children}
		c.template = append(c.template, n)
		return node.ID(len(c.template) - 1), nil

	case "wfc":
		if len(nd.Children) > 0 || len(nd.Rules) > 0 {
			return fail("wfc nodes cannot have children or rules")
		}
		spec, err := c.compileWfcSpec(nd, g)
		if err != nil {
			return fail("%v", err)
		}
		policy := node.PolicyFail
		retries := 0
		switch nd.OnContradiction {
		case "", "fail":
		case "retry":
			policy = node.PolicyRetry
			retries = nd.Retries
			if retries == 0 {
				retries = 10
			}
		case "skip":
			policy = node.PolicySkip
		default:
			return fail("unknown on_contradiction %q", nd.OnContradiction)
		}
		n := node.Node{
			Kind:       node.KindWfc,
			Name:       name,
			Spec:       spec,
			Policy:     policy,
			MaxRetries: retries,
		}
		c.template = append(c.template, n)
		return node.ID(len(c.template) - 1), nil

	default:
		return fail("unknown node type %q", nd.Type)
	}
}

// compileRule resolves one rule definition's symbols and directions.
func (c *Compiled) compileRule(rd RuleDef, g grid.Grid) (rule.Rule, error) {
	kind := g.Dims().Kind
	center, err := c.symbolValue(rd.Center, true)
	if err != nil {
		return rule.Rule{}, fmt.Errorf("center: %w", err)
	}
	out, err := c.symbolValue(rd.Out, true)
	if err != nil {
		return rule.Rule{}, fmt.Errorf("out: %w", err)
	}
	p := rule.NewPattern(center)
	for ds, sym := range rd.Where {
		d, err := parseDirection(ds, kind)
		if err != nil {
			return rule.Rule{}, fmt.Errorf("where: %w", err)
		}
		if !validDirection(d, g) {
			return rule.Rule{}, fmt.Errorf("where: direction %q not valid on this grid", ds)
		}
		v, err := c.symbolValue(sym, false)
		if err != nil {
			return rule.Rule{}, fmt.Errorf("where[%s]: %w", ds, err)
		}
		p.Slots[d] = v
	}
	r := rule.New(p, out)
	for ds, sym := range rd.Write {
		d, err := parseDirection(ds, kind)
		if err != nil {
			return rule.Rule{}, fmt.Errorf("write: %w", err)
		}
		if !validDirection(d, g) {
			return rule.Rule{}, fmt.Errorf("write: direction %q not valid on this grid", ds)
		}
		v, err := c.symbolValue(sym, false)
		if err != nil {
			return rule.Rule{}, fmt.Errorf("write[%s]: %w", ds, err)
		}
		r.OutSlots[d] = v
	}
	return r, nil
}

// compileWfcSpec builds the constraint model for a wfc node.
func (c *Compiled) compileWfcSpec(nd *NodeDef, g grid.Grid) (*wfc.Spec, error) {
	switch nd.Model {
	case "tiled":
		if nd.Tiles == "" {
			return nil, fmt.Errorf("tiled model requires tiles")
		}
		var tiles []grid.Cell
		var weights []float64
		for i := 0; i < len(nd.Tiles); i++ {
			v, err := c.symbolValue(string(nd.Tiles[i]), false)
			if err != nil {
				return nil, fmt.Errorf("tiles: %w", err)
			}
			tiles = append(tiles, grid.Cell(v))
			w := 1.0
			if nd.Weights != nil {
				if ww, ok := nd.Weights[string(nd.Tiles[i])]; ok {
					w = ww
				}
			}
			weights = append(weights, w)
		}
		tileIndex := func(sym string) (int, error) {
			if len(sym) != 1 {
				return 0, fmt.Errorf("tile %q must be a single character", sym)
			}
			i := strings.IndexByte(nd.Tiles, sym[0])
			if i < 0 {
				return 0, fmt.Errorf("tile %q not in tiles %q", sym, nd.Tiles)
			}
			return i, nil
		}
		var adjacency []wfc.TileAdjacency
		for i, pair := range nd.Adjacent {
			if len(pair) != 2 && len(pair) != 3 {
				return nil, fmt.Errorf("adjacent[%d]: want [a, b] or [a, b, direction]", i)
			}
			a, err := tileIndex(pair[0])
			if err != nil {
				return nil, fmt.Errorf("adjacent[%d]: %w", i, err)
			}
			b, err := tileIndex(pair[1])
			if err != nil {
				return nil, fmt.Errorf("adjacent[%d]: %w", i, err)
			}
			adj := wfc.TileAdjacency{A: a, B: b}
			if len(pair) == 3 {
				d, err := parseDirection(pair[2], g.Dims().Kind)
				if err != nil {
					return nil, fmt.Errorf("adjacent[%d]: %w", i, err)
				}
				adj.Directions = []grid.Direction{d}
			}
			adjacency = append(adjacency, adj)
		}
		return wfc.TiledSpec(tiles, weights, adjacency)

	case "overlapping":
		dims := g.Dims()
		if dims.Kind != grid.KindEuclid || dims.Z != 1 {
			return nil, fmt.Errorf("overlapping model requires a 2D euclidean grid")
		}
		if len(nd.Sample) == 0 {
			return nil, fmt.Errorf("overlapping model requires a sample")
		}
		n := nd.N
		if n == 0 {
			n = 2
		}
		sample := make([][]grid.Cell, len(nd.Sample))
		for y, row := range nd.Sample {
			sample[y] = make([]grid.Cell, len(row))
			for x := 0; x < len(row); x++ {
				v, err := c.symbolValue(string(row[x]), false)
				if err != nil {
					return nil, fmt.Errorf("sample row %d: %w", y, err)
				}
				sample[y][x] = grid.Cell(v)
			}
		}
		fx := nd.Symmetry == "x" || nd.Symmetry == "xy" || nd.Symmetry == "all"
		fy := nd.Symmetry == "y" || nd.Symmetry == "xy" || nd.Symmetry == "all"
		return wfc.OverlapSpec(sample, n, nd.PeriodicSample, fx, fy)

	default:
		return nil, fmt.Errorf("unknown wfc model %q (want tiled or overlapping)", nd.Model)
	}
}
