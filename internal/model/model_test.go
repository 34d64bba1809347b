package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/grid"
	"github.com/roach88/tessera/internal/interp"
)

const fillModel = `
name: fill
grid:
  kind: euclidean
  width: 4
  height: 4
alphabet: AB
root:
  type: one
  rules:
    - center: A
      out: B
`

// TestParse_Valid decodes a minimal model.
func TestParse_Valid(t *testing.T) {
	def, err := Parse([]byte(fillModel))
	require.NoError(t, err)
	assert.Equal(t, "fill", def.Name)
	assert.Equal(t, "euclidean", def.Grid.Kind)
	assert.Equal(t, "AB", def.Alphabet)
	require.NotNil(t, def.Root)
	assert.Equal(t, "one", def.Root.Type)
	require.Len(t, def.Root.Rules, 1)
	assert.Equal(t, "A", def.Root.Rules[0].Center)
}

// TestParse_SchemaRejectsUnknownNodeType: structural errors surface as
// typed model errors before any decoding.
func TestParse_SchemaRejectsUnknownNodeType(t *testing.T) {
	src := `
name: bad
grid:
  kind: euclidean
  width: 2
  height: 2
alphabet: AB
root:
  type: spiral
`
	_, err := Parse([]byte(src))
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
}

// TestParse_SchemaRejectsBadGridKind covers enum validation.
func TestParse_SchemaRejectsBadGridKind(t *testing.T) {
	src := `
name: bad
grid:
  kind: hexagonal
  width: 2
  height: 2
alphabet: AB
root:
  type: one
  rules:
    - center: A
      out: B
`
	_, err := Parse([]byte(src))
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
}

// TestParse_SchemaRejectsBadDirection: where keys are checked against
// the direction vocabulary.
func TestParse_SchemaRejectsBadDirection(t *testing.T) {
	src := `
name: bad
grid:
  kind: euclidean
  width: 2
  height: 2
alphabet: AB
root:
  type: one
  rules:
    - center: A
      out: B
      where:
        northwest: B
`
	_, err := Parse([]byte(src))
	require.Error(t, err)
}

// TestParse_MalformedYAML reports a parse error, not a panic.
func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("name: [unclosed"))
	require.Error(t, err)
}

// TestCompile_HashStable: the hash pins exact bytes.
func TestCompile_HashStable(t *testing.T) {
	a, err := Compile([]byte(fillModel))
	require.NoError(t, err)
	b, err := Compile([]byte(fillModel))
	require.NoError(t, err)
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Len(t, a.Hash(), 16)

	c, err := Compile([]byte(fillModel + "\n# trailing comment\n"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash(), c.Hash())
}

// TestCompile_RejectsUnknownSymbol: rule symbols must be in the
// alphabet.
func TestCompile_RejectsUnknownSymbol(t *testing.T) {
	src := `
name: bad
grid:
  kind: euclidean
  width: 2
  height: 2
alphabet: AB
root:
  type: one
  rules:
    - center: Z
      out: B
`
	_, err := Compile([]byte(src))
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Contains(t, merr.Message, "alphabet")
}

// TestCompile_RejectsDuplicateAlphabet catches repeated symbols.
func TestCompile_RejectsDuplicateAlphabet(t *testing.T) {
	src := `
name: bad
grid:
  kind: euclidean
  width: 2
  height: 2
alphabet: ABA
root:
  type: one
  rules:
    - center: A
      out: B
`
	_, err := Compile([]byte(src))
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "alphabet", merr.Path)
}

// TestCompile_RejectsSeedOutOfRange validates preset coordinates
// against the declared grid.
func TestCompile_RejectsSeedOutOfRange(t *testing.T) {
	src := `
name: bad
grid:
  kind: euclidean
  width: 2
  height: 2
alphabet: AB
seed:
  - {x: 5, y: 0, value: B}
root:
  type: one
  rules:
    - center: A
      out: B
`
	_, err := Compile([]byte(src))
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	assert.Contains(t, merr.Path, "seed[0]")
}

// TestCompile_RejectsContainerWithRules: graph shape errors carry the
// node path.
func TestCompile_RejectsContainerWithRules(t *testing.T) {
	src := `
name: bad
grid:
  kind: euclidean
  width: 2
  height: 2
alphabet: AB
root:
  type: markov
  rules:
    - center: A
      out: B
`
	_, err := Compile([]byte(src))
	require.Error(t, err)
}

// TestCompile_RejectsEuclidDirectionOnPolar: z directions are invalid
// on a 2D radial grid.
func TestCompile_RejectsEuclidDirectionOnPolar(t *testing.T) {
	src := `
name: bad
grid:
  kind: polar
  rings: 4
alphabet: AB
root:
  type: one
  rules:
    - center: A
      out: B
      where:
        z+: B
`
	_, err := Compile([]byte(src))
	require.Error(t, err)
}

// TestCompile_PolarAliases: in/out/prev/next resolve on polar grids.
func TestCompile_PolarAliases(t *testing.T) {
	src := `
name: aliases
grid:
  kind: polar
  rings: 4
alphabet: AB
root:
  type: one
  rules:
    - center: A
      out: B
      where:
        in: B
        next: A
`
	_, err := Compile([]byte(src))
	require.NoError(t, err)

	// The same aliases are rejected on euclidean grids.
	bad := `
name: aliases
grid:
  kind: euclidean
  width: 2
  height: 2
alphabet: AB
root:
  type: one
  rules:
    - center: A
      out: B
      where:
        in: B
`
	_, err = Compile([]byte(bad))
	require.Error(t, err)
}

// TestCompile_SphereAliases: down/up map to latitude, prev/next to the
// angular axis.
func TestCompile_SphereAliases(t *testing.T) {
	src := `
name: sphere-aliases
grid:
  kind: spherical
  rings: 2
alphabet: AB
root:
  type: one
  rules:
    - center: A
      out: B
      where:
        down: A
        up: A
        prev: A
        next: A
`
	_, err := Compile([]byte(src))
	require.NoError(t, err)
}

// TestCompiled_NewInterpreter_AppliesSeed presets cells before the
// first step.
func TestCompiled_NewInterpreter_AppliesSeed(t *testing.T) {
	src := `
name: seeded
grid:
  kind: euclidean
  width: 3
  height: 3
alphabet: AB
seed:
  - {x: 1, y: 1, value: B}
root:
  type: one
  rules:
    - center: B
      out: B
`
	c, err := Compile([]byte(src))
	require.NoError(t, err)
	in, err := c.NewInterpreter(1)
	require.NoError(t, err)

	g := in.Grid()
	assert.Equal(t, byte('B'), c.Symbol(g.Get(grid.Coords{X: 1, Y: 1})))
	assert.Equal(t, byte('A'), c.Symbol(g.Get(grid.Coords{X: 0, Y: 0})))
}

// TestCompiled_IndependentInterpreters: one Compiled mints isolated
// instances.
func TestCompiled_IndependentInterpreters(t *testing.T) {
	c, err := Compile([]byte(fillModel))
	require.NoError(t, err)

	a, err := c.NewInterpreter(1)
	require.NoError(t, err)
	b, err := c.NewInterpreter(1)
	require.NoError(t, err)

	a.StepN(5)
	assert.Equal(t, 0, b.TotalOperations(), "instances share no state")

	a.StepN(100000)
	b.StepN(100000)
	assert.Equal(t, a.Grid().Checksum(), b.Grid().Checksum(), "same seed, same result")
}

// TestCompile_WfcTiled compiles a tiled constraint node and runs it.
func TestCompile_WfcTiled(t *testing.T) {
	src := `
name: checker
grid:
  kind: euclidean
  width: 4
  height: 4
alphabet: ABC
root:
  type: wfc
  model: tiled
  tiles: BC
  weights:
    B: 1
    C: 1
  adjacent:
    - [B, C]
`
	c, err := Compile([]byte(src))
	require.NoError(t, err)
	in, err := c.NewInterpreter(8)
	require.NoError(t, err)

	res := in.StepN(100000)
	require.Equal(t, interp.Complete, res.Kind)
	g := in.Grid()
	for i := 0; i < g.Len(); i++ {
		require.NotEqual(t, byte('A'), c.Symbol(g.Get(g.At(i))))
	}
}

// TestCompile_WfcTiledPolar runs a tiled constraint node over the
// irregular radial adjacency of a polar grid.
func TestCompile_WfcTiledPolar(t *testing.T) {
	src := `
name: rings
grid:
  kind: polar
  rings: 4
alphabet: ABC
root:
  type: wfc
  model: tiled
  tiles: BC
  adjacent:
    - [B, B]
    - [C, C]
    - [B, C]
`
	c, err := Compile([]byte(src))
	require.NoError(t, err)
	in, err := c.NewInterpreter(13)
	require.NoError(t, err)

	res := in.StepN(100000)
	require.Equal(t, interp.Complete, res.Kind)
	g := in.Grid()
	for i := 0; i < g.Len(); i++ {
		require.NotEqual(t, byte('A'), c.Symbol(g.Get(g.At(i))))
	}
}

// TestCompile_WfcOverlappingRequires2D rejects radial grids.
func TestCompile_WfcOverlappingRequires2D(t *testing.T) {
	src := `
name: bad
grid:
  kind: polar
  rings: 3
alphabet: AB
root:
  type: wfc
  model: overlapping
  sample:
    - AB
    - BA
`
	_, err := Compile([]byte(src))
	require.Error(t, err)
}
