package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as deterministic text for golden comparison.
// The render comes last so diffs show the header before the grid body.
func Snapshot(res *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", res.Scenario)
	fmt.Fprintf(&b, "status: %s\n", res.Status)
	fmt.Fprintf(&b, "operations: %d\n", res.Operations)
	fmt.Fprintf(&b, "checksum: %016x\n", res.Checksum)
	b.WriteString("---\n")
	b.WriteString(res.Render)
	if !strings.HasSuffix(res.Render, "\n") {
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// CompareGolden asserts the result snapshot against testdata/golden.
// Update with `go test -update`.
func CompareGolden(t *testing.T, res *Result) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, res.Scenario, Snapshot(res))
}
