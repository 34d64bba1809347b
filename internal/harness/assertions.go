package harness

import (
	"fmt"
	"strings"
)

// Assertion is one property of the final grid. Type selects the check:
//
//	symbol_count    the symbol occurs exactly Count times
//	symbol_min      the symbol occurs at least Count times
//	no_empty_cells  no cell holds the first alphabet symbol
//	checksum        the final checksum equals Checksum (hex)
//	render_contains the rendered grid contains Text
type Assertion struct {
	Type     string `yaml:"type"`
	Symbol   string `yaml:"symbol,omitempty"`
	Count    int    `yaml:"count,omitempty"`
	Checksum string `yaml:"checksum,omitempty"`
	Text     string `yaml:"text,omitempty"`
}

func (a Assertion) validate() error {
	switch a.Type {
	case "symbol_count", "symbol_min":
		if len(a.Symbol) != 1 {
			return fmt.Errorf("%s needs a single-character symbol", a.Type)
		}
	case "no_empty_cells":
	case "checksum":
		if a.Checksum == "" {
			return fmt.Errorf("checksum assertion needs a checksum value")
		}
	case "render_contains":
		if a.Text == "" {
			return fmt.Errorf("render_contains assertion needs text")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// AssertionError reports one failed assertion with the final render
// attached for debugging.
type AssertionError struct {
	Scenario string
	Type     string
	Expected string
	Actual   string
	Render   string
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s: assertion %s failed\n", e.Scenario, e.Type)
	fmt.Fprintf(&b, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&b, "  actual:   %s\n", e.Actual)
	fmt.Fprintf(&b, "final grid:\n%s", e.Render)
	return b.String()
}

// evaluate checks a single assertion against a finished run.
func (a Assertion) evaluate(sc *Scenario, res *Result) error {
	fail := func(expected, actual string) error {
		return &AssertionError{
			Scenario: sc.Name,
			Type:     a.Type,
			Expected: expected,
			Actual:   actual,
			Render:   res.Render,
		}
	}

	switch a.Type {
	case "symbol_count":
		n := res.SymbolCounts[a.Symbol[0]]
		if n != a.Count {
			return fail(
				fmt.Sprintf("%d cells of %q", a.Count, a.Symbol),
				fmt.Sprintf("%d cells", n),
			)
		}
	case "symbol_min":
		n := res.SymbolCounts[a.Symbol[0]]
		if n < a.Count {
			return fail(
				fmt.Sprintf("at least %d cells of %q", a.Count, a.Symbol),
				fmt.Sprintf("%d cells", n),
			)
		}
	case "no_empty_cells":
		empty := res.SymbolCounts[res.EmptySymbol]
		if empty != 0 {
			return fail("no empty cells", fmt.Sprintf("%d empty cells", empty))
		}
	case "checksum":
		actual := fmt.Sprintf("%016x", res.Checksum)
		if actual != a.Checksum {
			return fail(a.Checksum, actual)
		}
	case "render_contains":
		if !strings.Contains(res.Render, a.Text) {
			return fail(fmt.Sprintf("render containing %q", a.Text), "not found")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
