package model

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

// Error is a load-time validation error: malformed structure, unknown
// symbols, inconsistent dimensions. It is fatal to the model load and
// reported once, at compile time.
type Error struct {
	Model   string // model name when known
	Path    string // node path or field, when known
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Model != "" && e.Path != "":
		return fmt.Sprintf("model %q: %s: %s", e.Model, e.Path, e.Message)
	case e.Path != "":
		return fmt.Sprintf("model: %s: %s", e.Path, e.Message)
	default:
		return fmt.Sprintf("model: %s", e.Message)
	}
}

// validateSchema checks the raw YAML document against the embedded CUE
// schema before any decoding into Go types.
func validateSchema(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("internal: compile model schema: %w", err)
	}
	modelSchema := schema.LookupPath(cue.ParsePath("#Model"))
	if err := modelSchema.Err(); err != nil {
		return fmt.Errorf("internal: model schema missing #Model: %w", err)
	}

	file, err := cueyaml.Extract("model.yaml", data)
	if err != nil {
		return &Error{Message: fmt.Sprintf("parse yaml: %v", err)}
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return &Error{Message: cueerrors.Details(err, nil)}
	}

	unified := modelSchema.Unify(doc)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return &Error{Message: cueerrors.Details(err, nil)}
	}
	return nil
}
