// Package risor adapts the Risor scripting language (github.com/risor-io/risor)
// as an engine.Parser. Risor expressions see scope variables as native
// globals rather than fields on an argument map, so unlike the javascript
// adapter there is no source-wrapping step: the expression text is kept
// as-is and scope variables are injected as globals at execution time.
package risor

import (
	"context"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/BDNK1/scenarioengine/engine"
)

// Parser defers all validation to execution time: risor.Eval is the only
// entry point this library exposes, and it both parses and runs in one
// call, so there is no separate compile-once/run-many step the way goja's
// bytecode cache gives the javascript adapter, and no way to check syntax
// without also needing real variable values to run against.
type Parser struct{}

// New constructs a risor Parser.
func New() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(exprText string, _ engine.CompilationVarContext) (engine.CompiledExpression, error) {
	return &compiledExpression{source: exprText}, nil
}

type compiledExpression struct {
	source string
}

// Execute runs the expression with the scope's variables injected as Risor
// globals. Risor's own default globals (os, exec, file builtins) are
// withheld; only the scenario's own variables are visible to the expression.
func (c *compiledExpression) Execute(ctx context.Context, vars engine.VarContext) (engine.VarValue, error) {
	globals := vars.ToExternalForm()

	result, err := risor.Eval(ctx, c.source,
		risor.WithoutDefaultGlobals(),
		risor.WithGlobals(globals),
	)
	if err != nil {
		return nil, err
	}
	return objectToGo(result), nil
}

// objectToGo recursively converts a Risor object.Object back to a native Go
// value, so downstream code (sinks, other expressions) sees plain maps and
// slices rather than Risor's internal object types.
func objectToGo(obj object.Object) any {
	if obj == nil {
		return nil
	}
	switch o := obj.(type) {
	case *object.Map:
		goMap := make(map[string]any, len(o.Value()))
		for k, v := range o.Value() {
			goMap[k] = objectToGo(v)
		}
		return goMap
	case *object.List:
		items := o.Value()
		goSlice := make([]any, len(items))
		for i, v := range items {
			goSlice[i] = objectToGo(v)
		}
		return goSlice
	case *object.NilType:
		return nil
	default:
		return obj.Interface()
	}
}
