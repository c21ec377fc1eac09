// Package exprlang implements a second built-in expression language, "expr",
// on top of github.com/expr-lang/expr — exercising the LanguageParser
// registry's multi-language design (SPEC_FULL.md §4.2) alongside the
// default javascript adapter. Unlike the javascript adapter, the compiled
// *vm.Program this library produces is safe to Run concurrently with no
// pooling: expr's VM carries no mutable state between calls.
package exprlang

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/BDNK1/scenarioengine/engine"
)

// Parser implements engine.Parser for the "expr" language.
type Parser struct{}

// New returns a Parser for the "expr" language.
func New() *Parser { return &Parser{} }

// Parse compiles text against an environment that merely declares the
// in-scope names as nil interface{} values, then allows undefined
// variables, matching the contract that referring to an unknown name at
// parse time is a host decision rather than a compile error.
func (p *Parser) Parse(text string, compileCtx engine.CompilationVarContext) (engine.CompiledExpression, error) {
	env := make(map[string]any, len(compileCtx.Names()))
	for _, name := range compileCtx.Names() {
		env[name] = nil
	}
	program, err := expr.Compile(text, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling expr expression: %w", err)
	}
	return &compiledExpression{program: program}, nil
}

type compiledExpression struct {
	program *vm.Program
}

// Execute runs the compiled program against the context's external form.
func (c *compiledExpression) Execute(ctx context.Context, vars engine.VarContext) (engine.VarValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error before expr execution: %w", err)
	}
	result, err := expr.Run(c.program, vars.ToExternalForm())
	if err != nil {
		return nil, fmt.Errorf("executing expr expression: %w", err)
	}
	return result, nil
}
