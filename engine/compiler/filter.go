package compiler

import (
	"context"

	"github.com/BDNK1/scenarioengine/engine"
	"github.com/BDNK1/scenarioengine/engine/scenario"
)

// filterInterpreter runs its continuation only when the predicate evaluates
// to true; a false predicate yields empty output, and a non-boolean
// predicate is a runtime error.
type filterInterpreter struct {
	nodeID    string
	predicate engine.CompiledExpression
	next      engine.Interpreter
}

func (f *filterInterpreter) Run(ctx context.Context, vars engine.VarContext) (engine.ScenarioOutput, error) {
	result, err := f.predicate.Execute(ctx, vars)
	if err != nil {
		return nil, engine.ErrExpressionError(f.nodeID, err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return nil, engine.ErrInvalidSwitchType(f.nodeID, result)
	}
	if !ok {
		return engine.ScenarioOutput{}, nil
	}
	return f.next.Run(ctx, vars)
}

// compileFilter parses the predicate in scope, then compiles the remaining
// nodes in the same scope (a Filter does not bind a new variable).
func (c *Compiler) compileFilter(node scenario.Node, rest []scenario.Node, scope engine.CompilationVarContext) (engine.Interpreter, error) {
	predicate, err := c.parseExpression(node.ID, node.Expression, scope)
	if err != nil {
		return nil, err
	}
	next, err := c.compileNext(node.ID, rest, scope)
	if err != nil {
		return nil, err
	}
	return &filterInterpreter{nodeID: node.ID, predicate: predicate, next: next}, nil
}
