package compiler

import (
	"context"

	"github.com/BDNK1/scenarioengine/engine"
	"github.com/BDNK1/scenarioengine/engine/scenario"
)

// variableInterpreter evaluates its value expression, binds it under
// varName, and delegates to the continuation with the extended context.
type variableInterpreter struct {
	nodeID  string
	varName string
	value   engine.CompiledExpression
	next    engine.Interpreter
}

func (v *variableInterpreter) Run(ctx context.Context, vars engine.VarContext) (engine.ScenarioOutput, error) {
	result, err := v.value.Execute(ctx, vars)
	if err != nil {
		return nil, engine.ErrExpressionError(v.nodeID, err)
	}
	return v.next.Run(ctx, vars.WithNewVar(v.varName, result))
}

// compileVariable parses the value expression in scope, then compiles the
// remaining nodes in scope extended with the bound variable name.
func (c *Compiler) compileVariable(node scenario.Node, rest []scenario.Node, scope engine.CompilationVarContext) (engine.Interpreter, error) {
	value, err := c.parseExpression(node.ID, node.VariableValue(), scope)
	if err != nil {
		return nil, err
	}
	extended, err := scope.WithVar(node.ID, node.VarName)
	if err != nil {
		return nil, err
	}
	next, err := c.compileNext(node.ID, rest, extended)
	if err != nil {
		return nil, err
	}
	return &variableInterpreter{nodeID: node.ID, varName: node.VarName, value: value, next: next}, nil
}
