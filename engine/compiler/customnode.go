package compiler

import (
	"context"

	"github.com/BDNK1/scenarioengine/engine"
	"github.com/BDNK1/scenarioengine/engine/scenario"
)

// customNodeInterpreter evaluates its parameter expressions on the inbound
// context, then delegates the decision of how many times (if any) to invoke
// the continuation to the resolved CustomNode implementation.
type customNodeInterpreter struct {
	nodeID     string
	outputVar  string
	paramExprs map[string]engine.CompiledExpression
	impl       engine.CustomNode
	next       engine.Interpreter
}

func (n *customNodeInterpreter) Run(ctx context.Context, vars engine.VarContext) (engine.ScenarioOutput, error) {
	params := make(map[string]engine.VarValue, len(n.paramExprs))
	for name, expr := range n.paramExprs {
		value, err := expr.Execute(ctx, vars)
		if err != nil {
			return nil, engine.ErrExpressionError(n.nodeID, err)
		}
		params[name] = value
	}
	out, err := n.impl.Run(ctx, n.outputVar, params, vars, n.next)
	if err != nil {
		// Errors surfacing from the continuation are already
		// engine.RuntimeError values; propagate those unchanged instead
		// of double-wrapping them as a CustomNodeError that didn't
		// originate with this node.
		if _, already := err.(*engine.RuntimeError); already {
			return nil, err
		}
		return nil, engine.ErrCustomNodeError(n.nodeID, err)
	}
	return out, nil
}

// compileCustomNode resolves nodeType in the registry, parses every
// parameter expression in scope, and compiles the continuation in scope
// extended with outputVar.
func (c *Compiler) compileCustomNode(node scenario.Node, rest []scenario.Node, scope engine.CompilationVarContext) (engine.Interpreter, error) {
	impl, ok := c.customNodes.Lookup(node.NodeType)
	if !ok {
		return nil, engine.ErrUnknownCustomNode(node.ID, node.NodeType)
	}
	paramExprs := make(map[string]engine.CompiledExpression, len(node.Parameters))
	for _, p := range node.Parameters {
		compiled, err := c.parseExpression(node.ID, p.Expression, scope)
		if err != nil {
			return nil, err
		}
		paramExprs[p.Name] = compiled
	}
	extended, err := scope.WithVar(node.ID, node.OutputVar)
	if err != nil {
		return nil, err
	}
	next, err := c.compileNext(node.ID, rest, extended)
	if err != nil {
		return nil, err
	}
	return &customNodeInterpreter{
		nodeID:     node.ID,
		outputVar:  node.OutputVar,
		paramExprs: paramExprs,
		impl:       impl,
		next:       next,
	}, nil
}
