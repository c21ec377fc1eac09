package compiler

import (
	"context"

	"github.com/BDNK1/scenarioengine/engine"
	"github.com/BDNK1/scenarioengine/engine/scenario"
)

// compiledCase pairs a compiled predicate with its compiled sub-branch.
type compiledCase struct {
	predicate engine.CompiledExpression
	branch    engine.Interpreter
}

// switchInterpreter evaluates cases in declaration order and runs the
// sub-interpreter of the first one whose predicate is true, on the
// unchanged inbound context. If none match, output is empty.
type switchInterpreter struct {
	nodeID string
	cases  []compiledCase
}

func (s *switchInterpreter) Run(ctx context.Context, vars engine.VarContext) (engine.ScenarioOutput, error) {
	for _, c := range s.cases {
		result, err := c.predicate.Execute(ctx, vars)
		if err != nil {
			return nil, engine.ErrExpressionError(s.nodeID, err)
		}
		matched, isBool := result.(bool)
		if !isBool {
			return nil, engine.ErrInvalidSwitchType(s.nodeID, result)
		}
		if matched {
			return c.branch.Run(ctx, vars)
		}
	}
	return engine.ScenarioOutput{}, nil
}

// compileSwitch is terminal in its enclosing sequence: every Case's
// predicate is parsed in scope, and its sub-nodes compiled independently in
// the same scope.
func (c *Compiler) compileSwitch(node scenario.Node, rest []scenario.Node, scope engine.CompilationVarContext) (engine.Interpreter, error) {
	if err := requireTerminal(node.ID, rest); err != nil {
		return nil, err
	}
	cases := make([]compiledCase, 0, len(node.Nexts))
	for _, wc := range node.Nexts {
		predicate, err := c.parseExpression(node.ID, wc.Expression, scope)
		if err != nil {
			return nil, err
		}
		branch, err := c.compileNext(node.ID, wc.Nodes, scope)
		if err != nil {
			return nil, err
		}
		cases = append(cases, compiledCase{predicate: predicate, branch: branch})
	}
	return &switchInterpreter{nodeID: node.ID, cases: cases}, nil
}
