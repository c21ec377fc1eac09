package compiler

import (
	"context"

	"github.com/BDNK1/scenarioengine/engine"
	"github.com/BDNK1/scenarioengine/engine/scenario"
)

// splitInterpreter runs every branch independently against the same
// inbound context and concatenates their outputs, preserving declaration
// order. Branches run sequentially: a faithful, easily-audited baseline
// that still satisfies the ordering and isolation constraints that would
// also permit a parallel implementation (SPEC_FULL.md §5).
type splitInterpreter struct {
	nodeID   string
	branches []engine.Interpreter
}

func (s *splitInterpreter) Run(ctx context.Context, vars engine.VarContext) (engine.ScenarioOutput, error) {
	outputs := make([]engine.ScenarioOutput, 0, len(s.branches))
	for _, b := range s.branches {
		out, err := b.Run(ctx, vars)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return engine.FlattenOutputs(outputs...), nil
}

// compileSplit is terminal in its enclosing sequence; every sub-branch is
// compiled independently against the same inbound scope.
func (c *Compiler) compileSplit(node scenario.Node, rest []scenario.Node, scope engine.CompilationVarContext) (engine.Interpreter, error) {
	if err := requireTerminal(node.ID, rest); err != nil {
		return nil, err
	}
	branches := make([]engine.Interpreter, 0, len(node.Branches))
	for _, b := range node.Branches {
		compiled, err := c.compileNext(node.ID, b, scope)
		if err != nil {
			return nil, err
		}
		branches = append(branches, compiled)
	}
	return &splitInterpreter{nodeID: node.ID, branches: branches}, nil
}
