package compiler

import (
	"context"

	"github.com/BDNK1/scenarioengine/engine"
	"github.com/BDNK1/scenarioengine/engine/scenario"
)

// sinkInterpreter emits a single record labelled by the sink's node ID.
type sinkInterpreter struct {
	nodeID string
}

func (s *sinkInterpreter) Run(_ context.Context, vars engine.VarContext) (engine.ScenarioOutput, error) {
	return engine.ScenarioOutput{{
		NodeID:    s.nodeID,
		Variables: vars.ToExternalForm(),
	}}, nil
}

// compileSink requires the sink to be a leaf: no further nodes may follow it
// in the enclosing sequence.
func (c *Compiler) compileSink(node scenario.Node, rest []scenario.Node) (engine.Interpreter, error) {
	if err := requireTerminal(node.ID, rest); err != nil {
		return nil, err
	}
	return &sinkInterpreter{nodeID: node.ID}, nil
}
