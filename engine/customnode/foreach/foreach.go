// Package foreach implements the built-in "forEach" custom node described
// in SPEC_FULL.md §4.3, grounded directly on the original ForEach::run
// implementation: it requires a "value" parameter, invokes its continuation
// once per array element (binding each element under outputVar, in order),
// and flattens the resulting outputs.
package foreach

import (
	"context"
	"errors"
	"fmt"

	"github.com/BDNK1/scenarioengine/engine"
)

// ErrNoValueParam is returned when the "value" parameter is absent.
var ErrNoValueParam = errors.New("forEach: missing required parameter \"value\"")

// ErrWrongValueType is returned when "value" is present but not an array.
type ErrWrongValueType struct {
	Value engine.VarValue
}

func (e *ErrWrongValueType) Error() string {
	return fmt.Sprintf("forEach: parameter \"value\" must be an array, got %v", e.Value)
}

// Node implements engine.CustomNode for nodeType "forEach".
type Node struct{}

// New returns a forEach Node implementation.
func New() *Node { return &Node{} }

func (n *Node) Run(ctx context.Context, outputVar string, parameters map[string]engine.VarValue, input engine.VarContext, continuation engine.Interpreter) (engine.ScenarioOutput, error) {
	value, present := parameters["value"]
	if !present {
		return nil, ErrNoValueParam
	}
	elements, ok := value.([]any)
	if !ok {
		return nil, &ErrWrongValueType{Value: value}
	}

	outputs := make([]engine.ScenarioOutput, 0, len(elements))
	for _, element := range elements {
		out, err := continuation.Run(ctx, input.WithNewVar(outputVar, element))
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return engine.FlattenOutputs(outputs...), nil
}
