package engine

import "context"

// Interpreter is a compiled, executable step of a scenario branch. It is the
// main API surface of this package: compiling a scenario produces one, and
// running it against a VarContext produces a ScenarioOutput.
type Interpreter interface {
	Run(ctx context.Context, vars VarContext) (ScenarioOutput, error)
}

// CustomNode is the extension contract for a pluggable operator. It
// receives its already-evaluated parameters, the untouched inbound context,
// and the compiled continuation, and decides how many times (zero or more)
// to invoke the continuation, and with what value bound under outputVar
// each time. Returned outputs are concatenated in invocation order.
type CustomNode interface {
	Run(ctx context.Context, outputVar string, parameters map[string]VarValue, input VarContext, continuation Interpreter) (ScenarioOutput, error)
}

// CustomNodeRegistry maps a nodeType name to its CustomNode implementation.
type CustomNodeRegistry struct {
	nodes map[string]CustomNode
}

// NewCustomNodeRegistry returns a CustomNodeRegistry with no nodes registered.
func NewCustomNodeRegistry() *CustomNodeRegistry {
	return &CustomNodeRegistry{nodes: map[string]CustomNode{}}
}

// Register adds or replaces the implementation for a nodeType.
func (r *CustomNodeRegistry) Register(nodeType string, node CustomNode) {
	r.nodes[nodeType] = node
}

// Lookup resolves nodeType to its implementation.
func (r *CustomNodeRegistry) Lookup(nodeType string) (CustomNode, bool) {
	n, ok := r.nodes[nodeType]
	return n, ok
}
