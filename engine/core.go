// Package engine implements the scenario compile-and-interpret core: a
// variable-context model, a pluggable expression engine, the custom-node
// extension contract, the compiler, and the resulting interpreter tree.
package engine

import (
	"regexp"
	"sort"
)

// VarValue is a dynamic, JSON-compatible value: nil, bool, a number, string,
// []any, or map[string]any. Numbers decoded from JSON input are float64;
// expression languages may return other numeric types (e.g. int64). Variable
// types are never tracked; only presence of a name is checked at compile time.
type VarValue = any

var varNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidVarName reports whether name matches the identifier pattern required
// of every bound variable name.
func ValidVarName(name string) bool {
	return varNamePattern.MatchString(name)
}

// DefaultInputName is the variable name seeded by the Source node.
const DefaultInputName = "input"

// VarContext is the runtime name→value mapping threaded through a single
// invocation. Values are stored behind the map itself rather than boxed in
// an explicit reference-counted handle: Go maps already give WithNewVar the
// cheap, copy-on-write-free semantics the spec asks for, since the
// underlying VarValue payloads are never mutated in place, only replaced.
type VarContext struct {
	vars map[string]VarValue
}

// EmptyVarContext returns a VarContext with no bindings.
func EmptyVarContext() VarContext {
	return VarContext{vars: map[string]VarValue{}}
}

// DefaultContextForValue seeds a VarContext with the default input name
// bound to v.
func DefaultContextForValue(v VarValue) VarContext {
	return EmptyVarContext().WithNewVar(DefaultInputName, v)
}

// WithNewVar returns a new VarContext with name bound to v. The receiver is
// left unchanged: sibling branches that each call WithNewVar from the same
// parent context never observe each other's binding.
func (c VarContext) WithNewVar(name string, v VarValue) VarContext {
	next := make(map[string]VarValue, len(c.vars)+1)
	for k, val := range c.vars {
		next[k] = val
	}
	next[name] = v
	return VarContext{vars: next}
}

// ToExternalForm returns a plain name→value map suitable for serialisation
// or for feeding an expression host. The returned map is a fresh copy; the
// caller may mutate it freely without affecting c.
func (c VarContext) ToExternalForm() map[string]VarValue {
	out := make(map[string]VarValue, len(c.vars))
	for k, v := range c.vars {
		out[k] = v
	}
	return out
}

// CompilationVarContext is the compile-time set of variable names in scope
// at a given point in the node sequence.
type CompilationVarContext struct {
	names map[string]struct{}
}

// DefaultCompilationVarContext seeds a CompilationVarContext with the
// default input name, as produced by a Source node.
func DefaultCompilationVarContext() CompilationVarContext {
	return CompilationVarContext{names: map[string]struct{}{DefaultInputName: {}}}
}

// Has reports whether name is in scope.
func (c CompilationVarContext) Has(name string) bool {
	_, ok := c.names[name]
	return ok
}

// Names returns the in-scope variable names in sorted order.
func (c CompilationVarContext) Names() []string {
	names := make([]string, 0, len(c.names))
	for n := range c.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithVar returns a CompilationVarContext extended with name, or an
// IncorrectVariableName CompilationError if name is not a valid identifier.
// Idempotent: re-adding an already-present name is not an error.
func (c CompilationVarContext) WithVar(nodeID, name string) (CompilationVarContext, error) {
	if !ValidVarName(name) {
		return CompilationVarContext{}, ErrIncorrectVariableName(nodeID, name)
	}
	next := make(map[string]struct{}, len(c.names)+1)
	for k := range c.names {
		next[k] = struct{}{}
	}
	next[name] = struct{}{}
	return CompilationVarContext{names: next}, nil
}

// SingleScenarioOutput is one emitted record, labelled by the sink that
// produced it.
type SingleScenarioOutput struct {
	NodeID    string               `json:"nodeId"`
	Variables map[string]VarValue `json:"variables"`
}

// ScenarioOutput is the ordered, possibly-empty list of records produced by
// a single Run.
type ScenarioOutput []SingleScenarioOutput

// FlattenOutputs concatenates a sequence of ScenarioOutput values in order,
// as required by Split's fan-out semantics and by any custom node that
// invokes its continuation more than once.
func FlattenOutputs(outputs ...ScenarioOutput) ScenarioOutput {
	total := 0
	for _, o := range outputs {
		total += len(o)
	}
	flat := make(ScenarioOutput, 0, total)
	for _, o := range outputs {
		flat = append(flat, o...)
	}
	return flat
}
