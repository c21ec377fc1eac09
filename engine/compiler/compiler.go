// Package compiler lowers a parsed scenario.Scenario into a tree of
// engine.Interpreter values, one per node kind, each owning its
// continuation. This mirrors the shape of compile_next/compile_next_node in
// the original rusty-nussknacker compiler, adapted to a receiver method
// instead of a closure-threaded free function.
package compiler

import (
	"github.com/BDNK1/scenarioengine/engine"
	"github.com/BDNK1/scenarioengine/engine/scenario"
)

// Compiler walks a scenario's node sequence and produces an engine.Interpreter.
type Compiler struct {
	languages   *engine.LanguageParser
	customNodes *engine.CustomNodeRegistry
}

// New returns a Compiler with the given language and custom-node registries.
// Pass the same registries used elsewhere to register additional languages
// or custom node types before compiling (SPEC_FULL.md §6's "configurable
// registries").
func New(languages *engine.LanguageParser, customNodes *engine.CustomNodeRegistry) *Compiler {
	return &Compiler{languages: languages, customNodes: customNodes}
}

// Compile validates and lowers s into an executable Interpreter tree.
func (c *Compiler) Compile(s scenario.Scenario) (engine.Interpreter, error) {
	if len(s.Nodes) == 0 {
		return nil, engine.ErrEmptyScenario()
	}
	first := s.Nodes[0]
	if first.Type != scenario.KindSource {
		return nil, engine.ErrFirstNodeNotSource(first.ID)
	}
	return c.compileNext(first.ID, s.Nodes[1:], engine.DefaultCompilationVarContext())
}

// compileNext compiles the sequence of nodes following prevID, in scope.
// An empty sequence is a compile error: every branch must reach a terminal.
func (c *Compiler) compileNext(prevID string, nodes []scenario.Node, scope engine.CompilationVarContext) (engine.Interpreter, error) {
	if len(nodes) == 0 {
		return nil, engine.ErrInvalidEnd(prevID)
	}
	node := nodes[0]
	rest := nodes[1:]

	switch node.Type {
	case scenario.KindFilter:
		return c.compileFilter(node, rest, scope)
	case scenario.KindVariable:
		return c.compileVariable(node, rest, scope)
	case scenario.KindSwitch:
		return c.compileSwitch(node, rest, scope)
	case scenario.KindSplit:
		return c.compileSplit(node, rest, scope)
	case scenario.KindSink:
		return c.compileSink(node, rest)
	case scenario.KindCustomNode:
		return c.compileCustomNode(node, rest, scope)
	default:
		return nil, engine.ErrUnknownNode(node.ID)
	}
}

// requireTerminal returns NodesAfterEndingNode if rest is non-empty, as
// required for nodes following Switch, Split, or Sink.
func requireTerminal(nodeID string, rest []scenario.Node) error {
	if len(rest) > 0 {
		return engine.ErrNodesAfterEndingNode(nodeID, len(rest))
	}
	return nil
}

func (c *Compiler) parseExpression(nodeID string, expr scenario.Expression, scope engine.CompilationVarContext) (engine.CompiledExpression, error) {
	return c.languages.Parse(nodeID, engine.Expression{Language: expr.Language, Expression: expr.Expression}, scope)
}
