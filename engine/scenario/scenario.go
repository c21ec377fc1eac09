// Package scenario parses the scenario wire format (see SPEC_FULL.md §6)
// into an in-memory value the compiler consumes. It does no validation
// beyond JSON shape; semantic validation (Source-first, terminal sequencing,
// variable naming, unknown node/language names) is the compiler's job.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
)

// MetaData carries the scenario's opaque identifier.
type MetaData struct {
	ID string `json:"id"`
}

// Expression is a (language, expression text) pair.
type Expression struct {
	Language   string `json:"language"`
	Expression string `json:"expression"`
}

// Parameter is a named expression, as passed to a CustomNode.
type Parameter struct {
	Name       string     `json:"name"`
	Expression Expression `json:"expression"`
}

// Case is one branch of a Switch: a guarding predicate and the nodes to run
// when it is the first to evaluate true.
type Case struct {
	Expression Expression `json:"expression"`
	Nodes      []Node     `json:"nodes"`
}

// NodeKind is the tagged "type" discriminator on the wire.
type NodeKind string

const (
	KindSource     NodeKind = "source"
	KindSink       NodeKind = "sink"
	KindFilter     NodeKind = "filter"
	KindVariable   NodeKind = "variable"
	KindSwitch     NodeKind = "switch"
	KindSplit      NodeKind = "split"
	KindCustomNode NodeKind = "customNode"
)

// Node is one entry in a scenario's node sequence. Exactly the fields
// relevant to Type are meaningful; the rest are left at their zero value.
type Node struct {
	Type NodeKind `json:"type"`
	ID   string   `json:"id"`

	// Filter
	Expression Expression `json:"expression"`

	// Variable. The upstream format's earlier revision named this field
	// "expression" rather than "value"; both are accepted, with Value
	// winning when both are present (SPEC_FULL.md §6, §9).
	VarName string      `json:"varName"`
	Value   *Expression `json:"value"`

	// Switch
	Nexts []Case `json:"nexts"`

	// Split
	Branches [][]Node `json:"-"`

	// CustomNode
	OutputVar  string      `json:"outputVar"`
	NodeType   string      `json:"nodeType"`
	Parameters []Parameter `json:"parameters"`
}

// VariableValue resolves the value expression for a Variable node,
// preferring the "value" field and falling back to the legacy
// "expression" field.
func (n Node) VariableValue() Expression {
	if n.Value != nil {
		return *n.Value
	}
	return n.Expression
}

// Scenario is the parsed top-level document.
type Scenario struct {
	MetaData MetaData `json:"metaData"`
	Nodes    []Node   `json:"nodes"`
}

// wireNode mirrors Node but gives Split's "nexts" field (an array of arrays
// of nodes, as opposed to Switch's array of Case) its own JSON shape; both
// Switch and Split key their sub-sequences under "nexts" on the wire, so
// decoding needs a second pass once Type is known.
type wireNode struct {
	Type       NodeKind        `json:"type"`
	ID         string          `json:"id"`
	Expression Expression      `json:"expression"`
	VarName    string          `json:"varName"`
	Value      *Expression     `json:"value"`
	Nexts      json.RawMessage `json:"nexts"`
	OutputVar  string          `json:"outputVar"`
	NodeType   string          `json:"nodeType"`
	Parameters []Parameter     `json:"parameters"`
}

// UnmarshalJSON implements custom decoding for the Node's polymorphic
// "nexts" field: an array of Case objects for Switch, an array of node
// arrays for Split.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = Node{
		Type:       w.Type,
		ID:         w.ID,
		Expression: w.Expression,
		VarName:    w.VarName,
		Value:      w.Value,
		OutputVar:  w.OutputVar,
		NodeType:   w.NodeType,
		Parameters: w.Parameters,
	}
	if len(w.Nexts) == 0 {
		return nil
	}
	switch w.Type {
	case KindSwitch:
		var cases []Case
		if err := json.Unmarshal(w.Nexts, &cases); err != nil {
			return fmt.Errorf("parsing switch %q nexts: %w", w.ID, err)
		}
		n.Nexts = cases
	case KindSplit:
		var branches [][]Node
		if err := json.Unmarshal(w.Nexts, &branches); err != nil {
			return fmt.Errorf("parsing split %q nexts: %w", w.ID, err)
		}
		n.Branches = branches
	}
	return nil
}

// Parse decodes a scenario document from raw JSON bytes.
func Parse(data []byte) (Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
	}
	return s, nil
}

// ParseFile reads and decodes a scenario document from a file path.
func ParseFile(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario file %q: %w", path, err)
	}
	return Parse(data)
}
