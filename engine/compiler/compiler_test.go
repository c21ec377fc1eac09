package compiler

import (
	"context"
	"testing"

	"github.com/BDNK1/scenarioengine/engine"
	"github.com/BDNK1/scenarioengine/engine/scenario"
)

// literalParser is a test-only expression language that ignores its text
// and always evaluates to a fixed value, or reads a variable straight out
// of the context when text names one verbatim. It exists so compiler tests
// exercise the compile/run contract without depending on a real script
// host's syntax or behaviour.
type literalParser struct{}

func (literalParser) Parse(text string, _ engine.CompilationVarContext) (engine.CompiledExpression, error) {
	return literalExpr{text: text}, nil
}

type literalExpr struct {
	text string
}

func (l literalExpr) Execute(_ context.Context, vars engine.VarContext) (engine.VarValue, error) {
	if v, ok := vars.ToExternalForm()[l.text]; ok {
		return v, nil
	}
	return l.text, nil
}

// boolParser treats its text as a literal "true"/"false", or as a variable
// name to read a boolean out of the context, covering Filter/Switch tests
// without a real expression language.
type boolParser struct{}

func (boolParser) Parse(text string, _ engine.CompilationVarContext) (engine.CompiledExpression, error) {
	return boolExpr{text: text}, nil
}

type boolExpr struct {
	text string
}

func (b boolExpr) Execute(_ context.Context, vars engine.VarContext) (engine.VarValue, error) {
	switch b.text {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "not_boolean":
		return 42, nil
	default:
		return vars.ToExternalForm()[b.text], nil
	}
}

func testCompiler() *Compiler {
	languages := engine.NewLanguageParser()
	languages.Register("lit", literalParser{})
	languages.Register("bool", boolParser{})
	customNodes := engine.NewCustomNodeRegistry()
	return New(languages, customNodes)
}

func lit(text string) scenario.Expression  { return scenario.Expression{Language: "lit", Expression: text} }
func boolExprWire(text string) scenario.Expression { return scenario.Expression{Language: "bool", Expression: text} }

func sinkRecords(t *testing.T, out engine.ScenarioOutput, sinkID string) []map[string]engine.VarValue {
	t.Helper()
	var records []map[string]engine.VarValue
	for _, o := range out {
		if o.NodeID == sinkID {
			records = append(records, o.Variables)
		}
	}
	return records
}

func TestVariableToSink(t *testing.T) {
	s := scenario.Scenario{Nodes: []scenario.Node{
		{Type: scenario.KindSource, ID: "source"},
		{Type: scenario.KindVariable, ID: "var", VarName: "new_var", Value: ptrExpr(lit("12"))},
		{Type: scenario.KindSink, ID: "sink"},
	}}

	interp, err := testCompiler().Compile(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := interp.Run(context.Background(), engine.DefaultContextForValue(22))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	records := sinkRecords(t, out, "sink")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["input"] != 22 {
		t.Errorf("expected input=22, got %v", records[0]["input"])
	}
	if records[0]["new_var"] != "12" {
		t.Errorf("expected new_var=12 (literal parser echoes text), got %v", records[0]["new_var"])
	}
}

func TestFilterTrueFalse(t *testing.T) {
	s := scenario.Scenario{Nodes: []scenario.Node{
		{Type: scenario.KindSource, ID: "source"},
		{Type: scenario.KindFilter, ID: "filter", Expression: boolExprWire("pass")},
		{Type: scenario.KindSink, ID: "sink"},
	}}
	interp, err := testCompiler().Compile(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	passCtx := engine.DefaultContextForValue(22).WithNewVar("pass", true)
	out, err := interp.Run(context.Background(), passCtx)
	if err != nil {
		t.Fatalf("run (pass): %v", err)
	}
	if len(sinkRecords(t, out, "sink")) != 1 {
		t.Errorf("expected 1 record when predicate is true")
	}

	failCtx := engine.DefaultContextForValue(11).WithNewVar("pass", false)
	out, err = interp.Run(context.Background(), failCtx)
	if err != nil {
		t.Fatalf("run (fail): %v", err)
	}
	if len(sinkRecords(t, out, "sink")) != 0 {
		t.Errorf("expected 0 records when predicate is false")
	}
}

func TestFilterNonBooleanPredicateIsRuntimeError(t *testing.T) {
	s := scenario.Scenario{Nodes: []scenario.Node{
		{Type: scenario.KindSource, ID: "source"},
		{Type: scenario.KindFilter, ID: "filter", Expression: boolExprWire("not_boolean")},
		{Type: scenario.KindSink, ID: "sink"},
	}}
	interp, err := testCompiler().Compile(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	_, err = interp.Run(context.Background(), engine.DefaultContextForValue(nil))
	if err == nil {
		t.Fatalf("expected InvalidSwitchType error")
	}
	re, ok := err.(*engine.RuntimeError)
	if !ok || re.Code != engine.CodeInvalidSwitchType {
		t.Fatalf("expected RuntimeError with CodeInvalidSwitchType, got %#v", err)
	}
}

func TestSwitchTwoCases(t *testing.T) {
	s := scenario.Scenario{Nodes: []scenario.Node{
		{Type: scenario.KindSource, ID: "source"},
		{Type: scenario.KindSwitch, ID: "switch", Nexts: []scenario.Case{
			{Expression: boolExprWire("positive"), Nodes: []scenario.Node{{Type: scenario.KindSink, ID: "sink1"}}},
			{Expression: boolExprWire("non_positive"), Nodes: []scenario.Node{{Type: scenario.KindSink, ID: "sink2"}}},
		}},
	}}
	interp, err := testCompiler().Compile(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	ctxPositive := engine.DefaultContextForValue(8).WithNewVar("positive", true).WithNewVar("non_positive", false)
	out, err := interp.Run(context.Background(), ctxPositive)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sinkRecords(t, out, "sink1")) != 1 || len(sinkRecords(t, out, "sink2")) != 0 {
		t.Errorf("expected exactly one record at sink1, got out=%#v", out)
	}

	ctxNegative := engine.DefaultContextForValue(-5).WithNewVar("positive", false).WithNewVar("non_positive", true)
	out, err = interp.Run(context.Background(), ctxNegative)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sinkRecords(t, out, "sink2")) != 1 || len(sinkRecords(t, out, "sink1")) != 0 {
		t.Errorf("expected exactly one record at sink2, got out=%#v", out)
	}
}

func TestSwitchNoMatchingCaseYieldsEmptyOutput(t *testing.T) {
	s := scenario.Scenario{Nodes: []scenario.Node{
		{Type: scenario.KindSource, ID: "source"},
		{Type: scenario.KindSwitch, ID: "switch", Nexts: []scenario.Case{
			{Expression: boolExprWire("false"), Nodes: []scenario.Node{{Type: scenario.KindSink, ID: "sink1"}}},
		}},
	}}
	interp, err := testCompiler().Compile(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, err := interp.Run(context.Background(), engine.DefaultContextForValue(nil))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty output, got %#v", out)
	}
}

func TestSplitFanOut(t *testing.T) {
	s := scenario.Scenario{Nodes: []scenario.Node{
		{Type: scenario.KindSource, ID: "source"},
		{Type: scenario.KindSplit, ID: "split", Branches: [][]scenario.Node{
			{{Type: scenario.KindSink, ID: "branch1"}},
			{{Type: scenario.KindSink, ID: "branch2"}},
		}},
	}}
	interp, err := testCompiler().Compile(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, err := interp.Run(context.Background(), engine.DefaultContextForValue("to_copy"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d: %#v", len(out), out)
	}
	if out[0].NodeID != "branch1" || out[1].NodeID != "branch2" {
		t.Errorf("expected declaration order branch1,branch2; got %s,%s", out[0].NodeID, out[1].NodeID)
	}
	for _, rec := range out {
		if rec.Variables["input"] != "to_copy" {
			t.Errorf("expected input=to_copy at %s, got %v", rec.NodeID, rec.Variables["input"])
		}
	}
}

func TestCompileErrors(t *testing.T) {
	t.Run("FirstNodeNotSource", func(t *testing.T) {
		s := scenario.Scenario{Nodes: []scenario.Node{{Type: scenario.KindSink, ID: "sink"}}}
		_, err := testCompiler().Compile(s)
		ce, ok := err.(*engine.CompilationError)
		if !ok || ce.Code != engine.CodeFirstNodeNotSource {
			t.Fatalf("expected FirstNodeNotSource, got %#v", err)
		}
	})

	t.Run("NodesAfterEndingNode", func(t *testing.T) {
		s := scenario.Scenario{Nodes: []scenario.Node{
			{Type: scenario.KindSource, ID: "source"},
			{Type: scenario.KindSink, ID: "sink1"},
			{Type: scenario.KindSink, ID: "sink2"},
		}}
		_, err := testCompiler().Compile(s)
		ce, ok := err.(*engine.CompilationError)
		if !ok || ce.Code != engine.CodeNodesAfterEndingNode {
			t.Fatalf("expected NodesAfterEndingNode, got %#v", err)
		}
	})

	t.Run("IncorrectVariableName", func(t *testing.T) {
		s := scenario.Scenario{Nodes: []scenario.Node{
			{Type: scenario.KindSource, ID: "source"},
			{Type: scenario.KindVariable, ID: "var", VarName: "1bad", Value: ptrExpr(lit("x"))},
			{Type: scenario.KindSink, ID: "sink"},
		}}
		_, err := testCompiler().Compile(s)
		ce, ok := err.(*engine.CompilationError)
		if !ok || ce.Code != engine.CodeIncorrectVariableName {
			t.Fatalf("expected IncorrectVariableName, got %#v", err)
		}
	})

	t.Run("EmptyScenario", func(t *testing.T) {
		_, err := testCompiler().Compile(scenario.Scenario{})
		ce, ok := err.(*engine.CompilationError)
		if !ok || ce.Code != engine.CodeEmptyScenario {
			t.Fatalf("expected EmptyScenario, got %#v", err)
		}
	})

	t.Run("InvalidEnd", func(t *testing.T) {
		s := scenario.Scenario{Nodes: []scenario.Node{{Type: scenario.KindSource, ID: "source"}}}
		_, err := testCompiler().Compile(s)
		ce, ok := err.(*engine.CompilationError)
		if !ok || ce.Code != engine.CodeInvalidEnd {
			t.Fatalf("expected InvalidEnd, got %#v", err)
		}
	})

	t.Run("UnknownLanguage", func(t *testing.T) {
		s := scenario.Scenario{Nodes: []scenario.Node{
			{Type: scenario.KindSource, ID: "source"},
			{Type: scenario.KindFilter, ID: "filter", Expression: scenario.Expression{Language: "cobol", Expression: "x"}},
			{Type: scenario.KindSink, ID: "sink"},
		}}
		_, err := testCompiler().Compile(s)
		ce, ok := err.(*engine.CompilationError)
		if !ok || ce.Code != engine.CodeUnknownLanguage {
			t.Fatalf("expected UnknownLanguage, got %#v", err)
		}
	})

	t.Run("UnknownCustomNode", func(t *testing.T) {
		s := scenario.Scenario{Nodes: []scenario.Node{
			{Type: scenario.KindSource, ID: "source"},
			{Type: scenario.KindCustomNode, ID: "cn", NodeType: "doesNotExist", OutputVar: "x"},
			{Type: scenario.KindSink, ID: "sink"},
		}}
		_, err := testCompiler().Compile(s)
		ce, ok := err.(*engine.CompilationError)
		if !ok || ce.Code != engine.CodeUnknownCustomNode {
			t.Fatalf("expected UnknownCustomNode, got %#v", err)
		}
	})
}

func ptrExpr(e scenario.Expression) *scenario.Expression { return &e }
