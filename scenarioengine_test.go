package scenarioengine

import (
	"context"
	"testing"

	"github.com/BDNK1/scenarioengine/engine/scenario"
)

func TestInvokeVariableToSinkWithDefaultRegistries(t *testing.T) {
	s := scenario.Scenario{Nodes: []scenario.Node{
		{Type: scenario.KindSource, ID: "source"},
		{Type: scenario.KindVariable, ID: "var", VarName: "new_var", Value: &scenario.Expression{
			Language: "javascript", Expression: "12",
		}},
		{Type: scenario.KindSink, ID: "sink"},
	}}

	interp, err := CompileScenario(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := Invoke(context.Background(), interp, "22")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if out[0].NodeID != "sink" {
		t.Errorf("expected sink record, got %q", out[0].NodeID)
	}
	if out[0].Variables["input"] != float64(22) {
		t.Errorf("expected input=22, got %v", out[0].Variables["input"])
	}
}

func TestInvokeExprLanguageVariable(t *testing.T) {
	s := scenario.Scenario{Nodes: []scenario.Node{
		{Type: scenario.KindSource, ID: "source"},
		{Type: scenario.KindVariable, ID: "var", VarName: "doubled", Value: &scenario.Expression{
			Language: "expr", Expression: "input * 2",
		}},
		{Type: scenario.KindSink, ID: "sink"},
	}}

	interp, err := CompileScenario(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := Invoke(context.Background(), interp, "21")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
}

func TestInvokeCannotParseInput(t *testing.T) {
	s := scenario.Scenario{Nodes: []scenario.Node{
		{Type: scenario.KindSource, ID: "source"},
		{Type: scenario.KindSink, ID: "sink"},
	}}
	interp, err := CompileScenario(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	_, err = Invoke(context.Background(), interp, "{not valid json")
	if err == nil {
		t.Fatalf("expected CannotParseInput error")
	}
}

func TestForEachEndToEnd(t *testing.T) {
	s := scenario.Scenario{Nodes: []scenario.Node{
		{Type: scenario.KindSource, ID: "source"},
		{Type: scenario.KindCustomNode, ID: "cn", NodeType: "forEach", OutputVar: "each", Parameters: []scenario.Parameter{
			{Name: "value", Expression: scenario.Expression{Language: "javascript", Expression: "['a','b','c']"}},
		}},
		{Type: scenario.KindSink, ID: "sink"},
	}}

	interp, err := CompileScenario(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := Invoke(context.Background(), interp, `""`)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if out[i].Variables["each"] != w {
			t.Errorf("position %d: got %v, want %v", i, out[i].Variables["each"], w)
		}
	}
}
