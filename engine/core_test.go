package engine

import "testing"

func TestWithNewVarLeavesOriginalUnchanged(t *testing.T) {
	base := DefaultContextForValue(22)
	extended := base.WithNewVar("doubled", 44)

	if _, ok := base.ToExternalForm()["doubled"]; ok {
		t.Fatalf("expected base context to be unaffected by WithNewVar on extended")
	}
	if v := extended.ToExternalForm()["doubled"]; v != 44 {
		t.Fatalf("expected extended context to contain doubled=44, got %v", v)
	}
	if v := extended.ToExternalForm()["input"]; v != 22 {
		t.Fatalf("expected extended context to retain input=22, got %v", v)
	}
}

func TestSiblingBranchesDoNotObserveEachOther(t *testing.T) {
	base := DefaultContextForValue("seed")
	left := base.WithNewVar("branch", "left")
	right := base.WithNewVar("branch", "right")

	if left.ToExternalForm()["branch"] != "left" {
		t.Fatalf("left branch lost its own binding")
	}
	if right.ToExternalForm()["branch"] != "right" {
		t.Fatalf("right branch lost its own binding")
	}
}

func TestValidVarName(t *testing.T) {
	cases := map[string]bool{
		"input":    true,
		"new_var":  true,
		"a":        true,
		"":         false,
		"1abc":     false,
		"a b":      false,
		"Input":    false,
	}
	for name, want := range cases {
		if got := ValidVarName(name); got != want {
			t.Errorf("ValidVarName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCompilationVarContextWithVar(t *testing.T) {
	scope := DefaultCompilationVarContext()

	extended, err := scope.WithVar("node1", "new_var")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !extended.Has("new_var") || !extended.Has("input") {
		t.Fatalf("extended scope missing expected names: %#v", extended.Names())
	}
	if scope.Has("new_var") {
		t.Fatalf("original scope must be unaffected by WithVar")
	}

	if _, err := scope.WithVar("node1", "1bad"); err == nil {
		t.Fatalf("expected IncorrectVariableName error for invalid name")
	} else if ce, ok := err.(*CompilationError); !ok || ce.Code != CodeIncorrectVariableName {
		t.Fatalf("expected CompilationError with CodeIncorrectVariableName, got %#v", err)
	}
}

func TestFlattenOutputsPreservesOrder(t *testing.T) {
	a := ScenarioOutput{{NodeID: "a"}}
	b := ScenarioOutput{{NodeID: "b1"}, {NodeID: "b2"}}
	flat := FlattenOutputs(a, ScenarioOutput{}, b)

	if len(flat) != 3 {
		t.Fatalf("expected 3 records, got %d", len(flat))
	}
	want := []string{"a", "b1", "b2"}
	for i, id := range want {
		if flat[i].NodeID != id {
			t.Errorf("position %d: got %q, want %q", i, flat[i].NodeID, id)
		}
	}
}
