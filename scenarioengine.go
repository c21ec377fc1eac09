// Package scenarioengine is the top-level API: CreateInterpreter compiles a
// scenario document into a reusable Interpreter, and Invoke feeds one JSON
// input value through it, matching SPEC_FULL.md §4.6.
package scenarioengine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BDNK1/scenarioengine/engine"
	"github.com/BDNK1/scenarioengine/engine/compiler"
	"github.com/BDNK1/scenarioengine/engine/customnode/foreach"
	"github.com/BDNK1/scenarioengine/engine/customnode/httpenricher"
	"github.com/BDNK1/scenarioengine/engine/lang/exprlang"
	"github.com/BDNK1/scenarioengine/engine/lang/javascript"
	"github.com/BDNK1/scenarioengine/engine/lang/risor"
	"github.com/BDNK1/scenarioengine/engine/scenario"
)

// Registries bundles the two configurable registration points called out in
// SPEC_FULL.md §6: expression languages by name, and custom nodes by
// nodeType. NewDefaultRegistries returns one pre-populated with this
// engine's built-ins; callers may Register additional entries before
// compiling.
type Registries struct {
	Languages   *engine.LanguageParser
	CustomNodes *engine.CustomNodeRegistry
}

// NewDefaultRegistries registers the "javascript", "expr" and "risor"
// languages and the "forEach" and "httpEnricher" custom nodes.
func NewDefaultRegistries() *Registries {
	languages := engine.NewLanguageParser()
	languages.Register("javascript", javascript.New())
	languages.Register("expr", exprlang.New())
	languages.Register("risor", risor.New())

	customNodes := engine.NewCustomNodeRegistry()
	customNodes.Register("forEach", foreach.New())
	customNodes.Register("httpEnricher", httpenricher.New())

	return &Registries{Languages: languages, CustomNodes: customNodes}
}

// CreateInterpreter parses the scenario document at path and compiles it
// using the default registries. I/O or decode failures are surfaced as a
// ScenarioReadFailure CompilationError.
func CreateInterpreter(path string) (engine.Interpreter, error) {
	return CreateInterpreterWithRegistries(path, NewDefaultRegistries())
}

// CreateInterpreterWithRegistries is CreateInterpreter with caller-supplied
// registries, for embedding additional languages or custom nodes.
func CreateInterpreterWithRegistries(path string, registries *Registries) (engine.Interpreter, error) {
	s, err := scenario.ParseFile(path)
	if err != nil {
		return nil, engine.ErrScenarioReadFailure(err)
	}
	return compiler.New(registries.Languages, registries.CustomNodes).Compile(s)
}

// CompileScenario compiles an already-parsed scenario.Scenario value using
// the default registries, for callers that obtained the scenario document
// some other way (e.g. an HTTP request body).
func CompileScenario(s scenario.Scenario) (engine.Interpreter, error) {
	registries := NewDefaultRegistries()
	return compiler.New(registries.Languages, registries.CustomNodes).Compile(s)
}

// Invoke parses input as a single JSON value, seeds a VarContext with it
// bound to "input", and runs interp against it.
func Invoke(ctx context.Context, interp engine.Interpreter, input string) (engine.ScenarioOutput, error) {
	var value engine.VarValue
	if err := json.Unmarshal([]byte(input), &value); err != nil {
		return nil, engine.ErrCannotParseInput(fmt.Errorf("decoding input: %w", err))
	}
	return interp.Run(ctx, engine.DefaultContextForValue(value))
}
