// Package javascript implements the default "javascript" expression
// language: user expression text is wrapped into a destructuring function
// and run against an embedded ECMAScript engine (github.com/dop251/goja).
//
// Compiled *goja.Program values are immutable bytecode and safe to share; a
// goja.Runtime is not. Programs are cached process-wide behind a
// sync.RWMutex, keyed by the full wrapper source, and each execution
// borrows a Runtime from a sync.Pool rather than pinning one per thread —
// goroutines are not OS threads, so a literal thread-local cache (as the
// original script host used) doesn't translate; pooling gives the same
// "no lock held across invocation" guarantee.
package javascript

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/BDNK1/scenarioengine/engine"
)

var (
	programCacheMu sync.RWMutex
	programCache   = map[string]*goja.Program{}

	runtimePool = sync.Pool{
		New: func() any { return goja.New() },
	}
)

func compileCached(source string) (*goja.Program, error) {
	programCacheMu.RLock()
	prog, ok := programCache[source]
	programCacheMu.RUnlock()
	if ok {
		return prog, nil
	}

	compiled, err := goja.Compile("expression.js", source, false)
	if err != nil {
		return nil, fmt.Errorf("compiling javascript expression: %w", err)
	}

	programCacheMu.Lock()
	programCache[source] = compiled
	programCacheMu.Unlock()
	return compiled, nil
}

// wrapSource produces the "function run(argMap) { const { ... } = argMap;
// return (EXPR) }" wrapper described in SPEC_FULL.md §4.2. names must
// already be sorted, so that the same set of in-scope names always
// produces an identical wrapper source string and the program cache key
// stays stable.
func wrapSource(names []string, exprText string) string {
	return fmt.Sprintf(
		"function run(argMap) { const { %s } = argMap; return (%s); }",
		strings.Join(names, ", "), exprText,
	)
}

// Parser implements engine.Parser for the "javascript" language.
type Parser struct{}

// New returns a Parser for the "javascript" language.
func New() *Parser { return &Parser{} }

// Parse compiles the wrapper source at parse time against the names known
// to compileCtx, to surface a syntax error as soon as possible rather than
// on first execution.
func (p *Parser) Parse(text string, compileCtx engine.CompilationVarContext) (engine.CompiledExpression, error) {
	source := wrapSource(compileCtx.Names(), text)
	if _, err := compileCached(source); err != nil {
		return nil, err
	}
	return &compiledExpression{userExpr: text}, nil
}

type compiledExpression struct {
	userExpr string
}

// Execute converts vars to its external form and builds the wrapper keyed
// by the runtime's actual variable names, which may differ from what was
// known at parse time (e.g. a context built directly by a caller), then
// invokes it in a pooled Runtime.
func (c *compiledExpression) Execute(ctx context.Context, vars engine.VarContext) (engine.VarValue, error) {
	external := vars.ToExternalForm()
	names := make([]string, 0, len(external))
	for name := range external {
		names = append(names, name)
	}
	sort.Strings(names)

	source := wrapSource(names, c.userExpr)
	prog, err := compileCached(source)
	if err != nil {
		return nil, err
	}

	vm := runtimePool.Get().(*goja.Runtime)
	defer func() {
		vm.ClearInterrupt()
		runtimePool.Put(vm)
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error before javascript execution: %w", err)
	}

	if _, err := vm.RunProgram(prog); err != nil {
		return nil, fmt.Errorf("loading compiled expression: %w", err)
	}

	runFn, ok := goja.AssertFunction(vm.Get("run"))
	if !ok {
		return nil, fmt.Errorf("compiled expression did not define run()")
	}

	encoded, err := json.Marshal(external)
	if err != nil {
		return nil, fmt.Errorf("serialising variable context: %w", err)
	}
	var argMap any
	if err := json.Unmarshal(encoded, &argMap); err != nil {
		return nil, fmt.Errorf("decoding variable context: %w", err)
	}

	result, err := runFn(goja.Undefined(), vm.ToValue(argMap))
	if err != nil {
		return nil, fmt.Errorf("executing javascript expression: %w", err)
	}
	return result.Export(), nil
}

