package engine

import "context"

// CompiledExpression is a parsed, executable expression. Execute must be
// pure with respect to ctx: it never mutates the context it is given.
type CompiledExpression interface {
	Execute(ctx context.Context, vars VarContext) (VarValue, error)
}

// Parser turns expression source text into a CompiledExpression, validated
// against the variable names known to compileCtx. Referring to a name
// unknown at parse time is the host language's decision, not an error here.
type Parser interface {
	Parse(text string, compileCtx CompilationVarContext) (CompiledExpression, error)
}

// LanguageParser dispatches expression parsing by language name. The zero
// value is not usable; construct with NewLanguageParser.
type LanguageParser struct {
	parsers map[string]Parser
}

// NewLanguageParser returns a LanguageParser with no languages registered.
func NewLanguageParser() *LanguageParser {
	return &LanguageParser{parsers: map[string]Parser{}}
}

// Register adds or replaces the parser for a language name.
func (l *LanguageParser) Register(language string, p Parser) {
	l.parsers[language] = p
}

// Parse resolves expr.Language to a registered Parser and invokes it,
// wrapping the result as ParseError and an unknown language as
// UnknownLanguage, both tagged with nodeID for diagnostics.
func (l *LanguageParser) Parse(nodeID string, expr Expression, compileCtx CompilationVarContext) (CompiledExpression, error) {
	p, ok := l.parsers[expr.Language]
	if !ok {
		return nil, ErrUnknownLanguage(nodeID, expr.Language)
	}
	compiled, err := p.Parse(expr.Expression, compileCtx)
	if err != nil {
		return nil, ErrParseError(nodeID, err)
	}
	return compiled, nil
}

// Expression is a (language, expression_text) pair, as carried on the wire.
type Expression struct {
	Language   string
	Expression string
}
