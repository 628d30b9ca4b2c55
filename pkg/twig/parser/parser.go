package parser

import (
	"fmt"
	"strings"

	"mercator-hq/sdclint/pkg/twig/ast"
	"mercator-hq/sdclint/pkg/twig/lexer"
)

// SyntaxError describes a template that cannot be parsed.
type SyntaxError = lexer.SyntaxError

// DefaultMaxDepth bounds expression and tag nesting.
const DefaultMaxDepth = 256

// Parser turns template source into an AST.
// A Parser holds configuration only and is safe for concurrent use.
type Parser struct {
	maxDepth int
}

// NewParser creates a new parser with default settings.
func NewParser() *Parser {
	return &Parser{maxDepth: DefaultMaxDepth}
}

// WithMaxDepth limits how deeply expressions and tags may nest.
// Templates exceeding the limit fail with a SyntaxError.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	if depth > 0 {
		p.maxDepth = depth
	}
	return p
}

// Parse parses template source. The returned error is a *SyntaxError.
func (p *Parser) Parse(source string) (*ast.Node, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}

	s := &state{tokens: tokens, maxDepth: p.maxDepth}
	return s.parse()
}

// Parse parses template source with a default parser.
func Parse(source string) (*ast.Node, error) {
	return NewParser().Parse(source)
}

// state is the token stream of one Parse call. Syntax errors are raised
// with panic and turned back into errors by parse.
type state struct {
	tokens   []lexer.Token
	pos      int
	depth    int
	maxDepth int
}

func (p *state) parse() (root *ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			root, err = nil, se
		}
	}()

	start := p.cur()
	body, _ := p.subparse(lexer.Token{}, "")
	return ast.New(ast.KindTemplate, location(start), ast.WithChild(ast.SlotBody, body)), nil
}

func location(tok lexer.Token) ast.Location {
	return ast.Location{Line: tok.Line, Column: tok.Column}
}

func (p *state) cur() lexer.Token {
	return p.tokens[p.pos]
}

// look returns the token n positions ahead, or the EOF token.
func (p *state) look(n int) lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *state) next() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.TokEOF {
		p.pos++
	}
	return tok
}

func (p *state) test(typ lexer.TokenType, values ...string) bool {
	return p.cur().Test(typ, values...)
}

func (p *state) nextIf(typ lexer.TokenType, values ...string) bool {
	if p.test(typ, values...) {
		p.next()
		return true
	}
	return false
}

func (p *state) expect(typ lexer.TokenType, values ...string) lexer.Token {
	tok := p.cur()
	if !tok.Test(typ, values...) {
		want := typ.String()
		if len(values) > 0 {
			want = fmt.Sprintf("%s \"%s\"", want, strings.Join(values, "\" or \""))
		}
		p.errorf(tok, "Unexpected %s (%s expected).", describe(tok), want)
	}
	return p.next()
}

func (p *state) errorf(tok lexer.Token, format string, args ...any) {
	panic(lexer.Errorf(tok.Line, tok.Column, format, args...))
}

func (p *state) enter(tok lexer.Token) {
	p.depth++
	if p.depth > p.maxDepth {
		p.errorf(tok, "Maximum nesting depth of %d exceeded.", p.maxDepth)
	}
}

func (p *state) leave() {
	p.depth--
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of template"
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Value)
}
