package parser

import (
	"slices"
	"strings"

	"mercator-hq/sdclint/pkg/twig/ast"
	"mercator-hq/sdclint/pkg/twig/lexer"
)

// reservedNames cannot be assignment targets.
var reservedNames = []string{"true", "false", "none", "null", "_self", "_context", "_charset"}

// subparse collects body nodes until one of the end tags is reached. It
// returns the body and the end tag that stopped it; the tag name has been
// consumed, the rest of the tag has not. open is the tag being closed and
// is only used for error reporting.
func (p *state) subparse(open lexer.Token, tag string, ends ...string) (*ast.Node, string) {
	start := p.cur()
	var nodes []*ast.Node

	for {
		tok := p.cur()
		switch tok.Type {
		case lexer.TokEOF:
			if tag != "" {
				p.errorf(open, "Unclosed \"%s\" block.", tag)
			}
			return ast.NewList(ast.KindBody, location(start), nodes...), ""

		case lexer.TokText:
			p.next()
			nodes = append(nodes, ast.New(ast.KindText, location(tok), ast.WithAttr(ast.AttrData, tok.Value)))

		case lexer.TokVarStart:
			p.next()
			expr := p.parseExpression(0)
			p.expect(lexer.TokVarEnd)
			nodes = append(nodes, ast.New(ast.KindPrint, location(tok), ast.WithChild(ast.SlotExpr, expr)))

		case lexer.TokBlockStart:
			p.next()
			if !p.test(lexer.TokName) {
				p.errorf(p.cur(), "A block must start with a tag name.")
			}
			name := p.next()
			if slices.Contains(ends, name.Value) {
				return ast.NewList(ast.KindBody, location(start), nodes...), name.Value
			}
			p.enter(tok)
			nodes = append(nodes, p.parseTag(tok, name))
			p.leave()

		default:
			p.errorf(tok, "Unexpected %s.", describe(tok))
		}
	}
}

func (p *state) parseTag(tok, name lexer.Token) *ast.Node {
	switch name.Value {
	case "set":
		return p.parseSet(tok)
	case "for":
		return p.parseFor(tok)
	case "if":
		return p.parseIf(tok)
	case "do":
		expr := p.parseExpression(0)
		p.expect(lexer.TokBlockEnd)
		return ast.New(ast.KindDo, location(tok), ast.WithChild(ast.SlotExpr, expr))
	case "flush":
		p.expect(lexer.TokBlockEnd)
		return ast.New(ast.KindFlush, location(tok))
	case "sandbox":
		p.expect(lexer.TokBlockEnd)
		body := p.parseBody(tok, "sandbox")
		return ast.New(ast.KindSandbox, location(tok), ast.WithChild(ast.SlotBody, body))
	case "include":
		return p.parseInclude(tok, ast.KindInclude)
	case "embed":
		return p.parseInclude(tok, ast.KindEmbed)
	case "extends":
		expr := p.parseExpression(0)
		p.expect(lexer.TokBlockEnd)
		return ast.New(ast.KindExtends, location(tok), ast.WithChild(ast.SlotTemplate, expr))
	case "block":
		return p.parseBlock(tok)
	case "trans":
		return p.parseTrans(tok)
	case "apply":
		filters := p.parseFilter(nil)
		for p.nextIf(lexer.TokPunct, "|") {
			filters = p.parseFilter(filters)
		}
		p.expect(lexer.TokBlockEnd)
		body := p.parseBody(tok, "apply")
		return ast.New(ast.KindApply, location(tok), ast.WithChild(ast.SlotFilters, filters), ast.WithChild(ast.SlotBody, body))
	case "with":
		return p.parseWith(tok)
	case "macro":
		return p.parseMacro(tok)
	case "import":
		template := p.parseExpression(0)
		p.expect(lexer.TokName, "as")
		alias := p.parseTargets()
		p.expect(lexer.TokBlockEnd)
		if alias.Len() != 1 {
			p.errorf(tok, "An import must have exactly one alias.")
		}
		return ast.New(ast.KindImport, location(tok), ast.WithChild(ast.SlotTemplate, template), ast.WithChild(ast.SlotTargets, alias))
	case "from":
		return p.parseFrom(tok)
	case "autoescape":
		var strategy *ast.Node
		if !p.test(lexer.TokBlockEnd) {
			strategy = p.parseExpression(0)
		}
		p.expect(lexer.TokBlockEnd)
		body := p.parseBody(tok, "autoescape")
		return ast.New(ast.KindAutoescape, location(tok), ast.WithChild(ast.SlotExpr, strategy), ast.WithChild(ast.SlotBody, body))
	}

	switch {
	case strings.HasPrefix(name.Value, "end"), name.Value == "else", name.Value == "elseif", name.Value == "plural":
		p.errorf(name, "Unexpected \"%s\" tag.", name.Value)
	default:
		p.errorf(name, "Unknown \"%s\" tag.", name.Value)
	}
	return nil
}

// parseBody parses "%}"-terminated content up to "end<tag>" and consumes
// the closing tag.
func (p *state) parseBody(open lexer.Token, tag string) *ast.Node {
	body, _ := p.subparse(open, tag, "end"+tag)
	p.expect(lexer.TokBlockEnd)
	return body
}

func (p *state) parseTargets() *ast.Node {
	start := p.cur()
	var targets []*ast.Node
	for {
		tok := p.expect(lexer.TokName)
		if slices.Contains(reservedNames, tok.Value) {
			p.errorf(tok, "You cannot assign a value to \"%s\".", tok.Value)
		}
		targets = append(targets, ast.New(ast.KindAssignName, location(tok), ast.WithAttr(ast.AttrName, tok.Value)))
		if !p.nextIf(lexer.TokPunct, ",") {
			break
		}
	}
	return ast.NewList(ast.KindTargets, location(start), targets...)
}

func (p *state) parseSet(tok lexer.Token) *ast.Node {
	targets := p.parseTargets()

	if p.nextIf(lexer.TokPunct, "=") {
		start := p.cur()
		values := []*ast.Node{p.parseExpression(0)}
		for p.nextIf(lexer.TokPunct, ",") {
			values = append(values, p.parseExpression(0))
		}
		p.expect(lexer.TokBlockEnd)
		if len(values) != targets.Len() {
			p.errorf(tok, "When using set, you must have the same number of variables and assignments.")
		}
		return ast.New(ast.KindSet, location(tok),
			ast.WithChild(ast.SlotValues, ast.NewList(ast.KindArguments, location(start), values...)),
			ast.WithChild(ast.SlotTargets, targets),
		)
	}

	if targets.Len() > 1 {
		p.errorf(tok, "When using set with a block, you cannot have a multi-target.")
	}
	p.expect(lexer.TokBlockEnd)
	body := p.parseBody(tok, "set")
	return ast.New(ast.KindSet, location(tok),
		ast.WithAttr(ast.AttrCapture, true),
		ast.WithChild(ast.SlotValues, body),
		ast.WithChild(ast.SlotTargets, targets),
	)
}

func (p *state) parseFor(tok lexer.Token) *ast.Node {
	targets := p.parseTargets()
	p.expect(lexer.TokOperator, "in")
	seq := p.parseExpression(0)
	p.expect(lexer.TokBlockEnd)

	body, end := p.subparse(tok, "for", "else", "endfor")
	var elseBody *ast.Node
	if end == "else" {
		p.expect(lexer.TokBlockEnd)
		elseBody, _ = p.subparse(tok, "for", "endfor")
	}
	p.expect(lexer.TokBlockEnd)

	var key, value *ast.Node
	switch children := targets.Children(); len(children) {
	case 1:
		value = children[0]
	case 2:
		key, value = children[0], children[1]
	default:
		p.errorf(tok, "Only one or two loop targets are allowed.")
	}

	return ast.New(ast.KindFor, location(tok),
		ast.WithChild(ast.SlotSeq, seq),
		ast.WithChild(ast.SlotKeyTarget, key),
		ast.WithChild(ast.SlotValueTarget, value),
		ast.WithChild(ast.SlotBody, body),
		ast.WithChild(ast.SlotElse, elseBody),
	)
}

func (p *state) parseIf(tok lexer.Token) *ast.Node {
	var branches []*ast.Node
	var elseBody *ast.Node

	cond := p.parseExpression(0)
	p.expect(lexer.TokBlockEnd)
	body, end := p.subparse(tok, "if", "elseif", "else", "endif")
	branches = append(branches, branch(cond, body))

	for end != "endif" {
		switch end {
		case "elseif":
			cond = p.parseExpression(0)
			p.expect(lexer.TokBlockEnd)
			body, end = p.subparse(tok, "if", "elseif", "else", "endif")
			branches = append(branches, branch(cond, body))
		case "else":
			p.expect(lexer.TokBlockEnd)
			elseBody, end = p.subparse(tok, "if", "endif")
		}
	}
	p.expect(lexer.TokBlockEnd)

	return ast.New(ast.KindIf, location(tok),
		ast.WithChild(ast.SlotTests, ast.NewList(ast.KindBody, location(tok), branches...)),
		ast.WithChild(ast.SlotElse, elseBody),
	)
}

func branch(cond, body *ast.Node) *ast.Node {
	return ast.New(ast.KindPair, cond.Location(), ast.WithChild(ast.SlotKey, cond), ast.WithChild(ast.SlotValue, body))
}

// parseInclude handles include and embed, which share their options:
//
//	{% include 'x' ignore missing with {...} only %}
func (p *state) parseInclude(tok lexer.Token, kind ast.Kind) *ast.Node {
	template := p.parseExpression(0)

	ignoreMissing := false
	if p.nextIf(lexer.TokName, "ignore") {
		p.expect(lexer.TokName, "missing")
		ignoreMissing = true
	}
	var variables *ast.Node
	if p.nextIf(lexer.TokName, "with") {
		variables = p.parseExpression(0)
	}
	only := p.nextIf(lexer.TokName, "only")
	p.expect(lexer.TokBlockEnd)

	opts := []ast.Option{
		ast.WithAttr(ast.AttrIgnoreMissing, ignoreMissing),
		ast.WithAttr(ast.AttrOnly, only),
		ast.WithChild(ast.SlotTemplate, template),
		ast.WithChild(ast.SlotVariables, variables),
	}
	if kind == ast.KindEmbed {
		opts = append(opts, ast.WithChild(ast.SlotBody, p.parseBody(tok, "embed")))
	}
	return ast.New(kind, location(tok), opts...)
}

func (p *state) parseBlock(tok lexer.Token) *ast.Node {
	name := p.expect(lexer.TokName)

	var body *ast.Node
	if p.nextIf(lexer.TokBlockEnd) {
		body, _ = p.subparse(tok, "block", "endblock")
		if p.test(lexer.TokName) {
			if end := p.next(); end.Value != name.Value {
				p.errorf(end, "Expected endblock for block \"%s\" (but \"%s\" given).", name.Value, end.Value)
			}
		}
		p.expect(lexer.TokBlockEnd)
	} else {
		expr := p.parseExpression(0)
		p.expect(lexer.TokBlockEnd)
		body = ast.NewList(ast.KindBody, location(tok), ast.New(ast.KindPrint, expr.Location(), ast.WithChild(ast.SlotExpr, expr)))
	}

	return ast.New(ast.KindBlock, location(tok), ast.WithAttr(ast.AttrName, name.Value), ast.WithChild(ast.SlotBody, body))
}

func (p *state) parseTrans(tok lexer.Token) *ast.Node {
	var variables *ast.Node
	if p.nextIf(lexer.TokName, "with") {
		variables = p.parseExpression(0)
	}
	p.expect(lexer.TokBlockEnd)

	body, end := p.subparse(tok, "trans", "plural", "endtrans")
	var count, plural *ast.Node
	if end == "plural" {
		count = p.parseExpression(0)
		p.expect(lexer.TokBlockEnd)
		plural, _ = p.subparse(tok, "trans", "endtrans")
	}
	p.expect(lexer.TokBlockEnd)

	return ast.New(ast.KindTrans, location(tok),
		ast.WithChild(ast.SlotVariables, variables),
		ast.WithChild(ast.SlotBody, body),
		ast.WithChild(ast.SlotCount, count),
		ast.WithChild(ast.SlotPlural, plural),
	)
}

func (p *state) parseWith(tok lexer.Token) *ast.Node {
	var variables *ast.Node
	if !p.test(lexer.TokBlockEnd) && !p.test(lexer.TokName, "only") {
		variables = p.parseExpression(0)
	}
	only := p.nextIf(lexer.TokName, "only")
	p.expect(lexer.TokBlockEnd)
	body := p.parseBody(tok, "with")

	return ast.New(ast.KindWith, location(tok),
		ast.WithAttr(ast.AttrOnly, only),
		ast.WithChild(ast.SlotVariables, variables),
		ast.WithChild(ast.SlotBody, body),
	)
}

// parseMacro handles
//
//	{% macro name(a, b = 'default') %}...{% endmacro [name] %}
//
// Parameters become targets so they are declared like set targets.
func (p *state) parseMacro(tok lexer.Token) *ast.Node {
	name := p.expect(lexer.TokName)
	open := p.expect(lexer.TokPunct, "(")

	var params []*ast.Node
	for !p.test(lexer.TokPunct, ")") {
		if len(params) > 0 {
			if !p.nextIf(lexer.TokPunct, ",") {
				p.errorf(p.cur(), "Arguments must be separated by a comma.")
			}
			if p.test(lexer.TokPunct, ")") {
				break
			}
		}
		param := p.expect(lexer.TokName)
		if slices.Contains(reservedNames, param.Value) {
			p.errorf(param, "You cannot assign a value to \"%s\".", param.Value)
		}
		var value *ast.Node
		if p.nextIf(lexer.TokPunct, "=") || p.nextIf(lexer.TokPunct, ":") {
			value = p.parseExpression(0)
		}
		params = append(params, ast.New(ast.KindAssignName, location(param),
			ast.WithAttr(ast.AttrName, param.Value),
			ast.WithChild(ast.SlotValue, value),
		))
	}
	p.expect(lexer.TokPunct, ")")
	p.expect(lexer.TokBlockEnd)

	body, _ := p.subparse(tok, "macro", "endmacro")
	if p.test(lexer.TokName) {
		if end := p.next(); end.Value != name.Value {
			p.errorf(end, "Expected endmacro for macro \"%s\" (but \"%s\" given).", name.Value, end.Value)
		}
	}
	p.expect(lexer.TokBlockEnd)

	return ast.New(ast.KindMacro, location(tok),
		ast.WithAttr(ast.AttrName, name.Value),
		ast.WithChild(ast.SlotTargets, ast.NewList(ast.KindTargets, location(open), params...)),
		ast.WithChild(ast.SlotBody, body),
	)
}

// parseFrom handles {% from 'forms.twig' import input as field, label %}.
// Each target is named after its alias and keeps the macro name.
func (p *state) parseFrom(tok lexer.Token) *ast.Node {
	template := p.parseExpression(0)
	start := p.expect(lexer.TokName, "import")

	var targets []*ast.Node
	for {
		macro := p.expect(lexer.TokName)
		alias := macro
		if p.nextIf(lexer.TokName, "as") {
			alias = p.expect(lexer.TokName)
		}
		if slices.Contains(reservedNames, alias.Value) {
			p.errorf(alias, "You cannot assign a value to \"%s\".", alias.Value)
		}
		targets = append(targets, ast.New(ast.KindAssignName, location(alias),
			ast.WithAttr(ast.AttrName, alias.Value),
			ast.WithAttr(ast.AttrMacro, macro.Value),
		))
		if !p.nextIf(lexer.TokPunct, ",") {
			break
		}
	}
	p.expect(lexer.TokBlockEnd)

	return ast.New(ast.KindFrom, location(tok),
		ast.WithChild(ast.SlotTemplate, template),
		ast.WithChild(ast.SlotTargets, ast.NewList(ast.KindTargets, location(start), targets...)),
	)
}
