package parser

import (
	"strconv"

	"mercator-hq/sdclint/pkg/twig/ast"
	"mercator-hq/sdclint/pkg/twig/lexer"
)

type operator struct {
	precedence int
	rightAssoc bool
}

var binaryOperators = map[string]operator{
	"or":          {precedence: 10},
	"and":         {precedence: 15},
	"b-or":        {precedence: 16},
	"b-xor":       {precedence: 17},
	"b-and":       {precedence: 18},
	"==":          {precedence: 20},
	"!=":          {precedence: 20},
	"<=>":         {precedence: 20},
	"<":           {precedence: 20},
	">":           {precedence: 20},
	">=":          {precedence: 20},
	"<=":          {precedence: 20},
	"not in":      {precedence: 20},
	"in":          {precedence: 20},
	"matches":     {precedence: 20},
	"starts with": {precedence: 20},
	"ends with":   {precedence: 20},
	"..":          {precedence: 25},
	"+":           {precedence: 30},
	"-":           {precedence: 30},
	"~":           {precedence: 40},
	"*":           {precedence: 60},
	"/":           {precedence: 60},
	"//":          {precedence: 60},
	"%":           {precedence: 60},
	"is":          {precedence: 100},
	"is not":      {precedence: 100},
	"**":          {precedence: 200, rightAssoc: true},
	"??":          {precedence: 300, rightAssoc: true},
}

var unaryOperators = map[string]int{
	"not": 50,
	"-":   500,
	"+":   500,
}

// Tests whose name spans two words.
var twoWordTests = map[string]string{
	"same":      "as",
	"divisible": "by",
}

func (p *state) parseExpression(precedence int) *ast.Node {
	start := p.cur()
	p.enter(start)
	defer p.leave()

	if p.isArrowAhead() {
		return p.parseArrow()
	}

	expr := p.parseUnary()
	for {
		tok := p.cur()
		if tok.Type != lexer.TokOperator {
			break
		}
		op, ok := binaryOperators[tok.Value]
		if !ok || op.precedence < precedence {
			break
		}
		p.next()

		switch tok.Value {
		case "is", "is not":
			expr = p.parseTest(tok, expr)
		case "??":
			right := p.parseExpression(op.precedence)
			expr = nullCoalesce(tok, expr, right)
		default:
			next := op.precedence + 1
			if op.rightAssoc {
				next = op.precedence
			}
			right := p.parseExpression(next)
			expr = ast.New(ast.KindBinary, location(tok),
				ast.WithAttr(ast.AttrOperator, tok.Value),
				ast.WithChild(ast.SlotLeft, expr),
				ast.WithChild(ast.SlotRight, right),
			)
		}
	}

	if precedence == 0 {
		expr = p.parseConditional(expr)
	}
	return expr
}

func (p *state) parseConditional(expr *ast.Node) *ast.Node {
	for p.nextIf(lexer.TokPunct, "?") {
		var expr2, expr3 *ast.Node
		if p.nextIf(lexer.TokPunct, ":") {
			// a ?: b
			expr2 = expr
			expr3 = p.parseExpression(0)
		} else {
			expr2 = p.parseExpression(0)
			if p.nextIf(lexer.TokPunct, ":") {
				expr3 = p.parseExpression(0)
			}
		}
		expr = ast.New(ast.KindConditional, expr.Location(),
			ast.WithChild(ast.SlotExpr1, expr),
			ast.WithChild(ast.SlotExpr2, expr2),
			ast.WithChild(ast.SlotExpr3, expr3),
		)
	}
	return expr
}

// nullCoalesce expands "a ?? b" into a conditional testing that a is
// defined and not null.
func nullCoalesce(tok lexer.Token, left, right *ast.Node) *ast.Node {
	loc := location(tok)
	noArgs := ast.NewList(ast.KindArguments, loc)
	defined := ast.New(ast.KindTest, loc,
		ast.WithAttr(ast.AttrName, "defined"),
		ast.WithChild(ast.SlotNode, left),
		ast.WithChild(ast.SlotArguments, noArgs),
	)
	isNull := ast.New(ast.KindTest, loc,
		ast.WithAttr(ast.AttrName, "null"),
		ast.WithChild(ast.SlotNode, left),
		ast.WithChild(ast.SlotArguments, noArgs),
	)
	notNull := ast.New(ast.KindUnary, loc, ast.WithAttr(ast.AttrOperator, "not"), ast.WithChild(ast.SlotNode, isNull))
	test := ast.New(ast.KindBinary, loc,
		ast.WithAttr(ast.AttrOperator, "and"),
		ast.WithChild(ast.SlotLeft, defined),
		ast.WithChild(ast.SlotRight, notNull),
	)

	return ast.New(ast.KindConditional, left.Location(),
		ast.WithAttr(ast.AttrNullCoalesce, true),
		ast.WithChild(ast.SlotExpr1, test),
		ast.WithChild(ast.SlotExpr2, left),
		ast.WithChild(ast.SlotExpr3, right),
	)
}

func (p *state) parseTest(op lexer.Token, node *ast.Node) *ast.Node {
	nameTok := p.expect(lexer.TokName)
	name := nameTok.Value
	if second, ok := twoWordTests[name]; ok && p.test(lexer.TokName, second) {
		p.next()
		name += " " + second
	}

	args := ast.NewList(ast.KindArguments, location(nameTok))
	if p.test(lexer.TokPunct, "(") {
		args = p.parseArguments()
	}

	test := ast.New(ast.KindTest, location(op),
		ast.WithAttr(ast.AttrName, name),
		ast.WithChild(ast.SlotNode, node),
		ast.WithChild(ast.SlotArguments, args),
	)
	if op.Value == "is not" {
		return ast.New(ast.KindUnary, location(op), ast.WithAttr(ast.AttrOperator, "not"), ast.WithChild(ast.SlotNode, test))
	}
	return test
}

func (p *state) parseUnary() *ast.Node {
	tok := p.cur()

	if tok.Type == lexer.TokOperator {
		if precedence, ok := unaryOperators[tok.Value]; ok {
			p.next()
			operand := p.parseExpression(precedence)
			return p.parsePostfix(ast.New(ast.KindUnary, location(tok),
				ast.WithAttr(ast.AttrOperator, tok.Value),
				ast.WithChild(ast.SlotNode, operand),
			))
		}
	}

	if p.nextIf(lexer.TokPunct, "(") {
		expr := p.parseExpression(0)
		if !p.nextIf(lexer.TokPunct, ")") {
			p.errorf(p.cur(), "An opened parenthesis is not properly closed.")
		}
		return p.parsePostfix(expr)
	}

	return p.parsePrimary()
}

func (p *state) parsePrimary() *ast.Node {
	tok := p.next()
	loc := location(tok)

	var node *ast.Node
	switch tok.Type {
	case lexer.TokName:
		switch tok.Value {
		case "true", "TRUE":
			node = constant(loc, true)
		case "false", "FALSE":
			node = constant(loc, false)
		case "null", "NULL", "none", "NONE":
			node = constant(loc, nil)
		default:
			if p.test(lexer.TokPunct, "(") {
				node = ast.New(ast.KindFunction, loc,
					ast.WithAttr(ast.AttrName, tok.Value),
					ast.WithChild(ast.SlotArguments, p.parseArguments()),
				)
			} else {
				node = ast.New(ast.KindName, loc, ast.WithAttr(ast.AttrName, tok.Value))
			}
		}

	case lexer.TokNumber:
		node = constant(loc, parseNumber(tok.Value))

	case lexer.TokString:
		node = constant(loc, tok.Value)

	case lexer.TokPunct:
		switch tok.Value {
		case "[":
			node = p.parseArray(tok)
		case "{":
			node = p.parseHash(tok)
		default:
			p.errorf(tok, "Unexpected %s.", describe(tok))
		}

	default:
		p.errorf(tok, "Unexpected %s.", describe(tok))
	}

	return p.parsePostfix(node)
}

func constant(loc ast.Location, value any) *ast.Node {
	return ast.New(ast.KindConstant, loc, ast.WithAttr(ast.AttrValue, value))
}

func parseNumber(text string) any {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}
	f, _ := strconv.ParseFloat(text, 64)
	return f
}

func (p *state) parseArray(open lexer.Token) *ast.Node {
	var items []*ast.Node
	for !p.test(lexer.TokPunct, "]") {
		if len(items) > 0 {
			if !p.nextIf(lexer.TokPunct, ",") {
				p.errorf(p.cur(), "An array element must be followed by a comma.")
			}
			if p.test(lexer.TokPunct, "]") {
				break
			}
		}
		items = append(items, p.parseSpreadOr())
	}
	p.expect(lexer.TokPunct, "]")
	return ast.NewList(ast.KindArray, location(open), items...)
}

// parseSpreadOr parses an array or hash element, which may be spread
// with "...".
func (p *state) parseSpreadOr() *ast.Node {
	if tok := p.cur(); p.nextIf(lexer.TokOperator, "...") {
		return ast.New(ast.KindSpread, location(tok), ast.WithChild(ast.SlotNode, p.parseExpression(0)))
	}
	return p.parseExpression(0)
}

func (p *state) parseHash(open lexer.Token) *ast.Node {
	var pairs []*ast.Node
	for !p.test(lexer.TokPunct, "}") {
		if len(pairs) > 0 {
			if !p.nextIf(lexer.TokPunct, ",") {
				p.errorf(p.cur(), "A hash value must be followed by a comma.")
			}
			if p.test(lexer.TokPunct, "}") {
				break
			}
		}

		if p.test(lexer.TokOperator, "...") {
			pairs = append(pairs, p.parseSpreadOr())
			continue
		}

		tok := p.cur()
		var key *ast.Node
		switch {
		case tok.Type == lexer.TokString:
			p.next()
			key = constant(location(tok), tok.Value)
		case tok.Type == lexer.TokNumber:
			p.next()
			key = constant(location(tok), parseNumber(tok.Value))
		case tok.Type == lexer.TokName || (tok.Type == lexer.TokOperator && isWord(tok.Value)):
			p.next()
			key = constant(location(tok), tok.Value)
			if p.test(lexer.TokPunct, ",") || p.test(lexer.TokPunct, "}") {
				// {foo} is short for {foo: foo}
				value := ast.New(ast.KindName, location(tok), ast.WithAttr(ast.AttrName, tok.Value))
				pairs = append(pairs, pair(key, value))
				continue
			}
		case tok.Test(lexer.TokPunct, "("):
			p.next()
			key = p.parseExpression(0)
			p.expect(lexer.TokPunct, ")")
		default:
			p.errorf(tok, "A hash key must be a quoted string, a number, a name, or an expression enclosed in parentheses (unexpected %s).", describe(tok))
		}

		if !p.nextIf(lexer.TokPunct, ":") {
			p.errorf(p.cur(), "A hash key must be followed by a colon (:).")
		}
		pairs = append(pairs, pair(key, p.parseExpression(0)))
	}
	p.expect(lexer.TokPunct, "}")
	return ast.NewList(ast.KindHash, location(open), pairs...)
}

func pair(key, value *ast.Node) *ast.Node {
	return ast.New(ast.KindPair, key.Location(), ast.WithChild(ast.SlotKey, key), ast.WithChild(ast.SlotValue, value))
}

func isWord(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && c != '_' {
			return false
		}
	}
	return s != ""
}

func (p *state) parsePostfix(node *ast.Node) *ast.Node {
	for {
		tok := p.cur()
		if tok.Type != lexer.TokPunct {
			return node
		}
		switch tok.Value {
		case ".":
			p.next()
			node = p.parseDotAccess(tok, node)
		case "[":
			p.next()
			node = p.parseSubscript(tok, node)
		case "|":
			p.next()
			node = p.parseFilter(node)
		default:
			return node
		}
	}
}

func (p *state) parseDotAccess(dot lexer.Token, node *ast.Node) *ast.Node {
	tok := p.next()

	var attr *ast.Node
	switch {
	case tok.Type == lexer.TokName, tok.Type == lexer.TokOperator && isWord(tok.Value):
		attr = constant(location(tok), tok.Value)
	case tok.Type == lexer.TokNumber:
		attr = constant(location(tok), parseNumber(tok.Value))
	default:
		p.errorf(tok, "Expected name or number (unexpected %s).", describe(tok))
	}

	callType := ast.CallTypeAny
	var args *ast.Node
	if p.test(lexer.TokPunct, "(") {
		callType = ast.CallTypeMethod
		args = p.parseArguments()
	}

	return ast.New(ast.KindGetAttr, location(dot),
		ast.WithAttr(ast.AttrCallType, callType),
		ast.WithChild(ast.SlotNode, node),
		ast.WithChild(ast.SlotAttribute, attr),
		ast.WithChild(ast.SlotArguments, args),
	)
}

// parseSubscript handles foo[key] and the slice forms foo[a:b], foo[:b]
// and foo[a:], the latter being sugar for the slice filter.
func (p *state) parseSubscript(open lexer.Token, node *ast.Node) *ast.Node {
	loc := location(open)

	var key *ast.Node
	if p.test(lexer.TokPunct, ":") {
		key = constant(loc, int64(0))
	} else {
		key = p.parseExpression(0)
	}

	if p.nextIf(lexer.TokPunct, ":") {
		length := constant(loc, nil)
		if !p.test(lexer.TokPunct, "]") {
			length = p.parseExpression(0)
		}
		p.expect(lexer.TokPunct, "]")
		return ast.New(ast.KindFilter, loc,
			ast.WithAttr(ast.AttrName, "slice"),
			ast.WithChild(ast.SlotNode, node),
			ast.WithChild(ast.SlotArguments, ast.NewList(ast.KindArguments, loc, key, length)),
		)
	}

	p.expect(lexer.TokPunct, "]")
	return ast.New(ast.KindGetAttr, loc,
		ast.WithAttr(ast.AttrCallType, ast.CallTypeArray),
		ast.WithChild(ast.SlotNode, node),
		ast.WithChild(ast.SlotAttribute, key),
	)
}

// parseFilter parses "name" or "name(args)" after a pipe. node is the piped
// expression; it is nil for the first filter of an apply tag.
func (p *state) parseFilter(node *ast.Node) *ast.Node {
	name := p.expect(lexer.TokName)
	args := ast.NewList(ast.KindArguments, location(name))
	if p.test(lexer.TokPunct, "(") {
		args = p.parseArguments()
	}
	return ast.New(ast.KindFilter, location(name),
		ast.WithAttr(ast.AttrName, name.Value),
		ast.WithChild(ast.SlotNode, node),
		ast.WithChild(ast.SlotArguments, args),
	)
}

func (p *state) parseArguments() *ast.Node {
	open := p.expect(lexer.TokPunct, "(")
	var args []*ast.Node
	for !p.test(lexer.TokPunct, ")") {
		if len(args) > 0 {
			if !p.nextIf(lexer.TokPunct, ",") {
				p.errorf(p.cur(), "Arguments must be separated by a comma.")
			}
			if p.test(lexer.TokPunct, ")") {
				break
			}
		}

		if p.test(lexer.TokName) && (p.look(1).Test(lexer.TokPunct, "=") || p.look(1).Test(lexer.TokPunct, ":")) {
			name := p.next()
			p.next()
			args = append(args, ast.New(ast.KindNamedArgument, location(name),
				ast.WithAttr(ast.AttrName, name.Value),
				ast.WithChild(ast.SlotValue, p.parseExpression(0)),
			))
			continue
		}
		args = append(args, p.parseExpression(0))
	}
	p.expect(lexer.TokPunct, ")")
	return ast.NewList(ast.KindArguments, location(open), args...)
}

// isArrowAhead reports whether the stream starts an arrow function:
// "x =>" or "(a, b) =>".
func (p *state) isArrowAhead() bool {
	if p.test(lexer.TokName) {
		return p.look(1).Type == lexer.TokArrow
	}
	if !p.test(lexer.TokPunct, "(") {
		return false
	}
	for i := 1; ; i += 2 {
		if !p.look(i).Test(lexer.TokName) {
			return false
		}
		next := p.look(i + 1)
		switch {
		case next.Test(lexer.TokPunct, ")"):
			return p.look(i+2).Type == lexer.TokArrow
		case !next.Test(lexer.TokPunct, ","):
			return false
		}
	}
}

func (p *state) parseArrow() *ast.Node {
	start := p.cur()
	var params []*ast.Node
	if p.test(lexer.TokName) {
		tok := p.next()
		params = append(params, ast.New(ast.KindAssignName, location(tok), ast.WithAttr(ast.AttrName, tok.Value)))
	} else {
		p.expect(lexer.TokPunct, "(")
		for !p.nextIf(lexer.TokPunct, ")") {
			p.nextIf(lexer.TokPunct, ",")
			tok := p.expect(lexer.TokName)
			params = append(params, ast.New(ast.KindAssignName, location(tok), ast.WithAttr(ast.AttrName, tok.Value)))
		}
	}
	p.expect(lexer.TokArrow)
	body := p.parseExpression(0)

	return ast.New(ast.KindArrow, location(start),
		ast.WithChild(ast.SlotParams, ast.NewList(ast.KindTargets, location(start), params...)),
		ast.WithChild(ast.SlotExpr, body),
	)
}
