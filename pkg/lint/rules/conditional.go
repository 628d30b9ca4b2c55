package rules

import (
	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/twig/ast"
)

// ConditionalRule checks ternary expressions.
type ConditionalRule struct {
	base
}

// NewConditionalRule creates the conditional rule.
func NewConditionalRule() *ConditionalRule {
	return &ConditionalRule{base: base{name: NameConditional, description: "Ternary expressions."}}
}

// Check implements engine.Rule. Conditionals without an else branch and
// the expansion of "??" are not checked.
func (r *ConditionalRule) Check(node *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	if node.BoolAttr(ast.AttrNullCoalesce) || !node.HasChild(ast.SlotExpr3) {
		return nil
	}

	expr1 := node.Child(ast.SlotExpr1)
	expr2 := node.Child(ast.SlotExpr2)
	expr3 := node.Child(ast.SlotExpr3)

	var diags []diagnostic.Diagnostic

	if expr3.Is(ast.KindConditional) && !expr3.BoolAttr(ast.AttrNullCoalesce) {
		diags = append(diags, ctx.Report(node, diagnostic.Error, "No chained ternary"))
	}

	if expr1.Is(ast.KindName) && expr2.Is(ast.KindName) && expr1.Name() == expr2.Name() {
		diags = append(diags, ctx.Report(node, diagnostic.Warning,
			"Use `|default(foo)` filter instead of shorthand ternary `?:`"))
	}

	if expr2.IsBool() && expr3.IsBool() &&
		expr2.Attr(ast.AttrValue) == true && expr3.Attr(ast.AttrValue) == false {
		diags = append(diags, ctx.Report(node, diagnostic.Notice, "Ternary test with boolean result"))
	}
	return diags
}
