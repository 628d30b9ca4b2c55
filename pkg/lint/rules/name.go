package rules

import (
	"fmt"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/lint/policy"
	"mercator-hq/sdclint/pkg/twig/ast"
)

// NameRule checks variable references: the variable table, then whether
// the name is visible in the current scope.
type NameRule struct {
	base
	classified
}

// NewNameRule creates the name rule over table.
func NewNameRule(table *policy.Table) *NameRule {
	return &NameRule{
		base:       base{name: NameName, description: "Variable names and unknown variables."},
		classified: classified{table: table},
	}
}

// Check implements engine.Rule.
func (r *NameRule) Check(node *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	name := node.Name()
	if name == "" {
		return nil
	}

	diags := r.classify(node, ctx, name)

	if ctx.Scope == nil || ctx.Scope.Known(name) || guarded(node, ctx) {
		return diags
	}

	msg := fmt.Sprintf("Unknown variable: '%s'.", name)
	if hint := ctx.Scope.DidYouMean(name); hint != "" {
		msg += " " + hint
	}
	return append(diags, ctx.Report(node, diagnostic.Error, msg))
}

// guarded reports whether the reference is protected against an undefined
// value: the operand of "is defined", the input of a default filter, or the
// left side of "??".
func guarded(node *ast.Node, ctx *engine.Context) bool {
	parent := ctx.Parent()
	switch {
	case parent.Is(ast.KindTest) && parent.Name() == "defined":
		return true
	case parent.Is(ast.KindFilter) && parent.Name() == "default" && parent.Child(ast.SlotNode) == node:
		return true
	}

	coalesce := ctx.NearestAncestor(func(n *ast.Node) bool {
		return n.Is(ast.KindConditional) && n.BoolAttr(ast.AttrNullCoalesce)
	})
	return coalesce != nil && coalesce.Child(ast.SlotExpr2) == node
}
