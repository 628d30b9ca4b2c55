package rules

import (
	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/lint/policy"
	"mercator-hq/sdclint/pkg/twig/ast"
)

// FunctionRule checks function calls against the name table.
type FunctionRule struct {
	base
	classified
}

// NewFunctionRule creates the function rule over table.
func NewFunctionRule(table *policy.Table) *FunctionRule {
	return &FunctionRule{
		base:       base{name: NameFunction, description: "Function names and placement."},
		classified: classified{table: table},
	}
}

// Check implements engine.Rule.
func (r *FunctionRule) Check(node *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	name := node.Name()
	if name == "" || ctx.Scope != nil && ctx.Scope.IsMacro(name) {
		return nil
	}

	diags := r.classify(node, ctx, name)

	// random() output changes on every render, a default filter keeps it
	// as a fallback only.
	if name == "random" && !underDefaultFilter(ctx) {
		diags = append(diags, ctx.Report(node, diagnostic.Error,
			"Function 'random()' must be used in a 'default()' filter!"))
	}
	return diags
}
