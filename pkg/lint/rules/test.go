package rules

import (
	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/twig/ast"
)

const hintStrictVariables = "Not needed in Drupal because strict_variables=false."

// TestRule checks "is" tests.
type TestRule struct {
	base
}

// NewTestRule creates the test rule.
func NewTestRule() *TestRule {
	return &TestRule{base: base{name: NameTest, description: "Twig tests."}}
}

// Check implements engine.Rule.
func (r *TestRule) Check(node *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	report := func(sev diagnostic.Severity, msg string) []diagnostic.Diagnostic {
		return []diagnostic.Diagnostic{ctx.Report(node, sev, msg)}
	}

	switch node.Name() {
	case "constant":
		return report(diagnostic.Error, hintSandboxed)
	case "same as":
		return report(diagnostic.Error, "Equivalent to strict comparison in PHP, often too strict.")
	case "null", "none":
		if parent := ctx.Parent(); parent.Is(ast.KindUnary) && parent.Attr(ast.AttrOperator) == "not" {
			return report(diagnostic.Warning, "Use `|default(foo)` filter instead of null ternary `??`.")
		}
		return report(diagnostic.Warning, hintStrictVariables)
	case "defined":
		if underDefaultFilter(ctx) {
			return nil
		}
		if parent := ctx.Parent(); parent.Is(ast.KindBinary) && parent.Attr(ast.AttrOperator) == "and" {
			return nil
		}
		return report(diagnostic.Warning, hintStrictVariables)
	case "empty":
		return report(diagnostic.Warning, "The exact same as just testing the variable, empty is not needed.")
	}
	return nil
}
