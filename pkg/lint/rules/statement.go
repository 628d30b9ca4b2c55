package rules

import (
	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/twig/ast"
)

var statementKinds = []ast.Kind{
	ast.KindSandbox, ast.KindDo, ast.KindFlush,
	ast.KindExtends, ast.KindInclude, ast.KindEmbed,
}

const hintHardEmbed = "Use slots instead of hard embedding a component in the template"

// StatementRule checks tags that have no name table.
type StatementRule struct {
	base
}

// NewStatementRule creates the statement rule.
func NewStatementRule() *StatementRule {
	return &StatementRule{base: base{name: NameStatement, description: "Twig tags."}}
}

// Check implements engine.Rule.
func (r *StatementRule) Check(node *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	var (
		sev diagnostic.Severity
		msg string
	)
	switch node.Kind() {
	case ast.KindSandbox:
		sev, msg = diagnostic.Error, "Bad architecture for sandbox: Component calling components."
	case ast.KindDo:
		// {% do flag ? value %} is parsed as a do tag.
		if expr := node.Child(ast.SlotExpr); expr.Is(ast.KindConditional) && !expr.BoolAttr(ast.AttrNullCoalesce) {
			return nil
		}
		sev, msg = diagnostic.Warning, "Careful with do usage."
	case ast.KindFlush:
		sev, msg = diagnostic.Error, "Cache management outside of Drupal."
	case ast.KindExtends:
		sev, msg = diagnostic.Error, hintHardEmbed+"."
	case ast.KindInclude:
		sev, msg = diagnostic.Warning, hintHardEmbed+" with 'include'."
	case ast.KindEmbed:
		sev, msg = diagnostic.Warning, hintHardEmbed+" with 'embed'."
	default:
		return nil
	}
	return []diagnostic.Diagnostic{ctx.Report(node, sev, msg)}
}
