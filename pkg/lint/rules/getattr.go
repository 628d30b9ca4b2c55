package rules

import (
	"strings"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/twig/ast"
)

// GetAttrRule checks attribute access.
type GetAttrRule struct {
	base
}

// NewGetAttrRule creates the attribute access rule.
func NewGetAttrRule() *GetAttrRule {
	return &GetAttrRule{base: base{name: NameGetAttr, description: "Attribute and item access."}}
}

// Check implements engine.Rule.
func (r *GetAttrRule) Check(node *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	callType, _ := node.StringAttr(ast.AttrCallType)
	attr := node.Child(ast.SlotAttribute)
	key, _ := attr.Attr(ast.AttrValue).(string)

	var diags []diagnostic.Diagnostic
	switch callType {
	case ast.CallTypeMethod:
		if !isMacroCall(node, ctx) {
			diags = append(diags, ctx.Report(node, diagnostic.Error, "Direct method calls are forbidden."))
		}
	case ast.CallTypeArray:
		if attr.IsString() && strings.HasPrefix(key, "#") {
			diags = append(diags, ctx.Report(node, diagnostic.Warning,
				"Keep slots opaque by not manipulating renderables in the template."))
		}
	}

	if target := node.Child(ast.SlotNode); target.Is(ast.KindName) && target.Name() == "loop" && key == "parent" {
		diags = append(diags, ctx.Report(node, diagnostic.Error, "Breaking the flow. Bad performance."))
	}
	return diags
}

// isMacroCall reports whether node calls a macro through an imported
// namespace or _self.
func isMacroCall(node *ast.Node, ctx *engine.Context) bool {
	target := node.Child(ast.SlotNode)
	if !target.Is(ast.KindName) {
		return false
	}
	return target.Name() == "_self" || ctx.Scope != nil && ctx.Scope.IsMacro(target.Name())
}
