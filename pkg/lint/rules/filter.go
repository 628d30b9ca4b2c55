package rules

import (
	"fmt"
	"slices"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/lint/policy"
	"mercator-hq/sdclint/pkg/twig/ast"
)

// setAttributeAfter lists the filters allowed right before set_attribute.
var setAttributeAfter = []string{"map", "reverse", "split", "first", "last", "default", "set_attribute"}

type filterCheck func(node, piped *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic

// FilterRule checks filter applications: the name table, then structural
// checks for a few filters.
type FilterRule struct {
	base
	classified
	checks map[string]filterCheck
}

// NewFilterRule creates the filter rule over table.
func NewFilterRule(table *policy.Table) *FilterRule {
	r := &FilterRule{
		base:       base{name: NameFilter, description: "Filter names and filter arguments."},
		classified: classified{table: table},
	}
	r.checks = map[string]filterCheck{
		"abs":           checkAbs,
		"add_class":     checkAddClass,
		"clean_id":      checkCleanID,
		"default":       checkDefault,
		"set_attribute": checkSetAttribute,
		"t":             checkTrans,
		"trans":         checkTrans,
	}
	return r
}

// Check implements engine.Rule.
func (r *FilterRule) Check(node *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	name := node.Name()
	if name == "" {
		return nil
	}

	diags := r.classify(node, ctx, name)

	// Filters of an apply tag have nothing piped in.
	piped := node.Child(ast.SlotNode)
	if piped == nil {
		return diags
	}
	if check, ok := r.checks[name]; ok {
		diags = append(diags, check(node, piped, ctx)...)
	}
	return diags
}

func checkAbs(node, piped *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	switch typ := piped.ValueType(); typ {
	case "string", "boolean", "null":
		return []diagnostic.Diagnostic{ctx.Report(node, diagnostic.Error,
			fmt.Sprintf("Filter 'abs' can only be applied on number, %s found!", typ))}
	}
	return nil
}

func checkAddClass(node, piped *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	if piped.IsString() {
		return []diagnostic.Diagnostic{ctx.Report(node, diagnostic.Error,
			"Filter 'add_class' can not be used on 'string', only 'mapping'!")}
	}
	return nil
}

func checkCleanID(node, piped *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	if piped.IsConstant() && !piped.IsString() {
		return []diagnostic.Diagnostic{ctx.Report(node, diagnostic.Error,
			"Filter 'clean_id' can only be applied on string!")}
	}
	return nil
}

func checkDefault(node, piped *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic

	switch {
	case piped.IsBool() || piped.IsNull():
		diags = append(diags, ctx.Report(node, diagnostic.Error,
			"Filter 'default' is not for booleans or null!"))
	case piped.Is(ast.KindName) && ctx.InputType(piped.Name()) == "boolean":
		diags = append(diags, ctx.Report(node, diagnostic.Error,
			"Don't use 'default' filter on boolean."))
	}

	arg := argument(node, 0)
	switch {
	case arg.Is(ast.KindName) && piped.Is(ast.KindName) && arg.Name() == piped.Name():
		diags = append(diags, ctx.Report(node, diagnostic.Warning,
			"Filter 'default' return the value itself!"))
	case arg.IsBool():
		diags = append(diags, ctx.Report(node, diagnostic.Warning,
			"Don't use 'default' filter with boolean."))
	}
	return diags
}

func checkSetAttribute(node, piped *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic

	if piped.Is(ast.KindFilter) && !slices.Contains(setAttributeAfter, piped.Name()) {
		diags = append(diags, ctx.Report(node, diagnostic.Error,
			fmt.Sprintf("Filter 'set_attribute' do not allow previous filter: '%s'!", piped.Name())))
	}

	value := argument(node, 1)
	switch {
	case value.Is(ast.KindHash):
		diags = append(diags, ctx.Report(node, diagnostic.Error,
			"Filter 'set_attribute' second argument can not be a mapping!"))
	case value.IsNull():
		diags = append(diags, ctx.Report(node, diagnostic.Error,
			"Filter 'set_attribute' second argument can not be null!"))
	}
	return diags
}

func checkTrans(node, piped *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	switch {
	case piped.Is(ast.KindName, ast.KindGetAttr):
		return []diagnostic.Diagnostic{ctx.Report(node, diagnostic.Notice,
			"Filter 'trans' or 't' unsafe translation, do not translate variables!")}
	case piped.IsString() && piped.Attr(ast.AttrValue) == "":
		return []diagnostic.Diagnostic{ctx.Report(node, diagnostic.Notice,
			"Filter 'trans' or 't' is applied on an empty string")}
	case piped.Is(ast.KindArray, ast.KindHash):
		return []diagnostic.Diagnostic{ctx.Report(node, diagnostic.Error,
			"Filter 'trans' or 't' can only be applied on string!")}
	}
	return nil
}
