package rules

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/lint/policy"
	"mercator-hq/sdclint/pkg/twig/ast"
)

// Rule names, in registration order.
const (
	NameFilter      = "filter"
	NameFunction    = "function"
	NameConditional = "conditional"
	NameTest        = "test"
	NameStatement   = "statement"
	NameGetAttr     = "get_attr"
	NameName        = "name"

	// NameUnused is the end-of-walk unused variables check. It is not a
	// node rule and is run by the validator.
	NameUnused = "unused"
)

// Names returns every rule name, node rules first.
func Names() []string {
	return []string{
		NameFilter, NameFunction, NameConditional, NameTest,
		NameStatement, NameGetAttr, NameName, NameUnused,
	}
}

// PolicyNames returns the names of the rules that classify names against a
// policy table.
func PolicyNames() []string {
	return []string{NameFilter, NameFunction, NameName}
}

// Options customizes the built-in rule set.
type Options struct {
	// Policies overlays the name tables of policy rules, keyed by rule name.
	Policies map[string]policy.Overlay

	// Disabled lists rule names left out of the registry.
	Disabled []string
}

// Default builds the sealed registry of built-in rules.
func Default(opts Options) (*engine.Registry, error) {
	for name := range opts.Policies {
		if !slices.Contains(PolicyNames(), name) {
			return nil, fmt.Errorf("policy for %q: rule has no name table", name)
		}
	}
	for _, name := range opts.Disabled {
		if !slices.Contains(Names(), name) {
			return nil, fmt.Errorf("disabled rule %q: unknown rule", name)
		}
	}

	table := func(rule string, base *policy.Table) (*policy.Table, error) {
		t := base
		if o, ok := opts.Policies[rule]; ok && !o.IsZero() {
			t = base.Merge(o)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("policy for %q: %w", rule, err)
		}
		return t, nil
	}

	filters, err := table(NameFilter, filterTable())
	if err != nil {
		return nil, err
	}
	functions, err := table(NameFunction, functionTable())
	if err != nil {
		return nil, err
	}
	variables, err := table(NameName, variableTable())
	if err != nil {
		return nil, err
	}

	entries := []struct {
		kinds []ast.Kind
		rule  engine.Rule
	}{
		{[]ast.Kind{ast.KindFilter}, NewFilterRule(filters)},
		{[]ast.Kind{ast.KindFunction}, NewFunctionRule(functions)},
		{[]ast.Kind{ast.KindConditional}, NewConditionalRule()},
		{[]ast.Kind{ast.KindTest}, NewTestRule()},
		{statementKinds, NewStatementRule()},
		{[]ast.Kind{ast.KindGetAttr}, NewGetAttrRule()},
		{[]ast.Kind{ast.KindName}, NewNameRule(variables)},
	}

	reg := engine.NewRegistry()
	for _, e := range entries {
		if slices.Contains(opts.Disabled, e.rule.Name()) {
			continue
		}
		for _, kind := range e.kinds {
			if err := reg.Register(kind, e.rule); err != nil {
				return nil, err
			}
		}
	}
	return reg.Seal(), nil
}

// base carries the metadata shared by every rule.
type base struct {
	name        string
	description string
}

func (b base) Name() string        { return b.name }
func (b base) Description() string { return b.description }

// classified is embedded by rules keyed on a name table.
type classified struct {
	table *policy.Table
}

func (c classified) Policy() *policy.Table { return c.table }

// classify reports name when its verdict carries a message.
func (c classified) classify(node *ast.Node, ctx *engine.Context, name string) []diagnostic.Diagnostic {
	res := c.table.Classify(name)
	if !res.Reportable() {
		return nil
	}
	return []diagnostic.Diagnostic{ctx.Report(node, res.Severity, res.Message)}
}

// argument returns the positional argument at index, unwrapping a named
// argument to its value.
func argument(node *ast.Node, index int) *ast.Node {
	arg := node.Child(ast.SlotArguments).Child(strconv.Itoa(index))
	if arg.Is(ast.KindNamedArgument) {
		return arg.Child(ast.SlotValue)
	}
	return arg
}

// underDefaultFilter reports whether any enclosing node applies the
// default filter.
func underDefaultFilter(ctx *engine.Context) bool {
	return ctx.NearestAncestor(func(n *ast.Node) bool {
		return n.Is(ast.KindFilter) && n.Name() == "default"
	}) != nil
}

// UnusedVariables returns the aggregated unused variables diagnostic for a
// completed walk, or nil when every binding was used.
func UnusedVariables(ctx *engine.Context) []diagnostic.Diagnostic {
	if ctx.Scope == nil {
		return nil
	}
	names := ctx.Scope.Unused()
	if len(names) == 0 {
		return nil
	}
	d := diagnostic.New(ctx.ID, 0, diagnostic.Error, "Unused variables: "+strings.Join(names, ", "))
	d.Rule = NameUnused
	return []diagnostic.Diagnostic{d}
}
