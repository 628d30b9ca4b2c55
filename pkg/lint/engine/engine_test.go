package engine

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/policy"
	"mercator-hq/sdclint/pkg/twig/ast"
	"mercator-hq/sdclint/pkg/twig/parser"
)

// funcRule adapts a function to the Rule interface.
type funcRule struct {
	name string
	fn   func(node *ast.Node, ctx *Context) []diagnostic.Diagnostic
}

func (r funcRule) Name() string { return r.name }

func (r funcRule) Check(node *ast.Node, ctx *Context) []diagnostic.Diagnostic {
	return r.fn(node, ctx)
}

type tableRule struct {
	funcRule
	table *policy.Table
}

func (r tableRule) Policy() *policy.Table { return r.table }
func (r tableRule) Description() string   { return "Rules around names." }

func record(name string, seen *[]string) funcRule {
	return funcRule{name: name, fn: func(node *ast.Node, _ *Context) []diagnostic.Diagnostic {
		*seen = append(*seen, name+":"+string(node.Kind()))
		return nil
	}}
}

func mustParse(t *testing.T, source string) *ast.Node {
	t.Helper()
	root, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", source, err)
	}
	return root
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	rule := funcRule{name: "one", fn: func(*ast.Node, *Context) []diagnostic.Diagnostic { return nil }}

	if err := reg.Register(ast.KindFilter, rule); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(ast.KindFilter, rule); !errors.Is(err, ErrDuplicateRule) {
		t.Errorf("Register() duplicate error = %v, want ErrDuplicateRule", err)
	}
	if err := reg.Register(ast.KindFunction, rule); err != nil {
		t.Errorf("Register() same rule on another kind error = %v", err)
	}
	if err := reg.Register(ast.KindFilter, nil); err == nil {
		t.Error("Register(nil) error = nil")
	}

	reg.Seal()
	if err := reg.Register(ast.KindTest, funcRule{name: "late"}); !errors.Is(err, ErrRegistrySealed) {
		t.Errorf("Register() after Seal error = %v, want ErrRegistrySealed", err)
	}

	defs := reg.Definitions()
	if len(defs) != 1 {
		t.Fatalf("Definitions() len = %d, want 1", len(defs))
	}
	if want := []ast.Kind{ast.KindFilter, ast.KindFunction}; !reflect.DeepEqual(defs[0].Kinds, want) {
		t.Errorf("Definitions()[0].Kinds = %v, want %v", defs[0].Kinds, want)
	}
}

func TestRegistry_Definitions(t *testing.T) {
	table := &policy.Table{Family: "Twig filter", Allow: []string{"upper"}}
	reg := NewRegistry()
	reg.MustRegister(ast.KindFilter, tableRule{funcRule: funcRule{name: "filter"}, table: table})

	def := reg.Definitions()[0]
	if def.Policy != table {
		t.Error("Definition.Policy not taken from PolicyRule")
	}
	if def.Description != "Rules around names." {
		t.Errorf("Definition.Description = %q", def.Description)
	}
}

func TestRegistry_RulesFor(t *testing.T) {
	var seen []string
	reg := NewRegistry()
	reg.MustRegister(ast.KindAny, record("any", &seen))
	reg.MustRegister(ast.KindFilter, record("first", &seen))
	reg.MustRegister(ast.KindFilter, record("second", &seen))

	names := func(rules []Rule) []string {
		var out []string
		for _, r := range rules {
			out = append(out, r.Name())
		}
		return out
	}

	for _, sealed := range []bool{false, true} {
		if sealed {
			reg.Seal()
		}
		if got, want := names(reg.RulesFor(ast.KindFilter)), []string{"first", "second", "any"}; !reflect.DeepEqual(got, want) {
			t.Errorf("RulesFor(filter) sealed=%v = %v, want %v", sealed, got, want)
		}
		if got, want := names(reg.RulesFor(ast.KindText)), []string{"any"}; !reflect.DeepEqual(got, want) {
			t.Errorf("RulesFor(text) sealed=%v = %v, want %v", sealed, got, want)
		}
	}
}

func TestEngine_PreOrder(t *testing.T) {
	var seen []string
	reg := NewRegistry()
	reg.MustRegister(ast.KindAny, record("r", &seen))

	root := mustParse(t, "{{ a|upper }}")
	New(reg).Run(root, NewContext("", "", nil))

	want := []string{
		"r:template", "r:body", "r:print", "r:filter", "r:name", "r:arguments",
	}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("visit order = %v, want %v", seen, want)
	}
}

func TestEngine_RuleOrderPerNode(t *testing.T) {
	var seen []string
	reg := NewRegistry()
	reg.MustRegister(ast.KindName, record("b", &seen))
	reg.MustRegister(ast.KindName, record("a", &seen))

	New(reg).Run(mustParse(t, "{{ x }}{{ y }}"), NewContext("", "", nil))

	want := []string{"b:name", "a:name", "b:name", "a:name"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("rule order = %v, want %v", seen, want)
	}
}

func TestEngine_FaultIsolation(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(ast.KindName, funcRule{name: "boom", fn: func(node *ast.Node, _ *Context) []diagnostic.Diagnostic {
		if node.Name() == "bad" {
			panic("crafted node")
		}
		return nil
	}})
	reg.MustRegister(ast.KindName, funcRule{name: "echo", fn: func(node *ast.Node, ctx *Context) []diagnostic.Diagnostic {
		return []diagnostic.Diagnostic{ctx.Report(node, diagnostic.Notice, "saw "+node.Name())}
	}})

	var failures []string
	eng := New(reg, WithFailureHook(func(rule string, node *ast.Node, _ any) {
		failures = append(failures, rule+"@"+node.Name())
	}))

	got := eng.Run(mustParse(t, "{{ good }}\n{{ bad }}\n{{ after }}"), NewContext("demo", "", nil))

	want := []string{"saw good", "Rule 'boom' failed: crafted node", "saw bad", "saw after"}
	if !reflect.DeepEqual(got.Messages(), want) {
		t.Fatalf("Run() = %v, want %v", got.Messages(), want)
	}

	failure := got[1]
	if failure.Severity != diagnostic.Critical || failure.Line != 2 || failure.Rule != "boom" || failure.ID != "demo" {
		t.Errorf("failure diagnostic = %+v", failure)
	}
	if !reflect.DeepEqual(failures, []string{"boom@bad"}) {
		t.Errorf("failure hook calls = %v", failures)
	}
	if got[0].Rule != "echo" {
		t.Errorf("Rule not stamped on diagnostics: %+v", got[0])
	}
}

func TestEngine_DisabledRules(t *testing.T) {
	var seen []string
	reg := NewRegistry()
	reg.MustRegister(ast.KindName, record("kept", &seen))
	reg.MustRegister(ast.KindName, record("dropped", &seen))

	New(reg, WithDisabledRules("dropped")).Run(mustParse(t, "{{ x }}"), NewContext("", "", nil))

	if want := []string{"kept:name"}; !reflect.DeepEqual(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
}

func TestContext_Ancestors(t *testing.T) {
	var chains []string
	reg := NewRegistry()
	reg.MustRegister(ast.KindName, funcRule{name: "chain", fn: func(node *ast.Node, ctx *Context) []diagnostic.Diagnostic {
		var kinds []string
		for _, a := range ctx.Ancestors() {
			kinds = append(kinds, string(a.Kind()))
		}
		chains = append(chains, strings.Join(kinds, "<"))

		if ctx.Parent() != ctx.Ancestors()[0] {
			t.Error("Parent() differs from Ancestors()[0]")
		}
		if f := ctx.NearestAncestor(func(n *ast.Node) bool { return n.Is(ast.KindFilter) }); f == nil || f.Name() != "upper" {
			t.Errorf("NearestAncestor(filter) = %v", f)
		}
		return nil
	}})

	New(reg).Run(mustParse(t, "{{ a|upper }}"), NewContext("", "", nil))

	if want := []string{"filter<print<body<template"}; !reflect.DeepEqual(chains, want) {
		t.Errorf("ancestors = %v, want %v", chains, want)
	}
}

func TestContext_ScopeFollowsWalk(t *testing.T) {
	var known []bool
	reg := NewRegistry()
	reg.MustRegister(ast.KindName, funcRule{name: "known", fn: func(node *ast.Node, ctx *Context) []diagnostic.Diagnostic {
		known = append(known, ctx.Scope.Known(node.Name()))
		return nil
	}})

	source := "{% for item in items %}{{ item }}{{ loop.index }}{% endfor %}{{ item }}{{ title }}"
	ctx := NewContext("", source, []Input{{Name: "items", Type: "list"}, {Name: "title", Type: "string"}})
	New(reg).Run(mustParse(t, source), ctx)

	if want := []bool{true, true, true, false, true}; !reflect.DeepEqual(known, want) {
		t.Errorf("known = %v, want %v", known, want)
	}
	if got := ctx.InputType("items"); got != "list" {
		t.Errorf("InputType(items) = %q, want list", got)
	}
	if got := ctx.InputType("nope"); got != "" {
		t.Errorf("InputType(nope) = %q, want empty", got)
	}
}
