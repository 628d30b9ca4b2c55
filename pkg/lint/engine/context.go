package engine

import (
	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/scope"
	"mercator-hq/sdclint/pkg/twig/ast"
)

// Input is a declared component input and its type classifier (string,
// number, boolean, enum, list, object or slot).
type Input struct {
	Name string
	Type string
}

// Context carries the state of one validation. It is created per call and
// never shared between goroutines.
type Context struct {
	// ID identifies the validated component; empty for bare templates.
	ID string

	// Source is the template text, used for excerpts.
	Source string

	// Inputs are the declared component inputs in definition order.
	Inputs []Input

	// Scope tracks declarations and uses. The engine keeps it in step with
	// the walk.
	Scope *scope.Tracker

	stack []*ast.Node
	rule  string
}

// NewContext creates a context whose scope is seeded with inputs and the
// default injected names.
func NewContext(id, source string, inputs []Input, opts ...scope.Option) *Context {
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	return &Context{
		ID:     id,
		Source: source,
		Inputs: inputs,
		Scope:  scope.New(names, scope.DefaultInjected, opts...),
	}
}

// InputType returns the type of a declared input, or "" if name is not an
// input.
func (c *Context) InputType(name string) string {
	for _, in := range c.Inputs {
		if in.Name == name {
			return in.Type
		}
	}
	return ""
}

// Parent returns the node enclosing the one being checked, or nil at the
// root.
func (c *Context) Parent() *ast.Node {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

// Ancestors returns the enclosing nodes, nearest first.
func (c *Context) Ancestors() []*ast.Node {
	out := make([]*ast.Node, len(c.stack))
	for i, n := range c.stack {
		out[len(c.stack)-1-i] = n
	}
	return out
}

// NearestAncestor returns the closest enclosing node matching fn, or nil.
func (c *Context) NearestAncestor(fn func(*ast.Node) bool) *ast.Node {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if fn(c.stack[i]) {
			return c.stack[i]
		}
	}
	return nil
}

// Rule returns the name of the rule currently running.
func (c *Context) Rule() string {
	return c.rule
}

// Report builds a template diagnostic for node attributed to the current
// component and rule.
func (c *Context) Report(node *ast.Node, severity diagnostic.Severity, message string) diagnostic.Diagnostic {
	d := diagnostic.ForNode(c.ID, node, severity, message)
	d.Rule = c.rule
	return d
}

func (c *Context) push(node *ast.Node) {
	c.stack = append(c.stack, node)
}

func (c *Context) pop() {
	c.stack = c.stack[:len(c.stack)-1]
}
