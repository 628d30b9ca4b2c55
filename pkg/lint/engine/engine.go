package engine

import (
	"fmt"
	"log/slog"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/twig/ast"
)

// FailureFunc is called when a rule panics on a node.
type FailureFunc func(rule string, node *ast.Node, recovered any)

// Engine walks a tree and runs the registered rules on every node.
// An Engine holds no per-call state and may be shared.
type Engine struct {
	registry  *Registry
	logger    *slog.Logger
	onFailure FailureFunc
	disabled  map[string]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to report rule failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFailureHook registers a callback for rule failures, used for metrics.
func WithFailureHook(fn FailureFunc) Option {
	return func(e *Engine) {
		e.onFailure = fn
	}
}

// WithDisabledRules skips the named rules.
func WithDisabledRules(names ...string) Option {
	return func(e *Engine) {
		for _, name := range names {
			e.disabled[name] = true
		}
	}
}

// New creates an engine over registry. The registry is sealed if it was
// not already.
func New(registry *Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry.Seal(),
		logger:   slog.New(slog.DiscardHandler),
		disabled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the rule registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Run walks root depth first, pre-order, children in slot order. On each
// node the scope tracker is updated first, then the rules for the node
// kind run in registration order.
func (e *Engine) Run(root *ast.Node, ctx *Context) diagnostic.List {
	var out diagnostic.List
	if root == nil {
		return out
	}
	e.walk(root, ctx, &out)
	return out
}

func (e *Engine) walk(node *ast.Node, ctx *Context, out *diagnostic.List) {
	if ctx.Scope != nil {
		ctx.Scope.Enter(node, ctx.Ancestors())
	}

	for _, rule := range e.registry.RulesFor(node.Kind()) {
		if e.disabled[rule.Name()] {
			continue
		}
		*out = append(*out, e.check(rule, node, ctx)...)
	}

	ctx.push(node)
	for _, slot := range node.Slots() {
		if ctx.Scope != nil {
			ctx.Scope.EnterSlot(node, slot)
		}
		e.walk(node.Child(slot), ctx, out)
	}
	ctx.pop()

	if ctx.Scope != nil {
		ctx.Scope.Leave(node)
	}
}

// check runs one rule on one node. A panic is turned into a single
// critical diagnostic so the walk can go on.
func (e *Engine) check(rule Rule, node *ast.Node, ctx *Context) (diags []diagnostic.Diagnostic) {
	ctx.rule = rule.Name()
	defer func() {
		ctx.rule = ""
		if r := recover(); r != nil {
			e.logger.Warn("rule failed",
				"rule", rule.Name(),
				"kind", node.Kind(),
				"line", node.Line(),
				"component", ctx.ID,
				"panic", fmt.Sprint(r),
			)
			if e.onFailure != nil {
				e.onFailure(rule.Name(), node, r)
			}
			d := diagnostic.ForNode(ctx.ID, node, diagnostic.Critical, fmt.Sprintf("Rule '%s' failed: %v", rule.Name(), r))
			d.Rule = rule.Name()
			diags = []diagnostic.Diagnostic{d}
		}
	}()

	diags = rule.Check(node, ctx)
	for i := range diags {
		if diags[i].Rule == "" {
			diags[i].Rule = rule.Name()
		}
	}
	return diags
}
