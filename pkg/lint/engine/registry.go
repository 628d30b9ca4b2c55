package engine

import (
	"errors"
	"fmt"
	"slices"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/policy"
	"mercator-hq/sdclint/pkg/twig/ast"
)

var (
	// ErrRegistrySealed is returned when registering into a sealed registry.
	ErrRegistrySealed = errors.New("rule registry is sealed")

	// ErrDuplicateRule is returned when a rule name is registered twice for
	// the same kind.
	ErrDuplicateRule = errors.New("duplicate rule")
)

// Rule inspects nodes of the kinds it is registered for.
//
// Check must not modify the tree. A missing child or attribute means the
// rule does not apply and Check returns nothing.
type Rule interface {
	Name() string
	Check(node *ast.Node, ctx *Context) []diagnostic.Diagnostic
}

// PolicyRule is a rule keyed by a name policy table.
type PolicyRule interface {
	Rule
	Policy() *policy.Table
}

// Describer is implemented by rules that carry a human description.
type Describer interface {
	Description() string
}

// Definition is the static metadata of a registered rule.
type Definition struct {
	Name        string
	Description string
	Kinds       []ast.Kind
	Policy      *policy.Table
}

// Registry maps node kinds to rules. Rules are registered at startup, then
// the registry is sealed and only read, so one sealed registry can serve
// any number of concurrent validations.
type Registry struct {
	sealed bool
	byKind map[ast.Kind][]Rule
	defs   []*Definition

	// resolved holds, once sealed, the kind rules followed by the wildcard
	// rules for every registered kind.
	resolved map[ast.Kind][]Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKind: make(map[ast.Kind][]Rule),
	}
}

// Register attaches rule to kind. Use ast.KindAny to run a rule on every
// node. Rules run in registration order.
func (r *Registry) Register(kind ast.Kind, rule Rule) error {
	if r.sealed {
		return ErrRegistrySealed
	}
	if rule == nil {
		return fmt.Errorf("register %s: nil rule", kind)
	}

	name := rule.Name()
	for _, existing := range r.byKind[kind] {
		if existing.Name() == name {
			return fmt.Errorf("register %q on %s: %w", name, kind, ErrDuplicateRule)
		}
	}
	r.byKind[kind] = append(r.byKind[kind], rule)

	def := r.definition(name)
	if def == nil {
		def = &Definition{Name: name}
		if d, ok := rule.(Describer); ok {
			def.Description = d.Description()
		}
		if p, ok := rule.(PolicyRule); ok {
			def.Policy = p.Policy()
		}
		r.defs = append(r.defs, def)
	}
	def.Kinds = append(def.Kinds, kind)
	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// static registration of built-in rules.
func (r *Registry) MustRegister(kind ast.Kind, rule Rule) {
	if err := r.Register(kind, rule); err != nil {
		panic(err)
	}
}

func (r *Registry) definition(name string) *Definition {
	for _, def := range r.defs {
		if def.Name == name {
			return def
		}
	}
	return nil
}

// Seal freezes the registry. Sealing twice is a no-op.
func (r *Registry) Seal() *Registry {
	if r.sealed {
		return r
	}
	r.resolved = make(map[ast.Kind][]Rule, len(r.byKind))
	for kind := range r.byKind {
		if kind != ast.KindAny {
			r.resolved[kind] = r.resolve(kind)
		}
	}
	r.sealed = true
	return r
}

// Sealed reports whether the registry is frozen.
func (r *Registry) Sealed() bool {
	return r.sealed
}

func (r *Registry) resolve(kind ast.Kind) []Rule {
	rules := slices.Clone(r.byKind[kind])
	if kind != ast.KindAny {
		rules = append(rules, r.byKind[ast.KindAny]...)
	}
	return rules
}

// RulesFor returns the rules to run on a node of kind: the rules
// registered for the kind, then the wildcard rules, each in registration
// order. The returned slice must not be modified.
func (r *Registry) RulesFor(kind ast.Kind) []Rule {
	if r.sealed {
		if rules, ok := r.resolved[kind]; ok {
			return rules
		}
		return r.byKind[ast.KindAny]
	}
	return r.resolve(kind)
}

// Definitions lists registered rules in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	for i, def := range r.defs {
		out[i] = *def
		out[i].Kinds = slices.Clone(def.Kinds)
	}
	return out
}

// Len returns the number of distinct rules.
func (r *Registry) Len() int {
	return len(r.defs)
}
