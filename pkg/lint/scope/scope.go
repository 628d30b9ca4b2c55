package scope

import (
	"maps"
	"slices"
)

// BindingKind tells how a name came into scope.
type BindingKind int

const (
	// Local names are introduced by the template: set, for targets.
	Local BindingKind = iota
	// Input names are the declared props and slots of the component.
	Input
	// Injected names are provided by the runtime (_self, attributes, loop).
	Injected
	// Param names are arrow function parameters and the keys of a
	// "with" hash. They are never reported as unused.
	Param
	// Macro names come from import and from tags. They are never reported
	// as unused.
	Macro
)

func (k BindingKind) String() string {
	switch k {
	case Input:
		return "input"
	case Injected:
		return "injected"
	case Param:
		return "param"
	case Macro:
		return "macro"
	default:
		return "local"
	}
}

// Binding is one declared name.
type Binding struct {
	Name string
	Line int
	Seq  int
	Used bool
	Kind BindingKind
}

// Scope is one lexical level. An isolated scope does not see its parents,
// only injected names.
type Scope struct {
	bindings map[string]*Binding
	parent   *Scope
	isolated bool
	owner    any
}

func newScope(parent *Scope, isolated bool, owner any) *Scope {
	return &Scope{
		bindings: make(map[string]*Binding),
		parent:   parent,
		isolated: isolated,
		owner:    owner,
	}
}

// DefaultInjected lists the names every component template receives.
var DefaultInjected = []string{
	"_self",
	"_key",
	"_context",
	"_charset",
	"attributes",
	"variant",
	"componentMetadata",
}

// Names injected in the body of every for loop and macro.
const (
	LoopVariable    = "loop"
	VarargsVariable = "varargs"
)

// Tracker records declarations and uses across one template walk.
// A Tracker belongs to a single validation and is not safe for concurrent
// use.
type Tracker struct {
	root     *Scope
	current  *Scope
	injected map[string]*Binding
	inputs   []*Binding
	log      []*Binding
	seq      int

	reportUnusedInputs bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithReportUnusedInputs makes Unused list declared inputs that are never
// referenced.
func WithReportUnusedInputs(report bool) Option {
	return func(t *Tracker) {
		t.reportUnusedInputs = report
	}
}

// New creates a tracker seeded with the component inputs, in definition
// order, and the injected names.
func New(inputs, injected []string, opts ...Option) *Tracker {
	t := &Tracker{
		injected: make(map[string]*Binding, len(injected)),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.root = newScope(nil, false, nil)
	t.current = t.root

	for _, name := range injected {
		t.injected[name] = &Binding{Name: name, Used: true, Kind: Injected}
	}
	for _, name := range inputs {
		if _, ok := t.root.bindings[name]; ok {
			continue
		}
		b := &Binding{Name: name, Kind: Input, Used: !t.reportUnusedInputs}
		t.root.bindings[name] = b
		t.inputs = append(t.inputs, b)
	}
	return t
}

// Push opens a child scope.
func (t *Tracker) Push() {
	t.push(false, nil)
}

// PushIsolated opens a scope that only sees injected names, as used by
// "with ... only".
func (t *Tracker) PushIsolated() {
	t.push(true, nil)
}

func (t *Tracker) push(isolated bool, owner any) {
	t.current = newScope(t.current, isolated, owner)
}

// Pop closes the current scope. The root scope is never popped.
func (t *Tracker) Pop() {
	if t.current.parent != nil {
		t.current = t.current.parent
	}
}

// Depth returns the number of open scopes above the root.
func (t *Tracker) Depth() int {
	depth := 0
	for s := t.current; s.parent != nil; s = s.parent {
		depth++
	}
	return depth
}

// Declare binds name in the current scope, shadowing any outer binding.
func (t *Tracker) Declare(name string, line int) *Binding {
	return t.declare(name, line, Local)
}

// DeclareParam binds an arrow function parameter in the current scope.
func (t *Tracker) DeclareParam(name string, line int) *Binding {
	return t.declare(name, line, Param)
}

// DeclareMacro binds an imported macro or macro namespace in the current
// scope.
func (t *Tracker) DeclareMacro(name string, line int) *Binding {
	return t.declare(name, line, Macro)
}

// Inject binds a runtime-provided name in the current scope. It is always
// considered used.
func (t *Tracker) Inject(name string) {
	t.current.bindings[name] = &Binding{Name: name, Used: true, Kind: Injected}
}

func (t *Tracker) declare(name string, line int, kind BindingKind) *Binding {
	t.seq++
	b := &Binding{Name: name, Line: line, Seq: t.seq, Kind: kind}
	t.current.bindings[name] = b
	t.log = append(t.log, b)
	return b
}

// Assign binds name for a set statement: a visible binding is reused,
// otherwise the name is declared in the current scope.
func (t *Tracker) Assign(name string, line int) *Binding {
	if b := t.Lookup(name); b != nil && b.Kind != Injected {
		return b
	}
	return t.Declare(name, line)
}

// Lookup finds the binding visible for name, or nil.
func (t *Tracker) Lookup(name string) *Binding {
	for s := t.current; s != nil; s = s.parent {
		if b, ok := s.bindings[name]; ok {
			return b
		}
		if s.isolated {
			break
		}
	}
	return t.injected[name]
}

// IsMacro reports whether name resolves to an imported macro.
func (t *Tracker) IsMacro(name string) bool {
	b := t.Lookup(name)
	return b != nil && b.Kind == Macro
}

// Known reports whether name is visible.
func (t *Tracker) Known(name string) bool {
	return t.Lookup(name) != nil
}

// Use marks the visible binding of name as used. It reports whether the
// name was found.
func (t *Tracker) Use(name string) bool {
	b := t.Lookup(name)
	if b == nil {
		return false
	}
	b.Used = true
	return true
}

// Visible returns the names visible from the current scope, sorted.
func (t *Tracker) Visible() []string {
	names := make(map[string]struct{})
	for s := t.current; s != nil; s = s.parent {
		for name := range s.bindings {
			names[name] = struct{}{}
		}
		if s.isolated {
			break
		}
	}
	for name := range t.injected {
		names[name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(names))
}

// Unused returns the names declared by the template and never used, in
// first declaration order, each name once. Bindings of the same name in
// sibling scopes are merged: a name is unused only when none of its
// bindings was used. Arrow parameters are not reported. When unused inputs
// are reported they follow, in definition order.
func (t *Tracker) Unused() []string {
	used := make(map[string]bool)
	for _, b := range t.log {
		if b.Kind == Local && b.Used {
			used[b.Name] = true
		}
	}

	var names []string
	seen := make(map[string]bool)
	for _, b := range t.log {
		if b.Kind != Local || used[b.Name] || seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		names = append(names, b.Name)
	}

	if t.reportUnusedInputs {
		for _, b := range t.inputs {
			if !b.Used && !seen[b.Name] {
				seen[b.Name] = true
				names = append(names, b.Name)
			}
		}
	}
	return names
}

// Declarations returns every template declaration in order.
func (t *Tracker) Declarations() []Binding {
	out := make([]Binding, len(t.log))
	for i, b := range t.log {
		out[i] = *b
	}
	return out
}
