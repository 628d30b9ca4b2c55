package scope

import (
	"mercator-hq/sdclint/pkg/twig/ast"
)

// The methods below let a tree walker drive the tracker. The walker calls
// Enter before inspecting a node, EnterSlot before descending into each
// child slot, and Leave once the node's children are done.

// Enter records the effect of node on scope. ancestors lists the enclosing
// nodes, nearest first.
func (t *Tracker) Enter(node *ast.Node, ancestors []*ast.Node) {
	switch node.Kind() {
	case ast.KindName:
		t.Use(node.Name())

	case ast.KindFunction:
		if t.IsMacro(node.Name()) {
			t.Use(node.Name())
		}

	case ast.KindAssignName:
		var parent, grandparent *ast.Node
		if len(ancestors) > 0 {
			parent = ancestors[0]
		}
		if len(ancestors) > 1 {
			grandparent = ancestors[1]
		}

		switch {
		case parent.Is(ast.KindFor):
			t.Declare(node.Name(), node.Line())
		case parent.Is(ast.KindTargets) && grandparent.Is(ast.KindArrow):
			t.DeclareParam(node.Name(), node.Line())
		case parent.Is(ast.KindTargets) && grandparent.Is(ast.KindMacro):
			t.Declare(node.Name(), node.Line())
		case parent.Is(ast.KindTargets) && grandparent.Is(ast.KindImport, ast.KindFrom):
			t.DeclareMacro(node.Name(), node.Line())
		default:
			t.Assign(node.Name(), node.Line())
		}
	}
}

// EnterSlot opens or closes the scopes of loops, embeds, with blocks,
// macros and arrow functions as the walker moves between their slots.
// A macro scope is isolated: it sees its parameters and imports only.
func (t *Tracker) EnterSlot(parent *ast.Node, slot string) {
	switch parent.Kind() {
	case ast.KindFor:
		switch slot {
		case ast.SlotKeyTarget, ast.SlotValueTarget, ast.SlotBody:
			if t.ensureOpen(parent, false) {
				t.Inject(LoopVariable)
			}
		case ast.SlotElse:
			t.ensureClosed(parent)
		}

	case ast.KindArrow:
		t.ensureOpen(parent, false)

	case ast.KindMacro:
		if t.ensureOpen(parent, true) {
			t.Inject(VarargsVariable)
		}

	case ast.KindEmbed, ast.KindWith:
		if slot == ast.SlotBody && t.ensureOpen(parent, parent.BoolAttr(ast.AttrOnly)) {
			t.declareHashKeys(parent.Child(ast.SlotVariables))
		}
	}
}

// declareHashKeys binds the literal keys of a "with {...}" hash.
func (t *Tracker) declareHashKeys(vars *ast.Node) {
	if !vars.Is(ast.KindHash) {
		return
	}
	for _, pair := range vars.Children() {
		key := pair.Child(ast.SlotKey)
		if name, ok := key.StringAttr(ast.AttrValue); ok && name != "" && key.IsConstant() {
			t.DeclareParam(name, key.Line())
		}
	}
}

// Leave closes any scope node opened.
func (t *Tracker) Leave(node *ast.Node) {
	switch node.Kind() {
	case ast.KindFor, ast.KindArrow, ast.KindEmbed, ast.KindWith, ast.KindMacro:
		t.ensureClosed(node)
	}
}

// ensureOpen pushes a scope owned by owner unless it is already current.
// It reports whether a scope was pushed.
func (t *Tracker) ensureOpen(owner *ast.Node, isolated bool) bool {
	if t.current.owner == owner {
		return false
	}
	t.push(isolated, owner)
	return true
}

func (t *Tracker) ensureClosed(owner *ast.Node) {
	if t.current.owner == owner {
		t.Pop()
	}
}
