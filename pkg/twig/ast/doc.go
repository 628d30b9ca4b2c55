// Package ast provides the abstract syntax tree for Twig component templates.
//
// The tree is deliberately generic: every element is a *Node carrying a Kind
// discriminant, an ordered set of named child slots, a flat attribute map and
// a source Location. Rules written against the tree query slots and
// attributes by name instead of relying on concrete node types, which keeps
// the linter independent from the parser's internals.
//
// # Core Types
//
// Node: one template element (statement, expression, text)
//
// Kind: discriminant such as KindFilter, KindFunction or KindConditional
//
// Family: coarse grouping of kinds (statement, loop, embedding, call, ...)
//
// Location: source position (line, column)
//
// # Immutability
//
// Nodes are assembled once with New and NewList and never change afterwards.
// There is no mutation API; analyses that need context about a node's
// ancestors keep their own stack while walking.
//
// # Traversal
//
// Walk visits the tree in pre-order, depth first, with children in slot
// order. Visitors receive both Enter and Leave callbacks:
//
//	err := ast.Walk(root, myVisitor)
//
// Inspect is the closure form:
//
//	ast.Inspect(root, func(n *ast.Node) bool {
//	    if n.Kind() == ast.KindFilter {
//	        fmt.Println(n.Name(), n.Line())
//	    }
//	    return true
//	})
//
// # Slot conventions
//
// Slots are named after their role: a filter has "node" (the piped value) and
// "arguments"; a conditional has "expr1", "expr2" and optionally "expr3"; a
// set statement visits "values" before "targets" so that the right-hand side
// is analyzed before the assigned names come into scope.
package ast
