package ast

import "errors"

// SkipChildren may be returned by Visitor.Enter to prevent Walk from
// descending into the node's children. Leave is still called.
var SkipChildren = errors.New("skip children")

// Visitor provides an interface for traversing the tree.
// Enter is called before the node's children are visited and Leave after.
type Visitor interface {
	Enter(node *Node) error
	Leave(node *Node) error
}

// Walk traverses the tree rooted at node in pre-order, depth first, visiting
// children in slot order. It returns the first error encountered other than
// SkipChildren, or nil if traversal completes.
func Walk(node *Node, visitor Visitor) error {
	if node == nil {
		return nil
	}

	err := visitor.Enter(node)
	switch {
	case errors.Is(err, SkipChildren):
	case err != nil:
		return err
	default:
		for _, s := range node.slots {
			if err := Walk(s.node, visitor); err != nil {
				return err
			}
		}
	}

	return visitor.Leave(node)
}

type inspector func(*Node) bool

func (f inspector) Enter(node *Node) error {
	if !f(node) {
		return SkipChildren
	}
	return nil
}

func (f inspector) Leave(*Node) error { return nil }

// Inspect calls fn for every node in pre-order. If fn returns false the
// node's children are skipped.
func Inspect(node *Node, fn func(*Node) bool) {
	_ = Walk(node, inspector(fn))
}

// Find returns every node of the given kind in pre-order.
func Find(node *Node, kind Kind) []*Node {
	var found []*Node
	Inspect(node, func(n *Node) bool {
		if n.kind == kind {
			found = append(found, n)
		}
		return true
	})
	return found
}
