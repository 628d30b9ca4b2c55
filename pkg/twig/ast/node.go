package ast

import "strconv"

// Well-known slot names.
const (
	SlotBody        = "body"
	SlotElse        = "else"
	SlotExpr        = "expr"
	SlotNode        = "node"
	SlotArguments   = "arguments"
	SlotAttribute   = "attribute"
	SlotTargets     = "targets"
	SlotValues      = "values"
	SlotSeq         = "seq"
	SlotKeyTarget   = "key_target"
	SlotValueTarget = "value_target"
	SlotTests       = "tests"
	SlotLeft        = "left"
	SlotRight       = "right"
	SlotExpr1       = "expr1"
	SlotExpr2       = "expr2"
	SlotExpr3       = "expr3"
	SlotTemplate    = "template"
	SlotVariables   = "variables"
	SlotKey         = "key"
	SlotValue       = "value"
	SlotParams      = "params"
	SlotFilters     = "filters"
	SlotPlural      = "plural"
	SlotCount       = "count"
)

// Well-known attribute names.
const (
	AttrName          = "name"
	AttrValue         = "value"
	AttrOperator      = "operator"
	AttrCallType      = "call_type"
	AttrNullCoalesce  = "null_coalesce"
	AttrOnly          = "only"
	AttrIgnoreMissing = "ignore_missing"
	AttrCapture       = "capture"
	AttrData          = "data"
	AttrMacro         = "macro"
)

// Attribute access call types, stored under AttrCallType on KindGetAttr.
const (
	CallTypeAny    = "any"
	CallTypeArray  = "array"
	CallTypeMethod = "method"
)

type slot struct {
	name string
	node *Node
}

// Node is one element of a parsed template. A node has a kind, an ordered
// set of named child slots, a flat attribute map and a source location.
// Nodes are immutable once built; the exported API is read-only.
type Node struct {
	kind  Kind
	slots []slot
	attrs map[string]any
	loc   Location
}

// Option configures a node under construction.
type Option func(*Node)

// WithChild sets the child stored under slot. A nil child is ignored, so
// optional slots can be passed unconditionally.
func WithChild(name string, child *Node) Option {
	return func(n *Node) {
		if child == nil {
			return
		}
		for i := range n.slots {
			if n.slots[i].name == name {
				n.slots[i].node = child
				return
			}
		}
		n.slots = append(n.slots, slot{name: name, node: child})
	}
}

// WithAttr sets an attribute. A nil value is stored as-is: it is how a
// null constant is represented.
func WithAttr(name string, value any) Option {
	return func(n *Node) {
		if n.attrs == nil {
			n.attrs = make(map[string]any)
		}
		n.attrs[name] = value
	}
}

// New builds a node.
func New(kind Kind, loc Location, opts ...Option) *Node {
	n := &Node{kind: kind, loc: loc}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewList builds a node whose children are stored under the slots "0".."n".
// Nil entries are skipped without leaving a gap in numbering.
func NewList(kind Kind, loc Location, children ...*Node) *Node {
	n := &Node{kind: kind, loc: loc}
	for _, child := range children {
		if child == nil {
			continue
		}
		n.slots = append(n.slots, slot{name: strconv.Itoa(len(n.slots)), node: child})
	}
	return n
}

// Kind returns the node kind, or "" for a nil node.
func (n *Node) Kind() Kind {
	if n == nil {
		return ""
	}
	return n.kind
}

// HasChild reports whether the slot is populated.
func (n *Node) HasChild(name string) bool {
	return n.Child(name) != nil
}

// Child returns the node stored under slot, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, s := range n.slots {
		if s.name == name {
			return s.node
		}
	}
	return nil
}

// Slots returns the populated slot names in declaration order.
func (n *Node) Slots() []string {
	names := make([]string, len(n.slots))
	for i, s := range n.slots {
		names[i] = s.name
	}
	return names
}

// Children returns the child nodes in slot order.
func (n *Node) Children() []*Node {
	children := make([]*Node, len(n.slots))
	for i, s := range n.slots {
		children[i] = s.node
	}
	return children
}

// Len returns the number of populated slots.
func (n *Node) Len() int {
	return len(n.slots)
}

// HasAttr reports whether the attribute is set, including to nil.
func (n *Node) HasAttr(name string) bool {
	if n == nil {
		return false
	}
	_, ok := n.attrs[name]
	return ok
}

// Attr returns the attribute value, or nil when unset.
func (n *Node) Attr(name string) any {
	if n == nil {
		return nil
	}
	return n.attrs[name]
}

// StringAttr returns the attribute when it is set to a string.
func (n *Node) StringAttr(name string) (string, bool) {
	s, ok := n.Attr(name).(string)
	return s, ok
}

// BoolAttr returns the attribute when it is set to true.
func (n *Node) BoolAttr(name string) bool {
	b, _ := n.Attr(name).(bool)
	return b
}

// Name returns the "name" attribute, or "" when absent.
func (n *Node) Name() string {
	s, _ := n.StringAttr(AttrName)
	return s
}

// Line returns the 1-based source line.
func (n *Node) Line() int {
	return n.loc.Line
}

// Location returns the source position.
func (n *Node) Location() Location {
	return n.loc
}

// Is reports whether the node is non-nil and of one of the given kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.kind == k {
			return true
		}
	}
	return false
}

// IsConstant reports whether the node is a literal constant.
func (n *Node) IsConstant() bool {
	return n.Is(KindConstant) && n.HasAttr(AttrValue)
}

// IsNull reports whether the node is the null literal.
func (n *Node) IsNull() bool {
	return n.IsConstant() && n.Attr(AttrValue) == nil
}

// IsBool reports whether the node is a boolean literal.
func (n *Node) IsBool() bool {
	if !n.IsConstant() {
		return false
	}
	_, ok := n.Attr(AttrValue).(bool)
	return ok
}

// IsString reports whether the node is a string literal.
func (n *Node) IsString() bool {
	if !n.IsConstant() {
		return false
	}
	_, ok := n.Attr(AttrValue).(string)
	return ok
}

// IsNumber reports whether the node is a numeric literal.
func (n *Node) IsNumber() bool {
	if !n.IsConstant() {
		return false
	}
	switch n.Attr(AttrValue).(type) {
	case int64, float64:
		return true
	}
	return false
}

// ValueType returns a short label for a literal: "string", "number",
// "boolean", "null", or "" for anything else.
func (n *Node) ValueType() string {
	switch {
	case n.IsNull():
		return "null"
	case n.IsBool():
		return "boolean"
	case n.IsString():
		return "string"
	case n.IsNumber():
		return "number"
	}
	return ""
}
