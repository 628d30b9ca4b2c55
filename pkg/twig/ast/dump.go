package ast

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Dump writes an indented, human-readable rendering of the tree to w.
func Dump(w io.Writer, node *Node) error {
	return dump(w, node, "", 0)
}

func dump(w io.Writer, node *Node, slotName string, depth int) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	if slotName != "" {
		b.WriteString(slotName)
		b.WriteString(": ")
	}
	b.WriteString(string(node.kind))
	if attrs := formatAttrs(node.attrs); attrs != "" {
		b.WriteString(" ")
		b.WriteString(attrs)
	}
	fmt.Fprintf(&b, " @%d\n", node.loc.Line)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, s := range node.slots {
		if err := dump(w, s.node, s.name, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func formatAttrs(attrs map[string]any) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := attrs[k]
		switch v := v.(type) {
		case nil:
			parts = append(parts, k+"=null")
		case string:
			parts = append(parts, fmt.Sprintf("%s=%q", k, v))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
