package ast

import "fmt"

// Location represents the source position of a node in the template.
// Lines and columns are 1-based; a zero Line means the position is unknown.
type Location struct {
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// String returns a human-readable representation of the location.
// Format: "line:column"
func (l Location) String() string {
	if l.Line <= 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// IsValid returns true if the location carries line information.
func (l Location) IsValid() bool {
	return l.Line > 0
}
