package diagnostic

import (
	"fmt"
	"strings"

	"mercator-hq/sdclint/pkg/twig/ast"
)

// Kind tells where a diagnostic comes from.
type Kind string

const (
	KindTemplate Kind = "template" // found in the template source
	KindSchema   Kind = "schema"   // found in the component definition
)

// Label returns the display label of the kind.
func (k Kind) Label() string {
	switch k {
	case KindSchema:
		return "Schema"
	default:
		return "Twig"
	}
}

// Diagnostic is one finding. Diagnostics are values: once built they are
// copied around and never modified in place.
type Diagnostic struct {
	ID            string   `json:"id"`
	Line          int      `json:"line"`
	Column        int      `json:"column,omitempty"`
	Severity      Severity `json:"severity"`
	Message       string   `json:"message"`
	Kind          Kind     `json:"kind"`
	Rule          string   `json:"rule,omitempty"`
	SourceExcerpt string   `json:"source_excerpt,omitempty"`
}

// New creates a template diagnostic.
func New(id string, line int, severity Severity, message string) Diagnostic {
	return Diagnostic{
		ID:       id,
		Line:     line,
		Severity: severity,
		Message:  message,
		Kind:     KindTemplate,
	}
}

// ForNode creates a template diagnostic located at node.
func ForNode(id string, node *ast.Node, severity Severity, message string) Diagnostic {
	d := New(id, 0, severity, message)
	if node != nil {
		loc := node.Location()
		d.Line, d.Column = loc.Line, loc.Column
	}
	return d
}

// ForSchema creates a component definition diagnostic.
func ForSchema(id string, line int, severity Severity, message string) Diagnostic {
	d := New(id, line, severity, message)
	d.Kind = KindSchema
	return d
}

// Label returns the display label of the diagnostic kind.
func (d Diagnostic) Label() string {
	return d.Kind.Label()
}

// WithExcerpt returns a copy of d carrying length lines of source starting
// at the diagnostic line.
func (d Diagnostic) WithExcerpt(source string, length int) Diagnostic {
	d.SourceExcerpt = Excerpt(source, d.Line, length)
	return d
}

// WithID returns a copy of d attributed to id.
func (d Diagnostic) WithID(id string) Diagnostic {
	d.ID = id
	return d
}

// String formats the diagnostic on one line, compiler style.
func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.ID != "" {
		sb.WriteString(d.ID)
		sb.WriteString(":")
	}
	if d.Line > 0 {
		sb.WriteString(fmt.Sprintf("%d:", d.Line))
		if d.Column > 0 {
			sb.WriteString(fmt.Sprintf("%d:", d.Column))
		}
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(fmt.Sprintf("[%s] %s", d.Severity, d.Message))
	return sb.String()
}

// group is the ordering bucket of a diagnostic.
func (d Diagnostic) group() string {
	return d.ID + "\x00" + string(d.Kind)
}
