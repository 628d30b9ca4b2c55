package diagnostic

import (
	"slices"
)

// List is an ordered collection of diagnostics.
type List []Diagnostic

// Sort orders diagnostics by group, then by line. Groups (component id and
// kind) keep the order in which they first appear; ties keep insertion
// order.
func (l List) Sort() List {
	order := make(map[string]int)
	for _, d := range l {
		if _, ok := order[d.group()]; !ok {
			order[d.group()] = len(order)
		}
	}

	sorted := slices.Clone(l)
	slices.SortStableFunc(sorted, func(a, b Diagnostic) int {
		if ga, gb := order[a.group()], order[b.group()]; ga != gb {
			return ga - gb
		}
		return a.Line - b.Line
	})
	return sorted
}

type dedupKey struct {
	id       string
	kind     Kind
	line     int
	column   int
	severity Severity
	message  string
}

// Dedup drops exact duplicates, keeping the first occurrence.
func (l List) Dedup() List {
	seen := make(map[dedupKey]struct{}, len(l))
	out := make(List, 0, len(l))
	for _, d := range l {
		key := dedupKey{d.ID, d.Kind, d.Line, d.Column, d.Severity, d.Message}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

// Filter keeps diagnostics at threshold severity or more severe.
func (l List) Filter(threshold Severity) List {
	out := make(List, 0, len(l))
	for _, d := range l {
		if d.Severity.AtLeast(threshold) {
			out = append(out, d)
		}
	}
	return out
}

// CountBySeverity counts diagnostics per severity.
func (l List) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, d := range l {
		counts[d.Severity]++
	}
	return counts
}

// HasAtOrAbove reports whether any diagnostic is at sev or more severe.
func (l List) HasAtOrAbove(sev Severity) bool {
	return slices.ContainsFunc(l, func(d Diagnostic) bool {
		return d.Severity.AtLeast(sev)
	})
}

// Messages returns the messages in order. Handy in tests and logs.
func (l List) Messages() []string {
	out := make([]string, len(l))
	for i, d := range l {
		out[i] = d.Message
	}
	return out
}

// ByKind returns the diagnostics of the given kind.
func (l List) ByKind(kind Kind) List {
	var out List
	for _, d := range l {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
