package policy

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
)

// Verdict is the bucket a name resolves to.
type Verdict int

const (
	Unclassified Verdict = iota
	Ignore
	Allow
	Deprecate
	Warn
	Forbid
	Gray
)

func (v Verdict) String() string {
	switch v {
	case Ignore:
		return "ignore"
	case Allow:
		return "allow"
	case Deprecate:
		return "deprecate"
	case Warn:
		return "warn"
	case Forbid:
		return "forbid"
	case Gray:
		return "gray"
	default:
		return "unclassified"
	}
}

// Table classifies symbolic names (filters, functions, variables) into
// buckets. Warn, Forbid and Deprecate carry a hint per name.
//
// A Table is read-only once built; Merge returns a new table.
type Table struct {
	// Family names the kind of symbol in messages, e.g. "Twig filter".
	Family string

	Ignore    []string
	Allow     []string
	Deprecate map[string]string
	Warn      map[string]string
	Forbid    map[string]string

	// Graylist reports names found in no bucket.
	Graylist bool
}

// Result is the outcome of a lookup.
type Result struct {
	Verdict  Verdict
	Name     string
	Hint     string
	Message  string
	Severity diagnostic.Severity
}

// Reportable reports whether the result should become a diagnostic.
func (r Result) Reportable() bool {
	return r.Message != ""
}

var prefixes = map[Verdict]string{
	Deprecate: "Deprecated",
	Warn:      "Careful with",
	Forbid:    "Forbidden",
	Gray:      "Gray list",
}

var severities = map[Verdict]diagnostic.Severity{
	Deprecate: diagnostic.Warning,
	Warn:      diagnostic.Warning,
	Forbid:    diagnostic.Error,
	Gray:      diagnostic.Warning,
}

// Classify resolves name. The order is fixed: ignore, allow, deprecate,
// warn, forbid, then unclassified.
func (t *Table) Classify(name string) Result {
	if t == nil {
		return Result{Verdict: Unclassified, Name: name}
	}

	switch {
	case slices.Contains(t.Ignore, name):
		return Result{Verdict: Ignore, Name: name}
	case slices.Contains(t.Allow, name):
		return Result{Verdict: Allow, Name: name}
	}

	for _, bucket := range []struct {
		verdict Verdict
		hints   map[string]string
	}{
		{Deprecate, t.Deprecate},
		{Warn, t.Warn},
		{Forbid, t.Forbid},
	} {
		if hint, ok := bucket.hints[name]; ok {
			return t.result(bucket.verdict, name, hint)
		}
	}

	if t.Graylist {
		return t.result(Gray, name, "")
	}
	return Result{Verdict: Unclassified, Name: name}
}

func (t *Table) result(verdict Verdict, name, hint string) Result {
	family := t.Family
	if family == "" {
		family = "name"
	}
	message := fmt.Sprintf("%s %s: '%s'.", prefixes[verdict], family, name)
	if hint != "" {
		message += " " + hint
	}
	return Result{
		Verdict:  verdict,
		Name:     name,
		Hint:     hint,
		Message:  message,
		Severity: severities[verdict],
	}
}

// Overlay holds bucket overrides, typically from configuration. A name
// listed in an overlay bucket is removed from every other bucket.
type Overlay struct {
	Ignore    []string          `yaml:"ignore"`
	Allow     []string          `yaml:"allow"`
	Deprecate map[string]string `yaml:"deprecate"`
	Warn      map[string]string `yaml:"warn"`
	Forbid    map[string]string `yaml:"forbid"`
	Graylist  *bool             `yaml:"graylist"`
}

// IsZero reports whether the overlay changes nothing.
func (o Overlay) IsZero() bool {
	return len(o.Ignore) == 0 && len(o.Allow) == 0 && len(o.Deprecate) == 0 &&
		len(o.Warn) == 0 && len(o.Forbid) == 0 && o.Graylist == nil
}

// Merge returns a copy of t with the overlay applied.
func (t *Table) Merge(o Overlay) *Table {
	merged := &Table{
		Family:    t.Family,
		Ignore:    slices.Clone(t.Ignore),
		Allow:     slices.Clone(t.Allow),
		Deprecate: maps.Clone(t.Deprecate),
		Warn:      maps.Clone(t.Warn),
		Forbid:    maps.Clone(t.Forbid),
		Graylist:  t.Graylist,
	}
	if merged.Deprecate == nil {
		merged.Deprecate = map[string]string{}
	}
	if merged.Warn == nil {
		merged.Warn = map[string]string{}
	}
	if merged.Forbid == nil {
		merged.Forbid = map[string]string{}
	}

	for _, name := range o.Ignore {
		merged.remove(name)
		merged.Ignore = append(merged.Ignore, name)
	}
	for _, name := range o.Allow {
		merged.remove(name)
		merged.Allow = append(merged.Allow, name)
	}
	for _, bucket := range []struct {
		from map[string]string
		to   map[string]string
	}{
		{o.Deprecate, merged.Deprecate},
		{o.Warn, merged.Warn},
		{o.Forbid, merged.Forbid},
	} {
		for _, name := range slices.Sorted(maps.Keys(bucket.from)) {
			merged.remove(name)
			bucket.to[name] = bucket.from[name]
		}
	}
	if o.Graylist != nil {
		merged.Graylist = *o.Graylist
	}
	return merged
}

func (t *Table) remove(name string) {
	t.Ignore = slices.DeleteFunc(t.Ignore, func(s string) bool { return s == name })
	t.Allow = slices.DeleteFunc(t.Allow, func(s string) bool { return s == name })
	delete(t.Deprecate, name)
	delete(t.Warn, name)
	delete(t.Forbid, name)
}

// Buckets returns, per name, every bucket it is listed in.
func (t *Table) Buckets() map[string][]Verdict {
	out := make(map[string][]Verdict)
	for _, name := range t.Ignore {
		out[name] = append(out[name], Ignore)
	}
	for _, name := range t.Allow {
		out[name] = append(out[name], Allow)
	}
	for name := range t.Deprecate {
		out[name] = append(out[name], Deprecate)
	}
	for name := range t.Warn {
		out[name] = append(out[name], Warn)
	}
	for name := range t.Forbid {
		out[name] = append(out[name], Forbid)
	}
	return out
}

// Validate reports names listed in more than one bucket.
func (t *Table) Validate() error {
	var conflicts []string
	for name, verdicts := range t.Buckets() {
		if len(verdicts) < 2 {
			continue
		}
		slices.Sort(verdicts)
		labels := make([]string, len(verdicts))
		for i, v := range verdicts {
			labels[i] = v.String()
		}
		conflicts = append(conflicts, fmt.Sprintf("'%s' (%s)", name, strings.Join(labels, ", ")))
	}
	if len(conflicts) == 0 {
		return nil
	}
	slices.Sort(conflicts)
	return fmt.Errorf("%s: names in more than one bucket: %s", t.Family, strings.Join(conflicts, "; "))
}

// Len returns the number of names the table knows about.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Ignore) + len(t.Allow) + len(t.Deprecate) + len(t.Warn) + len(t.Forbid)
}
