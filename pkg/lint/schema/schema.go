package schema

import (
	"fmt"
	"reflect"

	"mercator-hq/sdclint/pkg/component"
	"mercator-hq/sdclint/pkg/lint/diagnostic"
)

// Checker reports shape issues in component definitions.
type Checker interface {
	Check(def *component.Definition) diagnostic.List
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(def *component.Definition) diagnostic.List

// Check implements Checker.
func (f CheckerFunc) Check(def *component.Definition) diagnostic.List {
	return f(def)
}

// Default is the built-in checker.
var Default Checker = CheckerFunc(Check)

// Check runs every definition check. Diagnostics follow the definition:
// variants, slots, required props, then each prop.
func Check(def *component.Definition) diagnostic.List {
	if def == nil {
		return nil
	}
	var out diagnostic.List
	report := func(line int, sev diagnostic.Severity, msg string) {
		out = append(out, diagnostic.ForSchema(def.ID, line, sev, msg))
	}

	if len(def.Variants) == 1 {
		report(def.VariantsLine, diagnostic.Notice, "A single variant does not need to be declared.")
	}

	for _, s := range def.Slots {
		if s.Required {
			report(s.Line, diagnostic.Warning, "Required slots are not recommended.")
		}
	}

	if len(def.RequiredProps) > 0 {
		report(def.RequiredLine, diagnostic.Warning, "Required props are not recommended. Use default values instead.")
	}

	for _, p := range def.Props {
		checkProp(p, report)
	}
	return out
}

func checkProp(p component.Prop, report func(int, diagnostic.Severity, string)) {
	if p.HasDefault && len(p.Enum) > 0 && !inEnum(p.Default, p.Enum) {
		report(p.Line, diagnostic.Error, "Default value must be in the enum.")
	}

	if !p.HasType() {
		report(p.Line, diagnostic.Error, "Missing type for this property.")
		return
	}

	switch {
	case p.IsType("object") && p.Ref == "" && len(p.Properties) == 0:
		report(p.Line, diagnostic.Warning, "Empty object.")
	case p.IsType("array") && p.Ref == "" && p.Items == nil:
		report(p.Line, diagnostic.Warning, "Empty array.")
	case p.IsType("array") && p.Items != nil && p.Items.IsType("object") &&
		p.Items.Ref == "" && len(p.Items.Properties) == 0:
		report(p.Line, diagnostic.Warning, "Array of empty object.")
	}
}

// inEnum compares loosely so that 2 and 2.0 match.
func inEnum(value any, enum []any) bool {
	for _, e := range enum {
		if reflect.DeepEqual(e, value) || fmt.Sprint(e) == fmt.Sprint(value) {
			return true
		}
	}
	return false
}
