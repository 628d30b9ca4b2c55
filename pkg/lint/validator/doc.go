// Package validator is the entry point of the linter.
//
// ValidateSource lints a template on its own. ValidateComponent also runs
// the schema checks of the definition and seeds the scope with the
// declared props and slots, so only undeclared names are reported.
//
//	v, err := validator.New(validator.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	for _, d := range v.ValidateComponent(def.ID, def) {
//		fmt.Println(d)
//	}
//
// Template problems never surface as errors. A template that does not parse
// yields one CRITICAL diagnostic at the parser's line, and a rule that
// panics yields one CRITICAL diagnostic for the node it was checking.
//
// The result is deduplicated and sorted: schema diagnostics, then template
// diagnostics, each by line with ties in walk order. A Validator is
// read-only after New and may be shared between goroutines.
package validator
