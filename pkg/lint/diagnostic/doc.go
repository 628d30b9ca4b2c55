// Package diagnostic defines the findings produced by the linter.
//
// A Diagnostic carries a component id, a 1-based line (0 when the finding
// is not tied to a line), an RFC 5424 severity, a message and its origin:
// the template or the component definition (schema).
//
// # Severities
//
// Severity follows syslog numbering, so lower is more severe:
//
//	EMERGENCY 0, ALERT 1, CRITICAL 2, ERROR 3, WARNING 4, NOTICE 5, INFO 6, DEBUG 7
//
// Parse failures and rule failures are CRITICAL. Forbidden names are ERROR.
// Warned and deprecated names are WARNING.
//
// # Ordering
//
// List.Sort groups diagnostics by component and kind in order of first
// appearance and sorts each group by line. The sort is stable, so output is
// reproducible for identical input.
package diagnostic
