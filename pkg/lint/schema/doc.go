// Package schema checks the declared interface of a component: variants,
// slots and props. Its diagnostics have diagnostic.KindSchema and carry the
// line of the offending key in the definition file.
package schema
