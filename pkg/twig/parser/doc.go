// Package parser turns Twig template source into the tree defined by package
// ast.
//
// The parser covers the part of Twig used by component templates: print
// statements, comments, whitespace control and the set, for, if, do, flush,
// sandbox, include, embed, extends, block, trans, apply, with, autoescape,
// macro, import, from and verbatim tags, plus the expression grammar
// (operators with Twig precedence, filters, tests, attribute access, arrays
// and hashes with spread, arrow functions and the ternary forms).
//
// String interpolation is not expanded: "#{...}" stays part of the string
// constant. The cache tag is not supported.
//
// # Basic Usage
//
//	root, err := parser.Parse(source)
//	if err != nil {
//	    var se *parser.SyntaxError
//	    if errors.As(err, &se) {
//	        fmt.Printf("line %d: %s\n", se.Line, se.Message)
//	    }
//	}
//
// # Desugaring
//
// A few constructs are rewritten while parsing so that analyses only see a
// small set of node kinds:
//
//   - a ?: b becomes a conditional whose expr1 and expr2 are both a
//   - a ? b has no expr3 slot
//   - a ?? b becomes a conditional testing "a is defined and not (a is null)",
//     flagged with the null_coalesce attribute
//   - foo[a:b] becomes the slice filter
//   - a is not b becomes not (a is b)
//
// Parsing stops at the first syntax error.
package parser
