package lexer

import "fmt"

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	TokText       TokenType = iota // raw template data
	TokVarStart                    // {{
	TokVarEnd                      // }}
	TokBlockStart                  // {%
	TokBlockEnd                    // %}
	TokName                        // identifiers
	TokNumber                      // 12, 1.5
	TokString                      // 'foo', "foo" (unquoted value)
	TokOperator                    // and, ==, ~, not in, ...
	TokPunct                       // ( ) [ ] { } ? : . , | =
	TokArrow                       // =>
	TokEOF
)

var tokenNames = map[TokenType]string{
	TokText:       "text",
	TokVarStart:   "print statement start",
	TokVarEnd:     "end of print statement",
	TokBlockStart: "tag start",
	TokBlockEnd:   "end of tag",
	TokName:       "name",
	TokNumber:     "number",
	TokString:     "string",
	TokOperator:   "operator",
	TokPunct:      "punctuation",
	TokArrow:      "arrow function",
	TokEOF:        "end of template",
}

// String returns a human-readable name for the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a single lexer token.
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Column int
}

// Test reports whether the token has the given type and, when values are
// given, one of those values.
func (t Token) Test(typ TokenType, values ...string) bool {
	if t.Type != typ {
		return false
	}
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if t.Value == v {
			return true
		}
	}
	return false
}

// String renders the token for error messages.
func (t Token) String() string {
	if t.Type == TokEOF {
		return "end of template"
	}
	return fmt.Sprintf("%q", t.Value)
}

// SyntaxError is returned when the template source cannot be tokenized or
// parsed. Line and Column point at the offending token when known.
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d", e.Message, e.Line)
	}
	return e.Message
}

// Errorf builds a SyntaxError at the given position.
func Errorf(line, column int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}
