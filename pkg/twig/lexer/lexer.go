// Package lexer implements the Twig template tokenizer.
package lexer

import (
	"regexp"
	"strings"
)

var (
	// Word operators must end on a word boundary so that names such as
	// "index" or "order" are not split.
	wordOperatorRe = regexp.MustCompile(`^(?:starts\s+with|ends\s+with|not\s+in|is\s+not|matches|b-and|b-xor|b-or|and|not|or|in|is)\b`)
	spacesRe       = regexp.MustCompile(`\s+`)
	rawStartRe     = regexp.MustCompile(`^\s*(verbatim|raw)\s*([-~]?)%}`)
	rawEndRe       = regexp.MustCompile(`\{%([-~]?)\s*end(?:verbatim|raw)\s*([-~]?)%}`)
)

// Symbolic operators, longest first.
var symbolOperators = []string{
	"<=>", "...", "??", "**", "//", "..", "==", "!=", "<=", ">=",
	"<", ">", "+", "-", "~", "*", "/", "%",
}

const punctuation = "()[]{}?:.,|="

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

// Tokenize splits template source into tokens. The returned slice always
// ends with a TokEOF token. Errors are *SyntaxError values.
func Tokenize(source string) ([]Token, error) {
	s := newScanner(source)
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.tokens, nil
}

type trimMode byte

const (
	trimNone   trimMode = 0
	trimAll    trimMode = '-'
	trimInline trimMode = '~'
)

type scanner struct {
	source   string
	pos      int
	line     int
	col      int
	tokens   []Token
	brackets []Token
	trimNext trimMode
}

func newScanner(source string) *scanner {
	return &scanner{
		source: strings.ReplaceAll(source, "\r\n", "\n"),
		line:   1,
		col:    1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) rest() string {
	return s.source[s.pos:]
}

// advance consumes n bytes, keeping line and column current.
func (s *scanner) advance(n int) {
	for i := 0; i < n && !s.atEnd(); i++ {
		if s.source[s.pos] == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.pos++
	}
}

func (s *scanner) emit(typ TokenType, value string, line, col int) {
	s.tokens = append(s.tokens, Token{Type: typ, Value: value, Line: line, Column: col})
}

func (s *scanner) run() error {
	for !s.atEnd() {
		idx := nextTagStart(s.rest())
		if idx < 0 {
			s.emitText(s.rest(), trimNone)
			s.advance(len(s.source) - s.pos)
			break
		}

		mod := trimMode(s.peekAt(idx + 2))
		if mod != trimAll && mod != trimInline {
			mod = trimNone
		}
		s.emitText(s.source[s.pos:s.pos+idx], mod)
		s.advance(idx)

		var err error
		switch s.peekAt(1) {
		case '#':
			err = s.lexComment()
		case '{':
			err = s.lexTag(TokVarStart, TokVarEnd, "{{", mod)
		case '%':
			err = s.lexBlock(mod)
		}
		if err != nil {
			return err
		}
	}

	s.emit(TokEOF, "", s.line, s.col)
	return nil
}

// nextTagStart returns the offset of the next "{{", "{%" or "{#", or -1.
func nextTagStart(text string) int {
	for i := 0; i+1 < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		switch text[i+1] {
		case '{', '%', '#':
			return i
		}
	}
	return -1
}

// emitText emits a text token, applying whitespace control from the
// previous tag end and from the upcoming tag start.
func (s *scanner) emitText(text string, upcoming trimMode) {
	line, col := s.line, s.col
	switch s.trimNext {
	case trimAll:
		trimmed := strings.TrimLeft(text, " \t\n\r\x00\x0B")
		line += strings.Count(text[:len(text)-len(trimmed)], "\n")
		text = trimmed
	case trimInline:
		text = strings.TrimLeft(text, " \t\x00\x0B")
	}
	s.trimNext = trimNone

	switch upcoming {
	case trimAll:
		text = strings.TrimRight(text, " \t\n\r\x00\x0B")
	case trimInline:
		text = strings.TrimRight(text, " \t\x00\x0B")
	}

	if text != "" {
		s.emit(TokText, text, line, col)
	}
}

func (s *scanner) lexComment() error {
	line, col := s.line, s.col
	end := strings.Index(s.source[s.pos+2:], "#}")
	if end < 0 {
		return Errorf(line, col, "Unclosed comment.")
	}
	closeAt := s.pos + 2 + end
	if closeAt > s.pos+2 {
		if m := trimMode(s.source[closeAt-1]); m == trimAll || m == trimInline {
			s.trimNext = m
		}
	}
	s.advance(closeAt + 2 - s.pos)
	return nil
}

func (s *scanner) lexBlock(mod trimMode) error {
	start := s.pos + 2
	if mod != trimNone {
		start++
	}

	// verbatim/raw sections are passed through as text.
	if m := rawStartRe.FindStringSubmatchIndex(s.source[start:]); m != nil {
		line, col := s.line, s.col
		bodyStart := start + m[1]
		loc := rawEndRe.FindStringSubmatchIndex(s.source[bodyStart:])
		if loc == nil {
			return Errorf(line, col, "Unclosed \"%s\" block.", s.source[start+m[2]:start+m[3]])
		}
		if m[4] != m[5] {
			s.trimNext = trimMode(s.source[start+m[4]])
		}
		s.advance(bodyStart - s.pos)
		bodyMod := trimNone
		if loc[2] != loc[3] {
			bodyMod = trimMode(s.source[bodyStart+loc[2]])
		}
		s.emitText(s.source[bodyStart:bodyStart+loc[0]], bodyMod)
		s.advance(loc[0])
		if loc[4] != loc[5] {
			s.trimNext = trimMode(s.source[bodyStart+loc[4]])
		}
		s.advance(loc[1] - loc[0])
		return nil
	}

	return s.lexTag(TokBlockStart, TokBlockEnd, "{%", mod)
}

// lexTag lexes a {{ ... }} or {% ... %} section.
func (s *scanner) lexTag(startType, endType TokenType, opener string, mod trimMode) error {
	line, col := s.line, s.col
	s.emit(startType, opener, line, col)
	s.advance(2)
	if mod != trimNone {
		s.advance(1)
	}

	closer := "}}"
	what := "variable"
	if endType == TokBlockEnd {
		closer = "%}"
		what = "block"
	}

	for {
		s.skipWhitespace()
		if s.atEnd() {
			if len(s.brackets) > 0 {
				b := s.brackets[len(s.brackets)-1]
				return Errorf(b.Line, b.Column, "Unclosed \"%s\".", b.Value)
			}
			return Errorf(line, col, "Unclosed \"%s\".", what)
		}

		if len(s.brackets) == 0 {
			if endMod, n, ok := s.matchEnd(closer); ok {
				s.emit(endType, closer, s.line, s.col)
				s.advance(n)
				s.trimNext = endMod
				return nil
			}
		}

		if err := s.lexExpressionToken(); err != nil {
			return err
		}
	}
}

// matchEnd reports whether the input continues with an optional whitespace
// modifier followed by closer.
func (s *scanner) matchEnd(closer string) (trimMode, int, bool) {
	rest := s.rest()
	switch {
	case strings.HasPrefix(rest, closer):
		return trimNone, len(closer), true
	case len(rest) > 0 && (rest[0] == '-' || rest[0] == '~') && strings.HasPrefix(rest[1:], closer):
		return trimMode(rest[0]), len(closer) + 1, true
	}
	return trimNone, 0, false
}

func (s *scanner) skipWhitespace() {
	for !s.atEnd() {
		switch s.peek() {
		case ' ', '\t', '\n', '\r', '\x0B', '\f':
			s.advance(1)
		default:
			return
		}
	}
}

func (s *scanner) lexExpressionToken() error {
	line, col := s.line, s.col
	rest := s.rest()
	ch := rest[0]

	// Arrow must win over "=" and "==".
	if strings.HasPrefix(rest, "=>") {
		s.emit(TokArrow, "=>", line, col)
		s.advance(2)
		return nil
	}

	if m := wordOperatorRe.FindString(rest); m != "" {
		s.emit(TokOperator, spacesRe.ReplaceAllString(m, " "), line, col)
		s.advance(len(m))
		return nil
	}

	if isNameStart(ch) {
		n := 1
		for n < len(rest) && isNameChar(rest[n]) {
			n++
		}
		s.emit(TokName, rest[:n], line, col)
		s.advance(n)
		return nil
	}

	if isDigit(ch) {
		s.lexNumber()
		return nil
	}

	for _, op := range symbolOperators {
		if strings.HasPrefix(rest, op) {
			s.emit(TokOperator, op, line, col)
			s.advance(len(op))
			return nil
		}
	}

	if strings.IndexByte(punctuation, ch) >= 0 {
		return s.lexPunctuation(ch, line, col)
	}

	if ch == '\'' || ch == '"' {
		return s.lexString(ch)
	}

	return Errorf(line, col, "Unexpected character \"%c\".", ch)
}

func (s *scanner) lexPunctuation(ch byte, line, col int) error {
	switch ch {
	case '(', '[', '{':
		s.brackets = append(s.brackets, Token{Type: TokPunct, Value: string(ch), Line: line, Column: col})
	case ')', ']', '}':
		if len(s.brackets) == 0 {
			return Errorf(line, col, "Unexpected \"%c\".", ch)
		}
		open := s.brackets[len(s.brackets)-1]
		if open.Value[0] != closers[ch] {
			return Errorf(open.Line, open.Column, "Unclosed \"%s\".", open.Value)
		}
		s.brackets = s.brackets[:len(s.brackets)-1]
	}
	s.emit(TokPunct, string(ch), line, col)
	s.advance(1)
	return nil
}

func (s *scanner) lexNumber() {
	line, col := s.line, s.col
	rest := s.rest()
	n := 0
	for n < len(rest) && isDigit(rest[n]) {
		n++
	}
	// A fractional part needs a digit after the dot so that ranges such
	// as 1..5 keep their operator.
	if n+1 < len(rest) && rest[n] == '.' && isDigit(rest[n+1]) {
		n++
		for n < len(rest) && isDigit(rest[n]) {
			n++
		}
	}
	s.emit(TokNumber, rest[:n], line, col)
	s.advance(n)
}

func (s *scanner) lexString(quote byte) error {
	line, col := s.line, s.col
	var buf strings.Builder
	i := 1
	rest := s.rest()
	for i < len(rest) {
		ch := rest[i]
		switch {
		case ch == quote:
			s.emit(TokString, buf.String(), line, col)
			s.advance(i + 1)
			return nil
		case ch == '\\' && i+1 < len(rest):
			i++
			switch esc := rest[i]; esc {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case 'r':
				buf.WriteByte('\r')
			case 'v':
				buf.WriteByte('\v')
			case 'f':
				buf.WriteByte('\f')
			default:
				buf.WriteByte(esc)
			}
		default:
			buf.WriteByte(ch)
		}
		i++
	}
	return Errorf(line, col, "Unclosed string.")
}

func isNameStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x7f
}

func isNameChar(ch byte) bool {
	return isNameStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
