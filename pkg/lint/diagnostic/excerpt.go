package diagnostic

import (
	"fmt"
	"strings"
)

// splitLines splits source into lines, accepting both LF and CRLF.
func splitLines(source string) []string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	return strings.Split(source, "\n")
}

// Excerpt returns length lines of source starting at the 1-based line.
// It returns an empty string for an empty source or an out of range line.
func Excerpt(source string, line, length int) string {
	if source == "" || line < 1 {
		return ""
	}
	if length < 1 {
		length = 1
	}

	lines := splitLines(source)
	if line > len(lines) {
		return ""
	}
	end := min(line-1+length, len(lines))
	return strings.Join(lines[line-1:end], "\n")
}

// Context renders the lines surrounding line with line numbers, an arrow on
// the reported line and a caret under column when it is known.
func Context(source string, line, column, contextLines int) string {
	if source == "" || line < 1 {
		return ""
	}

	lines := splitLines(source)
	errorLine := line - 1
	if errorLine >= len(lines) {
		return ""
	}

	startLine := max(errorLine-contextLines, 0)
	endLine := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, width, i+1, lines[i]))

		if i == errorLine && column > 0 {
			padding := strings.Repeat(" ", column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", width), padding))
		}
	}

	return sb.String()
}
