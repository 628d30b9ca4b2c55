package scope

import (
	"fmt"
	"strings"
)

// maxSuggestDistance bounds how different a suggestion may be.
const maxSuggestDistance = 2

// Suggest returns the visible name closest to name, or "" when none is
// within two edits. The distance must also be shorter than name itself so
// one-letter names get no suggestion. Ties go to the alphabetically first
// name.
func (t *Tracker) Suggest(name string) string {
	best, bestDistance := "", maxSuggestDistance+1
	for _, candidate := range t.Visible() {
		if candidate == "" || candidate == name || strings.HasPrefix(candidate, "_") {
			continue
		}
		if d := levenshteinDistance(name, candidate); d < bestDistance && d < len(name) {
			best, bestDistance = candidate, d
		}
	}
	return best
}

// DidYouMean formats a suggestion for name, or returns "".
func (t *Tracker) DidYouMean(name string) string {
	if s := t.Suggest(name); s != "" {
		return fmt.Sprintf("Did you mean '%s'?", s)
	}
	return ""
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}
	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len1][len2]
}
