package search

import (
	"strings"
	"unicode/utf8"

	"github.com/gershuni/GenizahSearch/corpus"
)

// autoDistance derives the edit distance for a fuzzy token from its
// length: short tokens admit no edits, mid-length tokens one, longer two.
func autoDistance(term string) int {
	switch n := utf8.RuneCountInString(term); {
	case n < 3:
		return 0
	case n < 5:
		return 1
	default:
		return 2
	}
}

// Snippet extracts the token window around a hit for display, radius
// tokens to each side of the matched positions. Truncated ends are marked
// with an ellipsis. Surfaces are reported as written in the fragment, not
// their normalized forms.
func Snippet(text string, positions []int, radius int) string {
	if len(positions) == 0 {
		return ""
	}
	tokens := corpus.Tokenize(text)
	if len(tokens) == 0 {
		return ""
	}

	lo, hi := positions[0], positions[0]
	for _, pos := range positions[1:] {
		if pos < lo {
			lo = pos
		}
		if pos > hi {
			hi = pos
		}
	}

	start := lo - radius
	if start < 0 {
		start = 0
	}
	end := hi + radius + 1
	if end > len(tokens) {
		end = len(tokens)
	}
	if start >= end {
		return ""
	}

	words := make([]string, 0, end-start+2)
	if start > 0 {
		words = append(words, "...")
	}
	for _, token := range tokens[start:end] {
		words = append(words, token.Surface)
	}
	if end < len(tokens) {
		words = append(words, "...")
	}
	return strings.Join(words, " ")
}
