package corpus

import (
	"strings"
	"unicode"

	"github.com/gershuni/GenizahSearch/core"
)

// isWordRune reports whether r belongs to a token. Besides letters and
// digits this admits the underscore, the apostrophe standing in for a
// geresh, and the full Hebrew block including points and punctuation.
func isWordRune(r rune) bool {
	if r >= 0x0590 && r <= 0x05FF {
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\''
}

// Tokenize splits text into position-numbered tokens. Positions count
// tokens, not bytes, and start at zero.
func Tokenize(text string) []core.Token {
	var tokens []core.Token
	start := -1
	pos := 0
	flush := func(end int) {
		if start < 0 {
			return
		}
		surface := text[start:end]
		tokens = append(tokens, core.Token{
			Surface: surface,
			Norm:    Normalize(surface),
			Pos:     pos,
		})
		pos++
		start = -1
	}
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
		} else {
			flush(i)
		}
	}
	flush(len(text))
	return tokens
}

// Terms returns the normalized forms of the tokens in text.
func Terms(text string) []string {
	tokens := Tokenize(text)
	terms := make([]string, len(tokens))
	for i, token := range tokens {
		terms[i] = token.Norm
	}
	return terms
}

// Normalize folds a token surface to its index form.
func Normalize(surface string) string {
	return strings.ToLower(surface)
}
