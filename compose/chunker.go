package compose

import (
	"strings"

	"github.com/gershuni/GenizahSearch/corpus"
)

// Chunk is one sliding window over the source tokens.
type Chunk struct {
	// Offset is the token position of the window start in the source.
	Offset int

	// Tokens holds the normalized window content.
	Tokens []string

	// Text is the window joined back into query text.
	Text string
}

// Chunks splits source into overlapping windows of size tokens each,
// advancing one token at a time. A source shorter than one window
// yields no chunks.
func Chunks(source string, size int) []Chunk {
	return windowTerms(corpus.Terms(source), size)
}

func windowTerms(terms []string, size int) []Chunk {
	if size <= 0 || len(terms) < size {
		return nil
	}
	chunks := make([]Chunk, 0, len(terms)-size+1)
	for i := 0; i+size <= len(terms); i++ {
		window := terms[i : i+size]
		chunks = append(chunks, Chunk{
			Offset: i,
			Tokens: window,
			Text:   strings.Join(window, " "),
		})
	}
	return chunks
}
