// Package chunker splits text into ordered, size-bounded chunks.
package chunker

import (
	"iter"
	"unicode/utf8"
)

// DefaultMaxChars is the default maximum characters per chunk.
// Amazon Translate accepts 10000 per request, so 9000 leaves headroom.
const DefaultMaxChars = 9000

// Chunk is one contiguous piece of the source text.
type Chunk struct {
	Index int
	Text  string
}

// Split yields contiguous chunks of at most maxChars characters (code points)
// from left to right. Concatenating every chunk in order reproduces text.
// Empty text yields nothing. maxChars <= 0 uses DefaultMaxChars.
//
// The sequence is lazy and may be ranged over any number of times.
func Split(text string, maxChars int) iter.Seq[Chunk] {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	return func(yield func(Chunk) bool) {
		start, index := 0, 0
		for start < len(text) {
			end := advance(text, start, maxChars)
			if !yield(Chunk{Index: index, Text: text[start:end]}) {
				return
			}
			start = end
			index++
		}
	}
}

// advance returns the byte offset n characters past start, capped at len(text).
func advance(text string, start, n int) int {
	i := start
	for count := 0; count < n && i < len(text); count++ {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}

// Collect returns every chunk of Split(text, maxChars) as a slice.
func Collect(text string, maxChars int) []Chunk {
	var chunks []Chunk
	for c := range Split(text, maxChars) {
		chunks = append(chunks, c)
	}
	return chunks
}

// Count returns the number of chunks Split would yield without building them.
func Count(text string, maxChars int) int {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	n := utf8.RuneCountInString(text)
	return (n + maxChars - 1) / maxChars
}
