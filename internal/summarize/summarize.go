// Package summarize bounds extracted text to a size the translator accepts.
//
// This is a head and tail excerpt, not a semantic summary. Cut points are
// counted in characters (code points) with no regard for sentence or word
// boundaries, so the same input always produces the same output.
package summarize

import "unicode/utf8"

// DefaultLimit is the character budget of the text handed to translation.
const DefaultLimit = 5000

// Separator is inserted between the head and the tail of a bounded text.
const Separator = "\n...\n"

// Bound returns text unchanged when it has at most limit characters.
// Otherwise it returns the first limit/2 characters, Separator, and the
// last limit-limit/2 characters. A non-positive limit means DefaultLimit.
func Bound(text string, limit int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	n := utf8.RuneCountInString(text)
	if n <= limit {
		return text
	}

	headChars := limit / 2
	tailChars := limit - headChars

	head := byteOffset(text, headChars)
	tail := byteOffset(text, n-tailChars)
	return text[:head] + Separator + text[tail:]
}

// byteOffset returns the byte index of the n-th character of text.
func byteOffset(text string, n int) int {
	i := 0
	for ; n > 0 && i < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}
