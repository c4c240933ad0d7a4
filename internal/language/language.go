// Package language maps user-supplied language names to translation provider codes.
package language

import (
	"sort"

	"golang.org/x/text/cases"
)

// codes maps folded human names and short codes to provider codes.
var codes = map[string]string{
	"spanish": "es",
	"russian": "ru",
	"bengali": "bn",
	"french":  "fr",
	"arabic":  "ar",
	// Codes resolve to themselves
	"es": "es",
	"ru": "ru",
	"bn": "bn",
	"fr": "fr",
	"ar": "ar",
}

// Resolve returns the provider code for input, matched case-insensitively.
// Unknown input is returned unchanged; the provider rejects it later.
func Resolve(input string) string {
	if code, ok := codes[cases.Fold().String(input)]; ok {
		return code
	}
	return input
}

// Known reports whether input matches the table.
func Known(input string) bool {
	_, ok := codes[cases.Fold().String(input)]
	return ok
}

// Names returns the table keys in sorted order.
func Names() []string {
	names := make([]string, 0, len(codes))
	for name := range codes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
