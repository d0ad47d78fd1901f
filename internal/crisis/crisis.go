// Package crisis screens free-text messages for signs that the user may be
// in danger.
//
// Matching is a case-insensitive substring search with no stemming or
// negation handling, so "not in danger" still matches and short terms can
// match inside unrelated words.
package crisis

import "strings"

var keywords = []string{
	"suicide",
	"kill myself",
	"end my life",
	"self-harm",
	"hurt myself",
	"kill",
	"murder",
	"violence",
	"violent",
	"abuse",
	"assault",
	"rape",
	"beat me",
	"hit me",
	"weapon",
	"gun",
	"danger",
	"unsafe",
	"threat",
	"urgent",
}

// Detect reports whether message contains any crisis keyword.
func Detect(message string) bool {
	m := strings.ToLower(message)
	for _, k := range keywords {
		if strings.Contains(m, k) {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the keyword list.
func Keywords() []string {
	return append([]string(nil), keywords...)
}
