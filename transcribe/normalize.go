package transcribe

import (
	"strings"
	"unicode"
)

// NormalizeWord lowercases w and strips every non-letter rune. An empty
// result means the token carried no letters and must not be persisted.
func NormalizeWord(w string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(w) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
