// Package security contains helpers for handling untrusted identifiers.
package security

import "strings"

// SanitizeID makes a safe file-name fragment from an arbitrary identifier.
// Gym ids arrive from the network and end up embedded in file names, so any
// character that is not an ASCII letter, digit, dot, underscore or dash is
// replaced with an underscore. Repeated underscores collapse and the result
// is trimmed to a reasonable length.
func SanitizeID(s string) string {
	if s == "" {
		return "unknown"
	}
	var b strings.Builder
	// Limit resulting filename length to avoid overly long paths
	const maxLen = 128
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
