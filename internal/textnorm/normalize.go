// Package textnorm canonicalizes OCR output for comparison and cache keying.
package textnorm

import "strings"

// Normalize splits text into lines, trims each, drops lines that become
// empty, and rejoins with single newlines. Relative line order is preserved.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, "\n")
}
