// Package doi has small helpers for digital object identifiers.
package doi

import (
	"regexp"
	"strings"
)

// Prefix is the directory indicator every DOI starts with.
const Prefix = "10."

var pattern = regexp.MustCompile(`^10\.\d{4,}/\S+$`)

// HasPrefix reports whether s follows the DOI namespace convention. No other
// checks are performed.
func HasPrefix(s string) bool {
	return strings.HasPrefix(s, Prefix)
}

// Clean turns a raw DOI, possibly given as URL or with a "doi:" prefix, into
// its lowercase bare form. Returns the empty string, if the value does not
// look like a DOI after cleanup.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	raw = strings.TrimSpace(strings.ToLower(raw))
	if strings.Contains(raw, "–") {
		// en dash, not allowed
		return ""
	}
	if strings.Count(raw, " ") != 0 {
		return ""
	}
	for _, prefix := range []string{"doi:", "http://", "https://", "doi.org/", "dx.doi.org/"} {
		raw = strings.TrimPrefix(raw, prefix)
	}
	if len(raw) > 9 && raw[7:9] == "//" && strings.Contains(raw, "10.1037//") {
		raw = raw[:8] + raw[9:]
	}
	if strings.ContainsAny(raw, "Â¬") {
		return ""
	}
	if !HasPrefix(raw) || !pattern.MatchString(raw) || !isASCII(raw) {
		return ""
	}
	return raw
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
