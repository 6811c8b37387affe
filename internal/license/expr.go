package license

import "strings"

// IsCompound reports whether id is a parenthesized license expression such
// as "(MIT OR Apache-2.0)".
func IsCompound(id string) bool {
	return strings.HasPrefix(id, "(")
}

// Tokens splits a possibly compound identifier into its atomic license
// identifiers, dropping the AND/OR connectives.
func Tokens(id string) []string {
	if !IsCompound(id) {
		return []string{id}
	}
	var out []string
	for _, tok := range strings.Fields(strings.Trim(id, "()")) {
		if tok == "AND" || tok == "OR" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// TextURL returns the spdx.org license page for an identifier. For compound
// identifiers it returns the page for each token, joined by the original
// connectives.
func TextURL(id string) string {
	if !IsCompound(id) {
		return licensePage(id)
	}
	parts := strings.Fields(strings.Trim(id, "()"))
	for i, p := range parts {
		if p != "AND" && p != "OR" {
			parts[i] = licensePage(p)
		}
	}
	return strings.Join(parts, " ")
}

func licensePage(id string) string {
	return "https://spdx.org/licenses/" + id + ".html"
}
