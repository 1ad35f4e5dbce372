// Package keying derives canonical cache keys from raw queries.
package keying

import "strings"

// Normalize trims surrounding whitespace and lowercases the query.
// Two queries that differ only in case or surrounding whitespace share a key.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
