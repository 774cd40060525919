// Package pagination provides shared list-query helpers.
package pagination

import "strconv"

// MaxListLimit caps every list endpoint regardless of what the caller asks
// for.
const MaxListLimit = 200

// Limit parses a raw limit query parameter. Empty, non-numeric, or
// non-positive input falls back to def; anything past MaxListLimit is
// capped.
func Limit(raw string, def int) int {
	limit := def
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit
}
