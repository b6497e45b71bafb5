// Package utils holds small helpers shared across layers. Nothing in here
// knows about cases, judgments, or HTTP.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 integer and falls back to def when s is
// empty or malformed. Useful for optional query parameters.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// BoundedInt parses s like AtoiDefault and clamps the result to [lo, hi].
// The default itself is clamped too, so callers cannot smuggle an
// out-of-range value through def.
func BoundedInt(s string, def, lo, hi int) int {
	n := AtoiDefault(s, def)
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
