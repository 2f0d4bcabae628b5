// Package mockpath canonicalizes endpoint paths so that stored and requested
// paths compare byte-for-byte.
package mockpath

import (
	"errors"
	"strings"
)

// ErrEmptyPath is returned when a path has no segments left after
// normalization (empty string or all slashes).
var ErrEmptyPath = errors.New("path cannot be empty or just slashes")

// Normalize strips leading, trailing and duplicate slashes and rejoins the
// remaining segments with single slashes. Matching is case-sensitive and
// exact; segments are treated as opaque bytes, so percent-encoded or Unicode
// input passes through unchanged.
func Normalize(raw string) (string, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	if len(segments) == 0 {
		return "", ErrEmptyPath
	}
	return strings.Join(segments, "/"), nil
}
