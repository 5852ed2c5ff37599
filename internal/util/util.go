package util

import "strings"

// Pointer simply returns a pointer to the supplied value
func Pointer[T any](v T) *T {
	return &v
}

// Deref returns the pointed value or def when ptr is nil
func Deref[T any](ptr *T, def T) T {
	if ptr != nil {
		return *ptr
	}
	return def
}

// NormalizeName lowercases a node name. Names are case-insensitive in the tree.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
