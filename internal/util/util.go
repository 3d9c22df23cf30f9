// Package util has small generic helpers used across lexcheck.
package util

import (
	"sort"
)

// OrderedKeys returns the keys of m, ordered a particular way. The order is
// guaranteed to be the same on every run.
//
// As of this writing, the order is alphabetical, but this function does not
// guarantee this will always be the case.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortBy returns a copy of items sorted with the given less function. Items
// that compare equal keep their original relative order.
func SortBy[E any](items []E, less func(left, right E) bool) []E {
	sorted := make([]E, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	return sorted
}
