// Package merge holds the two dedup operations used across the pipeline.
//
// They deliberately differ in precedence: FirstWinsDedup keeps the earliest record for a
// key and discards the rest, LastWinsMerge folds every record for a key into one with later
// fields overriding earlier ones. Callers pick one explicitly at each stage.
package merge

import (
	"github.com/samber/lo"
)

// FirstWinsDedup returns items with every record whose key was already seen removed.
// Order of the surviving records is preserved.
func FirstWinsDedup[T any](items []T, key func(T) string) []T {
	if len(items) == 0 {
		return []T{}
	}
	return lo.UniqBy(items, key)
}

// LastWinsMerge groups items by key and folds each group with overlay, so fields of later
// records win and fields only present in earlier records survive. One record per distinct
// key is returned, in order of the key's first occurrence.
func LastWinsMerge[T any](items []T, key func(T) string, overlay func(prev, next T) T) []T {
	if len(items) == 0 {
		return []T{}
	}
	index := make(map[string]int, len(items))
	merged := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if i, seen := index[k]; seen {
			merged[i] = overlay(merged[i], item)
			continue
		}
		index[k] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
