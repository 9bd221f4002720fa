// Package generics implements the map-ordering helpers the CLI needs for
// deterministic output: Go's map iteration order is intentionally randomized,
// but a move-score report needs the same ordering on every run.
package generics

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// KeysSlice returns a slice with the keys of a map.
func KeysSlice[Map interface{ ~map[K]V }, K comparable, V any](m Map) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// SortedKeys returns an iterator over the sorted keys of the given map.
//
// It extracts the keys, sorts them and then iterates over them, so it's
// convenient but not fast.
func SortedKeys[M interface{ ~map[K]V }, K cmp.Ordered, V any](m M) iter.Seq[K] {
	sortedKeys := KeysSlice(m)
	slices.Sort(sortedKeys)
	return slices.Values(sortedKeys)
}

// SortedKeysAndValues returns an iterator over keys and values of a map m,
// sorted by key, so callers (a CLI report, a log line) get stable output
// across runs.
func SortedKeysAndValues[Map interface{ ~map[K]V }, K cmp.Ordered, V any](m Map) iter.Seq2[K, V] {
	sortedKeys := slices.Collect(maps.Keys(m))
	slices.Sort(sortedKeys)
	return func(yield func(K, V) bool) {
		for _, key := range sortedKeys {
			if !yield(key, m[key]) {
				break
			}
		}
	}
}

// Pair defines a pair of 2 different arbitrary values, used to collect a
// Seq2 into a comparable slice for testing.
type Pair[F, S any] struct {
	First  F
	Second S
}

// CollectPairs from an iterator with 2 values.
func CollectPairs[F, S any](seq iter.Seq2[F, S]) []Pair[F, S] {
	var pairs []Pair[F, S]
	for a, b := range seq {
		pairs = append(pairs, Pair[F, S]{a, b})
	}
	return pairs
}
