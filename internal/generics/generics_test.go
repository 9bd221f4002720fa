package generics

import (
	"slices"
	"testing"
)

func TestSortedKeys(t *testing.T) {
	m := map[int]string{1: "1", 5: "5", 3: "3"}
	// The builtin map iterator is deliberately non-deterministic, so run it a
	// bunch of times to show the result is stably sorted regardless.
	want := []int{1, 3, 5}
	for range 100 {
		got := slices.Collect(SortedKeys(m))
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestSortedKeysAndValues(t *testing.T) {
	m := map[int]string{1: "1", 5: "5", 3: "3"}
	want := []Pair[int, string]{{1, "1"}, {3, "3"}, {5, "5"}}
	for range 100 {
		got := CollectPairs(SortedKeysAndValues(m))
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
