package util

import (
	"cmp"
	"slices"
)

// IntersectIndices returns the intersection of two integer slices
// It returns elements that exist in both slices a and b, in the order of b
func IntersectIndices(a, b []int) []int {
	if len(a) == 0 || len(b) == 0 {
		return []int{}
	}

	setA := make(map[int]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}

	result := []int{}
	for _, v := range b {
		if _, ok := setA[v]; ok {
			result = append(result, v)
		}
	}
	return result
}

// Set is an insertion-only collection of distinct values
type Set[T cmp.Ordered] map[T]struct{}

// Add inserts v, ignoring duplicates
func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

// Sorted materializes the set as an ascending slice. An empty set yields an
// empty, non-nil slice so JSON encodes it as [].
func (s Set[T]) Sorted() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// TopK stable-sorts items by key descending and keeps at most k of them.
// Items with equal keys keep their input order.
func TopK[T any, K cmp.Ordered](items []T, k int, key func(T) K) []T {
	out := make([]T, len(items))
	copy(out, items)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	})
	if k < 0 {
		k = 0
	}
	if len(out) > k {
		out = out[:k]
	}
	return out
}
