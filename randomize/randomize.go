// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package randomize produces uniformly random orderings.
//
// Every call draws from the process-wide generator, so two calls are never
// correlated and results are not reproducible.
package randomize

import "math/rand/v2"

// Shuffle returns a shuffled copy of s. The input is left untouched.
func Shuffle[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	for i := len(out) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Permutation returns a random permutation of [0, n).
func Permutation(n int) []int {
	if n <= 0 {
		return []int{}
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return Shuffle(idx)
}
