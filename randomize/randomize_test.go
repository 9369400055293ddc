// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package randomize

import (
	"slices"
	"testing"
)

func TestShuffle_PreservesElements(t *testing.T) {
	tests := []struct {
		name  string
		input []int
	}{
		{"empty", []int{}},
		{"single", []int{7}},
		{"five", []int{1, 2, 3, 4, 5}},
		{"duplicates", []int{1, 1, 2, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := slices.Clone(tt.input)
			out := Shuffle(tt.input)

			if len(out) != len(tt.input) {
				t.Fatalf("Expected length %d, got %d", len(tt.input), len(out))
			}

			sortedOut := slices.Clone(out)
			slices.Sort(sortedOut)
			sortedIn := slices.Clone(tt.input)
			slices.Sort(sortedIn)
			if !slices.Equal(sortedOut, sortedIn) {
				t.Errorf("Expected same elements %v, got %v", sortedIn, sortedOut)
			}

			if !slices.Equal(tt.input, original) {
				t.Errorf("Shuffle mutated its input: %v", tt.input)
			}
		})
	}
}

func TestPermutation(t *testing.T) {
	for _, n := range []int{0, 1, 3, 50} {
		perm := Permutation(n)
		if len(perm) != n {
			t.Fatalf("Permutation(%d) length = %d", n, len(perm))
		}
		seen := make(map[int]bool, n)
		for _, v := range perm {
			if v < 0 || v >= n {
				t.Errorf("Permutation(%d) produced out-of-range index %d", n, v)
			}
			if seen[v] {
				t.Errorf("Permutation(%d) repeated index %d", n, v)
			}
			seen[v] = true
		}
	}
}

func TestPermutation_NegativeCount(t *testing.T) {
	if perm := Permutation(-2); len(perm) != 0 {
		t.Errorf("Expected empty permutation, got %v", perm)
	}
}

func TestShuffle_ReachesEveryArrangement(t *testing.T) {
	// 3 elements have 6 arrangements; 2000 draws miss one with negligible probability.
	seen := make(map[[3]int]bool)
	for i := 0; i < 2000; i++ {
		p := Permutation(3)
		seen[[3]int{p[0], p[1], p[2]}] = true
	}
	if len(seen) != 6 {
		t.Errorf("Expected all 6 arrangements, saw %d", len(seen))
	}
}
