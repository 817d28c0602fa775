// Package editdistance computes Levenshtein distance over arbitrary sequences.
package editdistance

import "strings"

// Distance returns the minimum number of single-element insertions,
// deletions and substitutions needed to turn a into b.
//
// Runs in O(len(a)*len(b)) time. Only two rows of the DP table are kept.
func Distance[T comparable](a, b []T) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// Words splits both strings on spaces, tabs, newlines and carriage returns,
// drops empty fragments and returns the word-level distance.
func Words(a, b string) int {
	return Distance(Split(a), Split(b))
}

// Split tokenizes s on ' ', '\t', '\n' and '\r', discarding empty fragments.
func Split(s string) []string {
	return strings.FieldsFunc(s, isSeparator)
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
