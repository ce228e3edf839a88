package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestDistance bounds the edit distance of a typo suggestion.
const maxSuggestDistance = 3

// suggest returns the candidate closest to input, or "" when nothing is close.
// Subsequence matches ("prof" for "profile") are ranked by sahilm/fuzzy;
// typos fall back to edit distance.
func suggest(input string, candidates []string) string {
	needle := strings.ToLower(strings.TrimLeft(input, "-"))
	if needle == "" || len(candidates) == 0 {
		return ""
	}

	stripped := make([]string, len(candidates))
	for i, c := range candidates {
		stripped[i] = strings.ToLower(strings.TrimLeft(c, "-"))
	}

	if matches := fuzzy.Find(needle, stripped); len(matches) > 0 {
		return candidates[matches[0].Index]
	}

	best, bestDist := "", maxSuggestDistance+1
	for i, c := range stripped {
		if d := levenshtein(needle, c); d < bestDist {
			best, bestDist = candidates[i], d
		}
	}
	return best
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := min(row[j]+1, row[j-1]+1, diag+cost)
			diag = row[j]
			row[j] = next
		}
	}
	return row[len(b)]
}
