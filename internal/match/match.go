// Package match scores requested artist names against platform catalog
// candidates.
//
// Scores are normalized Levenshtein similarity over the lower-cased names:
// (maxLen - editDistance) / maxLen, so 1.0 is an exact case-insensitive
// match and 0.0 shares nothing. A candidate is accepted when its score
// reaches [Threshold].
package match

import "strings"

// Threshold is the minimum similarity for a search result to count as
// matched. Candidates below it are still reported in diagnostics but are
// excluded from track acquisition.
const Threshold = 0.6

// Similarity returns a score in [0,1] for how closely candidate resembles
// requested. Case-insensitive; two empty strings are identical.
func Similarity(requested, candidate string) float64 {
	a := strings.ToLower(requested)
	b := strings.ToLower(candidate)
	if a == b {
		return 1.0
	}

	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(a, b)
	return float64(maxLen-distance) / float64(maxLen)
}

// BestCandidate scores every candidate name against requested and returns
// the index and score of the winner. Ties go to the first maximal candidate
// so results are stable across calls. Returns (-1, 0) for no candidates.
func BestCandidate(requested string, candidates []string) (int, float64) {
	best := -1
	bestScore := 0.0
	for i, name := range candidates {
		score := Similarity(requested, name)
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best, bestScore
}

// Accepted reports whether a similarity score meets [Threshold].
func Accepted(score float64) bool {
	return score >= Threshold
}

// levenshteinDistance computes edit distance with the classic single-row
// dynamic program; insertions, deletions and substitutions all cost 1.
func levenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		copy(prev, curr)
	}

	return prev[len(rb)]
}
