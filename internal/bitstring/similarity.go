package bitstring

// Similarity is the sole effectiveness signal in the system:
// 1 - Levenshtein(a,b) / max(len(a), len(b)), in [0,1]. Identical strings
// score 1.0; maximally divergent strings score 0.0. The metric is
// symmetric, but callers that need both directions compute both
// expressions explicitly rather than relying on symmetry.
func Similarity(a, b BitString) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(distance(a, b))/float64(longest)
}

// distance is the Levenshtein edit distance, computed with the two-row
// dynamic program.
func distance(a, b BitString) int {
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
			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost
			min := deletion
			if insertion < min {
				min = insertion
			}
			if substitution < min {
				min = substitution
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
