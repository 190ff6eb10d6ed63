package dispatch

import (
	"sort"
	"strings"
)

const (
	similarMaxDistance = 3
	similarMaxResults  = 3
)

// levenshtein calculates the edit distance between two strings,
// case-insensitively.
func levenshtein(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

type rankedCandidate struct {
	name     string
	distance int
}

// similarCommands ranks candidates by edit distance to the input and keeps
// the closest few, for "did you mean" diagnostics. Ties break
// alphabetically for stability.
func similarCommands(input string, candidates []string) []string {
	var ranked []rankedCandidate
	for _, name := range candidates {
		dist := levenshtein(input, name)
		if dist > 0 && dist <= similarMaxDistance {
			ranked = append(ranked, rankedCandidate{name: name, distance: dist})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].distance != ranked[j].distance {
			return ranked[i].distance < ranked[j].distance
		}
		return ranked[i].name < ranked[j].name
	})

	if len(ranked) > similarMaxResults {
		ranked = ranked[:similarMaxResults]
	}

	out := make([]string, len(ranked))
	for i, c := range ranked {
		out[i] = c.name
	}
	return out
}
