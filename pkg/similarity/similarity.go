// Package similarity pairs file names across two sets by normalized edit
// distance.
package similarity

import (
	"path"
	"sort"
)

// Levenshtein returns the single-character insert/delete/substitute edit
// distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	rows, cols := len(ra)+1, len(rb)+1

	table := make([][]int, rows)
	for i := range table {
		table[i] = make([]int, cols)
		table[i][0] = i
	}
	for j := 0; j < cols; j++ {
		table[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			table[i][j] = min(
				table[i-1][j]+1,
				table[i][j-1]+1,
				table[i-1][j-1]+cost,
			)
		}
	}

	return table[rows-1][cols-1]
}

// Similarity returns 1 - distance/longest length, in [0,1].
// Identical strings, including two empty ones, score 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	return 1.0 - float64(Levenshtein(a, b))/float64(longest)
}

// FindFuzzyMatches pairs left paths with right paths whose final segments
// are at least threshold similar. Each right path is used at most once.
//
// Left paths are visited in sorted order and right candidates are scanned in
// sorted order; a candidate only displaces the current best when strictly
// more similar, so ties resolve to the smallest right path.
func FindFuzzyMatches(left, right []string, threshold float64) map[string]string {
	matches := make(map[string]string)
	if len(left) == 0 || len(right) == 0 {
		return matches
	}

	lefts := append([]string(nil), left...)
	sort.Strings(lefts)
	rights := append([]string(nil), right...)
	sort.Strings(rights)

	names := make([]string, len(rights))
	for i, r := range rights {
		names[i] = path.Base(r)
	}
	used := make([]bool, len(rights))

	for _, l := range lefts {
		name := path.Base(l)
		best := -1
		bestScore := 0.0

		for i := range rights {
			if used[i] {
				continue
			}
			score := Similarity(name, names[i])
			if score < threshold {
				continue
			}
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}

		if best >= 0 {
			used[best] = true
			matches[l] = rights[best]
		}
	}

	return matches
}
