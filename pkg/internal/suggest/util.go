// Package suggest ranks candidate strings by similarity to user input.
package suggest

import (
	"sort"

	"github.com/agext/levenshtein"
)

type suggestion struct {
	text  string
	score float64
}

// Similar returns the candidates scoring at least minScore
// against given, best match first.
func Similar(given string, candidates []string, minScore float64) []string {
	var result []suggestion
	for _, text := range candidates {
		score := Score(given, text)
		if score < minScore {
			continue
		}
		result = append(result, suggestion{
			text:  text,
			score: score,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].score > result[j].score
	})
	out := make([]string, len(result))
	for i, s := range result {
		out[i] = s.text
	}
	return out
}

// Score returns the similarity of given to the prefix of suggestion
// of the same length, between 0 and 1.
func Score(given, suggestion string) float64 {
	i := len(given)
	if len(suggestion) < i {
		i = len(suggestion)
	}
	return levenshtein.Similarity(given, suggestion[:i], nil)
}
