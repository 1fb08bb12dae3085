package matcher

import (
	"math"
	"strings"
)

// Tokens lower-cases text and splits it on whitespace
func Tokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Jaccard returns |A∩B| / |A∪B| over the token sets of a and b.
// Two empty token sets score 0.
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	union := len(setA)
	common := 0
	for tok := range setB {
		if _, ok := setA[tok]; ok {
			common++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// Cosine returns the cosine similarity of the term frequency vectors of a and b.
// A zero vector on either side scores 0.
func Cosine(a, b string) float64 {
	freqA := termFrequencies(a)
	freqB := termFrequencies(b)

	var dotProduct, normA, normB float64
	for tok, countA := range freqA {
		normA += countA * countA
		if countB, ok := freqB[tok]; ok {
			dotProduct += countA * countB
		}
	}
	for _, countB := range freqB {
		normB += countB * countB
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	// sqrt of the product keeps score(a, a) at exactly 1
	return math.Min(1, dotProduct/math.Sqrt(normA*normB))
}

func tokenSet(text string) map[string]struct{} {
	tokens := Tokens(text)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func termFrequencies(text string) map[string]float64 {
	tokens := Tokens(text)
	freq := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return freq
}
