package matcher

import (
	"strconv"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/pmezard/go-difflib/difflib"
)

// SequenceRatio returns the SequenceMatcher ratio 2*M/T, where M is the total
// size of the matching blocks and T the combined rune length. The candidate
// is the first sequence and the query the second, so junk detection applies
// to the query.
func SequenceRatio(query, candidate string) float64 {
	if query == "" || candidate == "" {
		return 0
	}

	m := difflib.NewMatcher(splitRunes(candidate), splitRunes(query))
	return m.Ratio()
}

// JaroWinkler returns the Jaro-Winkler similarity of query and candidate
func JaroWinkler(query, candidate string) float64 {
	if query == "" || candidate == "" {
		return 0
	}
	if query == candidate {
		return 1
	}
	return clamp01(widen(edlib.JaroWinklerSimilarity(query, candidate)))
}

// Levenshtein returns (maxLength - distance) / maxLength for query and
// candidate, with lengths counted in runes
func Levenshtein(query, candidate string) float64 {
	if query == "" || candidate == "" {
		return 0
	}
	if query == candidate {
		return 1
	}

	longest := max(utf8.RuneCountInString(query), utf8.RuneCountInString(candidate))
	distance := edlib.LevenshteinDistance(query, candidate)
	return clamp01(float64(longest-distance) / float64(longest))
}

// widen converts a float32 score to the float64 with the same shortest
// decimal form, so 0.7 stays 0.7 instead of 0.699999988.
func widen(v float32) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'g', -1, 32), 64)
	if err != nil {
		return float64(v)
	}
	return f
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
