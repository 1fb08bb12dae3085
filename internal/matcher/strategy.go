package matcher

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects how a query is scored against candidate questions
type Strategy string

const (
	// StrategyJaccard compares lower-cased whitespace token sets
	StrategyJaccard Strategy = "jaccard"
	// StrategyCosine compares lower-cased term frequency vectors
	StrategyCosine Strategy = "cosine"
	// StrategyFuzzy compares raw strings by edit similarity, after an exact-match check
	StrategyFuzzy Strategy = "fuzzy"
)

// FuzzyAlgorithm selects the string similarity used by StrategyFuzzy
type FuzzyAlgorithm string

const (
	FuzzyRatio       FuzzyAlgorithm = "ratio"
	FuzzyJaroWinkler FuzzyAlgorithm = "jaro-winkler"
	FuzzyLevenshtein FuzzyAlgorithm = "levenshtein"
)

var (
	ErrUnknownStrategy       = errors.New("unknown strategy")
	ErrUnknownFuzzyAlgorithm = errors.New("unknown fuzzy algorithm")
	ErrInvalidThreshold      = errors.New("threshold must be between 0 and 1")
)

// Strategies lists every supported strategy
func Strategies() []Strategy {
	return []Strategy{StrategyJaccard, StrategyCosine, StrategyFuzzy}
}

// FuzzyAlgorithms lists every supported fuzzy algorithm
func FuzzyAlgorithms() []FuzzyAlgorithm {
	return []FuzzyAlgorithm{FuzzyRatio, FuzzyJaroWinkler, FuzzyLevenshtein}
}

// ParseStrategy resolves a strategy name, accepting a few long-form aliases
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jaccard", "token-jaccard":
		return StrategyJaccard, nil
	case "cosine", "tf-cosine":
		return StrategyCosine, nil
	case "fuzzy", "fuzzy-ratio", "close-match":
		return StrategyFuzzy, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// ParseFuzzyAlgorithm resolves a fuzzy algorithm name; empty means FuzzyRatio
func ParseFuzzyAlgorithm(name string) (FuzzyAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ratio":
		return FuzzyRatio, nil
	case "jaro-winkler", "jarowinkler":
		return FuzzyJaroWinkler, nil
	case "levenshtein":
		return FuzzyLevenshtein, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFuzzyAlgorithm, name)
	}
}

// Scorer computes a similarity in [0, 1] between a query and a candidate question
type Scorer func(query, candidate string) float64

// NewScorer returns the scoring function for a strategy
func NewScorer(strategy Strategy, algorithm FuzzyAlgorithm) (Scorer, error) {
	switch strategy {
	case StrategyJaccard:
		return Jaccard, nil
	case StrategyCosine:
		return Cosine, nil
	case StrategyFuzzy:
		switch algorithm {
		case FuzzyRatio, "":
			return SequenceRatio, nil
		case FuzzyJaroWinkler:
			return JaroWinkler, nil
		case FuzzyLevenshtein:
			return Levenshtein, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownFuzzyAlgorithm, algorithm)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}
