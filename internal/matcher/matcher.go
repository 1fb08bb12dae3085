package matcher

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
)

// Corpus is the read-only view of an ordered question set
type Corpus interface {
	Len() int
	Question(i int) string
	Index(question string) (int, bool)
}

// ParallelOptions controls concurrent candidate scoring.
// Scoring stays sequential below MinCandidates or when MinCandidates is 0.
type ParallelOptions struct {
	MinCandidates int
	Workers       int
}

// Options configures a Matcher
type Options struct {
	Strategy       Strategy
	Threshold      float64
	FuzzyAlgorithm FuzzyAlgorithm
	Parallel       ParallelOptions
	Logger         *slog.Logger
}

// Result is the selected candidate for a query
type Result struct {
	Index    int
	Question string
	Score    float64
	Exact    bool
}

// Matcher selects the best scoring question for a query
type Matcher struct {
	strategy  Strategy
	threshold float64
	scorer    Scorer
	parallel  ParallelOptions
	logger    *slog.Logger
}

// New creates a matcher. The threshold has no default and must be in [0, 1].
func New(opts Options) (*Matcher, error) {
	if math.IsNaN(opts.Threshold) || opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, opts.Threshold)
	}

	scorer, err := NewScorer(opts.Strategy, opts.FuzzyAlgorithm)
	if err != nil {
		return nil, err
	}

	return newWithScorer(opts, scorer), nil
}

func newWithScorer(opts Options, scorer Scorer) *Matcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	parallel := opts.Parallel
	if parallel.Workers <= 0 {
		parallel.Workers = runtime.GOMAXPROCS(0)
	}

	return &Matcher{
		strategy:  opts.Strategy,
		threshold: opts.Threshold,
		scorer:    scorer,
		parallel:  parallel,
		logger:    logger.With("component", "matcher", "strategy", string(opts.Strategy)),
	}
}

// Strategy returns the configured strategy
func (m *Matcher) Strategy() Strategy {
	return m.strategy
}

// Threshold returns the minimum accepted score
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match returns the best candidate in corpus for query, or false when no
// candidate reaches the threshold. Equal scores resolve to the candidate
// that comes first in corpus order. The fuzzy strategy returns an exact
// question match before scoring anything.
func (m *Matcher) Match(query string, corpus Corpus) (Result, bool) {
	if corpus == nil || corpus.Len() == 0 {
		m.logger.Debug("empty corpus, no match")
		return Result{}, false
	}

	if m.strategy == StrategyFuzzy {
		if i, ok := corpus.Index(query); ok {
			m.logger.Debug("exact match", "index", i)
			return Result{Index: i, Question: corpus.Question(i), Score: 1, Exact: true}, true
		}
	}

	scores, err := m.scoreAll(query, corpus)
	if err != nil {
		m.logger.Error("scoring failed", "error", err)
		return Result{}, false
	}

	best, ok := selectBest(scores, m.threshold)
	if !ok {
		m.logger.Debug("no candidate reached threshold", "candidates", len(scores), "threshold", m.threshold)
		return Result{}, false
	}

	result := Result{Index: best, Question: corpus.Question(best), Score: scores[best]}
	m.logger.Debug("match found", "index", best, "question", result.Question, "score", result.Score)
	return result, true
}

// selectBest scans scores in order and keeps the first candidate with the
// highest score that is at least threshold.
func selectBest(scores []float64, threshold float64) (int, bool) {
	best := -1
	bestScore := 0.0

	for i, score := range scores {
		if score < threshold {
			continue
		}
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	return best, best >= 0
}
