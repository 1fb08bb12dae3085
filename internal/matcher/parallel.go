package matcher

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// scoreAll returns one score per candidate, indexed like the corpus.
// Large corpora are split into contiguous chunks scored by separate
// goroutines; each goroutine writes only its own slots.
func (m *Matcher) scoreAll(query string, corpus Corpus) ([]float64, error) {
	n := corpus.Len()
	scores := make([]float64, n)

	workers := m.parallel.Workers
	if m.parallel.MinCandidates <= 0 || n < m.parallel.MinCandidates || workers < 2 {
		if err := m.scoreRange(query, corpus, scores, 0, n); err != nil {
			return nil, err
		}
		return scores, nil
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		start := start
		end := min(start+chunk, n)
		g.Go(func() error {
			return m.scoreRange(query, corpus, scores, start, end)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.logger.Debug("scored candidates in parallel", "candidates", n, "chunk", chunk)
	return scores, nil
}

// scoreRange fills scores[start:end]. A panicking scorer is reported as an
// error naming the candidate instead of taking the process down.
func (m *Matcher) scoreRange(query string, corpus Corpus, scores []float64, start, end int) (err error) {
	i := start
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to score candidate %d: %v", i, r)
		}
	}()

	for ; i < end; i++ {
		scores[i] = m.scorer(query, corpus.Question(i))
	}
	return nil
}
