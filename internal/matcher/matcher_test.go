package matcher

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iishyfishyy/qabot/internal/qa"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMatcher(t *testing.T, strategy Strategy, threshold float64) *Matcher {
	t.Helper()
	m, err := New(Options{Strategy: strategy, Threshold: threshold, Logger: testLogger()})
	require.NoError(t, err)
	return m
}

func storeOf(questions ...string) *qa.Store {
	pairs := make([]qa.Pair, len(questions))
	for i, q := range questions {
		pairs[i] = qa.Pair{Question: q, Answer: fmt.Sprintf("answer %d", i)}
	}
	return qa.NewStore(pairs)
}

func TestMatchJaccardReorderedQuery(t *testing.T) {
	store := storeOf("ne zaman izin alabilirim")
	m := newTestMatcher(t, StrategyJaccard, 0.5)

	result, ok := m.Match("izin ne zaman alabilirim", store)
	require.True(t, ok)
	assert.Equal(t, 0, result.Index)
	assert.Equal(t, "ne zaman izin alabilirim", result.Question)
	assert.Equal(t, 1.0, result.Score)
	assert.False(t, result.Exact)
}

func TestMatchJaccardBelowThreshold(t *testing.T) {
	store := storeOf("ne zaman izin alabilirim")
	m := newTestMatcher(t, StrategyJaccard, 0.5)

	_, ok := m.Match("maaş ne zaman ödeniyor", store)
	assert.False(t, ok)
}

func TestMatchAcceptsScoreEqualToThreshold(t *testing.T) {
	store := storeOf("a b c d")
	m := newTestMatcher(t, StrategyJaccard, 0.25)

	result, ok := m.Match("a", store)
	require.True(t, ok)
	assert.Equal(t, 0.25, result.Score)
}

func TestMatchTieKeepsFirstCandidate(t *testing.T) {
	store := storeOf("x y z", "b a", "a b", "a b c")

	for _, strategy := range []Strategy{StrategyJaccard, StrategyCosine} {
		t.Run(string(strategy), func(t *testing.T) {
			m := newTestMatcher(t, strategy, 0.1)
			result, ok := m.Match("a b", store)
			require.True(t, ok)
			assert.Equal(t, 1, result.Index)
			assert.Equal(t, "b a", result.Question)
		})
	}
}

func TestMatchZeroThresholdAlwaysMatches(t *testing.T) {
	store := storeOf("maaş", "izin", "avans")

	for _, strategy := range Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			m := newTestMatcher(t, strategy, 0)

			result, ok := m.Match("", store)
			require.True(t, ok)
			assert.Equal(t, 0, result.Index)
			assert.Equal(t, 0.0, result.Score)

			result, ok = m.Match("izin", store)
			require.True(t, ok)
			assert.Equal(t, 1, result.Index)
		})
	}
}

func TestMatchEmptyQueryNoMatchAboveZero(t *testing.T) {
	store := storeOf("ne zaman izin alabilirim")

	for _, strategy := range []Strategy{StrategyJaccard, StrategyCosine} {
		m := newTestMatcher(t, strategy, 0.01)
		_, ok := m.Match("", store)
		assert.False(t, ok, strategy)
	}
}

func TestMatchEmptyStore(t *testing.T) {
	var nilStore *qa.Store

	for _, strategy := range Strategies() {
		for _, threshold := range []float64{0, 0.5, 1} {
			m := newTestMatcher(t, strategy, threshold)

			_, ok := m.Match("izin", storeOf())
			assert.False(t, ok)

			_, ok = m.Match("izin", nilStore)
			assert.False(t, ok)

			_, ok = m.Match("izin", nil)
			assert.False(t, ok)
		}
	}
}

func TestMatchNeverReturnsBelowThreshold(t *testing.T) {
	store := storeOf(samplePhrases...)
	queries := append([]string{"izin", "zaman", "talebi nasıl"}, samplePhrases...)

	for _, strategy := range Strategies() {
		for _, threshold := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
			m := newTestMatcher(t, strategy, threshold)
			for _, q := range queries {
				result, ok := m.Match(q, store)
				if ok {
					assert.GreaterOrEqual(t, result.Score, threshold, "%s %q", strategy, q)
				}
			}
		}
	}
}

func TestFuzzyExactMatchSkipsScoring(t *testing.T) {
	store := storeOf("maaş ne zaman yatar", "izin talebi nasıl yapılır")

	calls := 0
	counting := func(query, candidate string) float64 {
		calls++
		return SequenceRatio(query, candidate)
	}
	m := newWithScorer(Options{Strategy: StrategyFuzzy, Threshold: 0.6, Logger: testLogger()}, counting)

	result, ok := m.Match("izin talebi nasıl yapılır", store)
	require.True(t, ok)
	assert.True(t, result.Exact)
	assert.Equal(t, 1, result.Index)
	assert.Equal(t, 1.0, result.Score)
	assert.Zero(t, calls)

	result, ok = m.Match("izin talebi nasil yapilir", store)
	require.True(t, ok)
	assert.False(t, result.Exact)
	assert.Equal(t, 1, result.Index)
	assert.Equal(t, 2, calls)
}

func TestFuzzyLevenshteinAcceptsScoreEqualToThreshold(t *testing.T) {
	store := storeOf("abcdefghij")
	m, err := New(Options{
		Strategy:       StrategyFuzzy,
		Threshold:      0.7,
		FuzzyAlgorithm: FuzzyLevenshtein,
		Logger:         testLogger(),
	})
	require.NoError(t, err)

	result, ok := m.Match("abcdefgxyz", store)
	require.True(t, ok)
	assert.Equal(t, 0.7, result.Score)
}

func TestFuzzyJaroWinklerAcceptsItsOwnScoreAsThreshold(t *testing.T) {
	store := storeOf("martha")
	score := JaroWinkler("marhta", "martha")
	require.Greater(t, score, 0.0)

	m, err := New(Options{
		Strategy:       StrategyFuzzy,
		Threshold:      score,
		FuzzyAlgorithm: FuzzyJaroWinkler,
		Logger:         testLogger(),
	})
	require.NoError(t, err)

	_, ok := m.Match("marhta", store)
	assert.True(t, ok)
}

func TestFuzzyExactMatchIsCaseSensitive(t *testing.T) {
	store := storeOf("İzin")
	m := newTestMatcher(t, StrategyFuzzy, 0.9)

	_, ok := m.Match("izin", store)
	assert.False(t, ok)
}

func TestTokenStrategiesIgnoreExactShortcut(t *testing.T) {
	store := storeOf("izin")

	calls := 0
	counting := func(query, candidate string) float64 {
		calls++
		return Jaccard(query, candidate)
	}
	m := newWithScorer(Options{Strategy: StrategyJaccard, Threshold: 0.5, Logger: testLogger()}, counting)

	result, ok := m.Match("izin", store)
	require.True(t, ok)
	assert.False(t, result.Exact)
	assert.Equal(t, 1, calls)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	for _, threshold := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		_, err := New(Options{Strategy: StrategyJaccard, Threshold: threshold})
		require.ErrorIs(t, err, ErrInvalidThreshold, "%v", threshold)
	}

	_, err := New(Options{Strategy: "bm25", Threshold: 0.5})
	require.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = New(Options{Strategy: StrategyFuzzy, Threshold: 0.5, FuzzyAlgorithm: "soundex"})
	require.ErrorIs(t, err, ErrUnknownFuzzyAlgorithm)
}

func TestMatcherAccessors(t *testing.T) {
	m := newTestMatcher(t, StrategyCosine, 0.2)
	assert.Equal(t, StrategyCosine, m.Strategy())
	assert.Equal(t, 0.2, m.Threshold())
}

func TestParallelScoringMatchesSequential(t *testing.T) {
	questions := make([]string, 1000)
	for i := range questions {
		questions[i] = fmt.Sprintf("soru %d grup %d", i%7, i%13)
	}
	store := storeOf(questions...)
	queries := []string{"soru 3", "grup 5 soru 2", "grup", "hiç", ""}

	for _, strategy := range Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			sequential, err := New(Options{Strategy: strategy, Threshold: 0.2, Logger: testLogger()})
			require.NoError(t, err)
			parallel, err := New(Options{
				Strategy:  strategy,
				Threshold: 0.2,
				Parallel:  ParallelOptions{MinCandidates: 10, Workers: 6},
				Logger:    testLogger(),
			})
			require.NoError(t, err)

			for _, q := range queries {
				want, wantOK := sequential.Match(q, store)
				got, gotOK := parallel.Match(q, store)
				assert.Equal(t, wantOK, gotOK, q)
				assert.Equal(t, want, got, q)
			}
		})
	}
}

func TestMatchReportsNoMatchWhenScorerPanics(t *testing.T) {
	questions := make([]string, 50)
	for i := range questions {
		questions[i] = fmt.Sprintf("soru %d", i)
	}
	store := storeOf(questions...)

	panicky := func(query, candidate string) float64 {
		if candidate == "soru 37" {
			panic("broken scorer")
		}
		return Jaccard(query, candidate)
	}

	cases := map[string]ParallelOptions{
		"sequential": {},
		"parallel":   {MinCandidates: 10, Workers: 4},
	}
	for name, parallel := range cases {
		t.Run(name, func(t *testing.T) {
			m := newWithScorer(Options{
				Strategy:  StrategyJaccard,
				Threshold: 0.1,
				Parallel:  parallel,
				Logger:    testLogger(),
			}, panicky)

			require.NotPanics(t, func() {
				_, ok := m.Match("soru 3", store)
				assert.False(t, ok)
			})

			_, err := m.scoreAll("soru 3", store)
			require.ErrorContains(t, err, "candidate 37")
		})
	}
}

func TestSelectBest(t *testing.T) {
	cases := []struct {
		name      string
		scores    []float64
		threshold float64
		want      int
		ok        bool
	}{
		{name: "empty", scores: nil, threshold: 0, ok: false},
		{name: "all below", scores: []float64{0.1, 0.4}, threshold: 0.5, ok: false},
		{name: "first max wins", scores: []float64{0.2, 0.9, 0.9, 0.3}, threshold: 0.5, want: 1, ok: true},
		{name: "equal to threshold", scores: []float64{0.5}, threshold: 0.5, want: 0, ok: true},
		{name: "zero threshold zero scores", scores: []float64{0, 0, 0}, threshold: 0, want: 0, ok: true},
		{name: "later higher wins", scores: []float64{0.6, 0.7}, threshold: 0.5, want: 1, ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := selectBest(tc.scores, tc.threshold)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.Equal(t, tc.want, got)
			}
		})
	}
}
