package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iishyfishyy/qabot/internal/matcher"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 0.5, cfg.ThresholdFor(matcher.StrategyJaccard))
	require.Equal(t, 0.2, cfg.ThresholdFor(matcher.StrategyCosine))
	require.Equal(t, 0.6, cfg.ThresholdFor(matcher.StrategyFuzzy))
	require.Equal(t, "çık", cfg.Messages.ExitCommand)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataFile: hr.yaml
strategy: Cosine
thresholds:
  cosine: 0.35
fuzzy:
  algorithm: levenshtein
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "hr.yaml", cfg.DataFile)
	require.Equal(t, matcher.StrategyCosine, cfg.Strategy)
	require.Equal(t, 0.35, cfg.ThresholdFor(cfg.Strategy))
	require.Equal(t, 0.5, cfg.Thresholds.Jaccard)
	require.Equal(t, matcher.FuzzyLevenshtein, cfg.Fuzzy.Algorithm)
	require.Equal(t, Default().Messages, cfg.Messages)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("QABOT_DATA_FILE", "env.json")
	t.Setenv("QABOT_STRATEGY", "fuzzy")
	t.Setenv("QABOT_THRESHOLD_FUZZY", "0.75")
	t.Setenv("QABOT_THRESHOLD_COSINE", "not a number")
	t.Setenv("QABOT_PARALLEL_WORKERS", "3")
	t.Setenv("QABOT_LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "env.json", cfg.DataFile)
	require.Equal(t, matcher.StrategyFuzzy, cfg.Strategy)
	require.Equal(t, 0.75, cfg.Thresholds.Fuzzy)
	require.Equal(t, 0.2, cfg.Thresholds.Cosine)
	require.Equal(t, 3, cfg.Parallel.Workers)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadUsesEnvConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataFile: custom.json\n"), 0644))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "custom.json", cfg.DataFile)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds: [1, 2"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{name: "unknown strategy", mutate: func(c *Config) { c.Strategy = "bm25" }, target: matcher.ErrUnknownStrategy},
		{name: "threshold above one", mutate: func(c *Config) { c.Thresholds.Cosine = 1.5 }, target: matcher.ErrInvalidThreshold},
		{name: "negative threshold", mutate: func(c *Config) { c.Thresholds.Jaccard = -0.1 }, target: matcher.ErrInvalidThreshold},
		{name: "unknown algorithm", mutate: func(c *Config) { c.Fuzzy.Algorithm = "soundex" }, target: matcher.ErrUnknownFuzzyAlgorithm},
		{name: "empty data file", mutate: func(c *Config) { c.DataFile = " " }},
		{name: "empty exit command", mutate: func(c *Config) { c.Messages.ExitCommand = "" }},
		{name: "negative workers", mutate: func(c *Config) { c.Parallel.Workers = -1 }},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			if tc.target != nil {
				require.ErrorIs(t, err, tc.target)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	exists, err := Exists(path)
	require.NoError(t, err)
	require.False(t, exists)

	cfg := Default()
	cfg.DataFile = "hr.db"
	cfg.Strategy = matcher.StrategyFuzzy
	cfg.SetThreshold(matcher.StrategyFuzzy, 0.8)
	require.NoError(t, Save(cfg, path))

	exists, err = Exists(path)
	require.NoError(t, err)
	require.True(t, exists)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestMatcherOptions(t *testing.T) {
	cfg := Default()
	cfg.Strategy = matcher.StrategyCosine
	cfg.Parallel.Workers = 2

	opts := cfg.MatcherOptions()
	require.Equal(t, matcher.StrategyCosine, opts.Strategy)
	require.Equal(t, 0.2, opts.Threshold)
	require.Equal(t, 2, opts.Parallel.Workers)
	require.Equal(t, 5000, opts.Parallel.MinCandidates)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("QABOT_TEST_DOTENV=from-file\n"), 0644))
	t.Setenv("QABOT_TEST_DOTENV", "")
	os.Unsetenv("QABOT_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "from-file", os.Getenv("QABOT_TEST_DOTENV"))
}
