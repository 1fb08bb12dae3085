package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iishyfishyy/qabot/internal/matcher"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigDirName  = ".qabot"
	ConfigFileName = "config.yaml"

	// EnvConfigPath overrides the config file location
	EnvConfigPath = "QABOT_CONFIG"
)

// Config represents the application configuration
type Config struct {
	DataFile   string           `yaml:"dataFile"`
	Strategy   matcher.Strategy `yaml:"strategy"`
	Thresholds Thresholds       `yaml:"thresholds"`
	Fuzzy      FuzzyConfig      `yaml:"fuzzy"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Messages   Messages         `yaml:"messages"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Thresholds holds the minimum accepted score for each strategy
type Thresholds struct {
	Jaccard float64 `yaml:"jaccard"`
	Cosine  float64 `yaml:"cosine"`
	Fuzzy   float64 `yaml:"fuzzy"`
}

// FuzzyConfig selects the string similarity used by the fuzzy strategy
type FuzzyConfig struct {
	Algorithm matcher.FuzzyAlgorithm `yaml:"algorithm"`
}

// ParallelConfig controls concurrent scoring for large data sets.
// MinCandidates 0 keeps scoring sequential; Workers 0 uses every CPU.
type ParallelConfig struct {
	MinCandidates int `yaml:"minCandidates"`
	Workers       int `yaml:"workers"`
}

// Messages holds the fixed phrases of the chat session
type Messages struct {
	Greeting    string `yaml:"greeting"`
	Prompt      string `yaml:"prompt"`
	BotPrefix   string `yaml:"botPrefix"`
	Fallback    string `yaml:"fallback"`
	Farewell    string `yaml:"farewell"`
	ExitCommand string `yaml:"exitCommand"`
}

// LoggingConfig controls the stderr logger
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DataFile: "chatbot_hr_discussion.json",
		Strategy: matcher.StrategyJaccard,
		Thresholds: Thresholds{
			Jaccard: 0.5,
			Cosine:  0.2,
			Fuzzy:   0.6,
		},
		Fuzzy: FuzzyConfig{Algorithm: matcher.FuzzyRatio},
		Parallel: ParallelConfig{
			MinCandidates: 5000,
		},
		Messages: Messages{
			Greeting:    "Merhaba! Size nasıl yardımcı olabilirim? (Çıkmak için 'çık' yazabilirsiniz.)",
			Prompt:      "Kullanıcı: ",
			BotPrefix:   "Chatbot: ",
			Fallback:    "Bu konuda size yardımcı olamıyorum.",
			Farewell:    "Görüşmek üzere!",
			ExitCommand: "çık",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// GetConfigPath returns the path to the config file, honoring QABOT_CONFIG
func GetConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// Load reads the configuration at path, or the default location when path
// is empty. A missing file yields the defaults. Environment overrides are
// applied last and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if err := hydrateFromFile(cfg, path); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Save writes the configuration to path, or the default location when path is empty
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists checks if a configuration file exists
func Exists(path string) (bool, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return false, err
		}
	}

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// LoadDotEnv loads variables from a .env file without overriding the
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QABOT_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("QABOT_STRATEGY"); v != "" {
		cfg.Strategy = matcher.Strategy(v)
	}
	if v := os.Getenv("QABOT_THRESHOLD_JACCARD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Thresholds.Jaccard = parsed
		}
	}
	if v := os.Getenv("QABOT_THRESHOLD_COSINE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Thresholds.Cosine = parsed
		}
	}
	if v := os.Getenv("QABOT_THRESHOLD_FUZZY"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Thresholds.Fuzzy = parsed
		}
	}
	if v := os.Getenv("QABOT_FUZZY_ALGORITHM"); v != "" {
		cfg.Fuzzy.Algorithm = matcher.FuzzyAlgorithm(v)
	}
	if v := os.Getenv("QABOT_PARALLEL_MIN_CANDIDATES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Parallel.MinCandidates = parsed
		}
	}
	if v := os.Getenv("QABOT_PARALLEL_WORKERS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Parallel.Workers = parsed
		}
	}
	if v := os.Getenv("QABOT_EXIT_COMMAND"); v != "" {
		cfg.Messages.ExitCommand = v
	}
	if v := os.Getenv("QABOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("QABOT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
}

// Validate ensures required configuration values are present and consistent.
// Strategy and algorithm names are normalized in place.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataFile) == "" {
		return errors.New("dataFile is required")
	}

	strategy, err := matcher.ParseStrategy(string(c.Strategy))
	if err != nil {
		return err
	}
	c.Strategy = strategy

	algorithm, err := matcher.ParseFuzzyAlgorithm(string(c.Fuzzy.Algorithm))
	if err != nil {
		return err
	}
	c.Fuzzy.Algorithm = algorithm

	for name, v := range map[string]float64{
		"jaccard": c.Thresholds.Jaccard,
		"cosine":  c.Thresholds.Cosine,
		"fuzzy":   c.Thresholds.Fuzzy,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("thresholds.%s: %w", name, matcher.ErrInvalidThreshold)
		}
	}

	if c.Parallel.MinCandidates < 0 {
		return errors.New("parallel.minCandidates must not be negative")
	}
	if c.Parallel.Workers < 0 {
		return errors.New("parallel.workers must not be negative")
	}

	if strings.TrimSpace(c.Messages.ExitCommand) == "" {
		return errors.New("messages.exitCommand is required")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}

	return nil
}

// ThresholdFor returns the configured threshold for a strategy
func (c *Config) ThresholdFor(strategy matcher.Strategy) float64 {
	switch strategy {
	case matcher.StrategyCosine:
		return c.Thresholds.Cosine
	case matcher.StrategyFuzzy:
		return c.Thresholds.Fuzzy
	default:
		return c.Thresholds.Jaccard
	}
}

// SetThreshold stores a threshold for a strategy
func (c *Config) SetThreshold(strategy matcher.Strategy, threshold float64) {
	switch strategy {
	case matcher.StrategyCosine:
		c.Thresholds.Cosine = threshold
	case matcher.StrategyFuzzy:
		c.Thresholds.Fuzzy = threshold
	default:
		c.Thresholds.Jaccard = threshold
	}
}

// MatcherOptions converts the configuration into matcher options
func (c *Config) MatcherOptions() matcher.Options {
	return matcher.Options{
		Strategy:       c.Strategy,
		Threshold:      c.ThresholdFor(c.Strategy),
		FuzzyAlgorithm: c.Fuzzy.Algorithm,
		Parallel: matcher.ParallelOptions{
			MinCandidates: c.Parallel.MinCandidates,
			Workers:       c.Parallel.Workers,
		},
	}
}
