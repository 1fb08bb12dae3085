package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoData is returned when a data file is missing, unreadable or malformed
	ErrNoData = errors.New("no data available")
	// ErrUnsupportedFormat is returned for data files with an unknown extension
	ErrUnsupportedFormat = errors.New("unsupported data file format")
)

// Format identifies how a data file is encoded
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// DetectFormat picks the data format from the file extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Loader reads question/answer data files into a Store
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With("component", "qa.loader")}
}

// Load reads the data file at path. Every failure wraps ErrNoData so callers
// can end the session with a single check.
func (l *Loader) Load(ctx context.Context, path string) (*Store, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: data file not found: %s", ErrNoData, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat data file: %w", ErrNoData, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNoData, path)
	}

	l.logger.Debug("loading data file", "path", path, "format", format)

	var pairs []Pair
	switch format {
	case FormatSQLite:
		src, err := OpenSQLiteSource(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoData, err)
		}
		defer src.Close()

		store, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoData, err)
		}
		l.logger.Debug("data file loaded", "path", path, "pairs", store.Len())
		return store, nil

	case FormatJSON:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read data file: %w", ErrNoData, err)
		}
		pairs, err = ParseJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid JSON format: %w", ErrNoData, err)
		}

	case FormatYAML:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read data file: %w", ErrNoData, err)
		}
		pairs, err = ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid YAML format: %w", ErrNoData, err)
		}
	}

	store := NewStore(pairs)
	if store.Len() < len(pairs) {
		l.logger.Warn("duplicate questions merged", "path", path, "entries", len(pairs), "unique", store.Len())
	}
	l.logger.Debug("data file loaded", "path", path, "pairs", store.Len())

	return store, nil
}
