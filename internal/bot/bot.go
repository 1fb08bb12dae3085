package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iishyfishyy/qabot/internal/matcher"
	"github.com/iishyfishyy/qabot/internal/qa"
)

// Bot answers questions from a fixed question/answer store
type Bot struct {
	store   *qa.Store
	matcher *matcher.Matcher
	logger  *slog.Logger
}

// Reply is the outcome of a single question
type Reply struct {
	Query    string
	Question string
	Answer   string
	Score    float64
	Matched  bool
	Exact    bool
}

// New creates a bot over an already loaded store
func New(store *qa.Store, m *matcher.Matcher, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = qa.NewStore(nil)
	}
	return &Bot{
		store:   store,
		matcher: m,
		logger:  logger.With("component", "bot"),
	}
}

// Open loads the data file at path and builds a bot with the given matcher options.
// Load failures wrap qa.ErrNoData.
func Open(ctx context.Context, path string, opts matcher.Options, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}

	m, err := matcher.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create matcher: %w", err)
	}

	store, err := qa.NewLoader(logger).Load(ctx, path)
	if err != nil {
		return nil, err
	}

	b := New(store, m, logger)
	b.logger.Info("bot ready", "path", path, "questions", store.Len(), "strategy", m.Strategy(), "threshold", m.Threshold())
	return b, nil
}

// Ask trims the query and returns the answer of the best matching question
func (b *Bot) Ask(query string) Reply {
	reply := Reply{Query: strings.TrimSpace(query)}

	result, ok := b.matcher.Match(reply.Query, b.store)
	if !ok {
		b.logger.Debug("no match", "query", reply.Query)
		return reply
	}

	reply.Question = result.Question
	reply.Answer = b.store.Answer(result.Index)
	reply.Score = result.Score
	reply.Matched = true
	reply.Exact = result.Exact

	b.logger.Debug("matched", "query", reply.Query, "question", reply.Question, "score", reply.Score, "exact", reply.Exact)
	return reply
}

// Count returns the number of known questions
func (b *Bot) Count() int {
	return b.store.Len()
}

// Questions returns the known questions in store order
func (b *Bot) Questions() []string {
	return b.store.Questions()
}

// Strategy returns the matching strategy in use
func (b *Bot) Strategy() matcher.Strategy {
	return b.matcher.Strategy()
}

// Threshold returns the minimum accepted score
func (b *Bot) Threshold() float64 {
	return b.matcher.Threshold()
}
