package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/fatih/color"

	"github.com/iishyfishyy/qabot/internal/bot"
	"github.com/iishyfishyy/qabot/internal/config"
	"github.com/iishyfishyy/qabot/internal/qa"
)

// MaxLineBytes is the longest input line that gets scored. Longer lines are
// drained and answered with the fallback message.
const MaxLineBytes = 1024 * 1024

// Options controls how a session talks to the user
type Options struct {
	Messages config.Messages
	// EchoPrompt prints the user prompt before each read; set it when input is a terminal
	EchoPrompt bool
}

// Session runs the line-by-line conversation between a user and a bot
type Session struct {
	bot    *bot.Bot
	in     io.Reader
	out    io.Writer
	opts   Options
	logger *slog.Logger

	botColor  *color.Color
	userColor *color.Color
}

// NewSession creates a session reading questions from in and writing answers to out
func NewSession(b *bot.Bot, in io.Reader, out io.Writer, opts Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		bot:       b,
		in:        in,
		out:       out,
		opts:      opts,
		logger:    logger.With("component", "chat"),
		botColor:  color.New(color.FgGreen, color.Bold),
		userColor: color.New(color.FgCyan),
	}
}

// Run greets the user and answers one line at a time until the exit command,
// end of input or cancellation. An empty store ends the session before the
// greeting with qa.ErrNoData.
func (s *Session) Run(ctx context.Context) error {
	if s.bot.Count() == 0 {
		return fmt.Errorf("%w: no questions loaded", qa.ErrNoData)
	}

	s.say(s.opts.Messages.Greeting)

	reader := bufio.NewReader(s.in)

	turns := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if s.opts.EchoPrompt {
			s.userColor.Fprint(s.out, s.opts.Messages.Prompt)
		}

		raw, tooLong, err := readLine(reader, MaxLineBytes)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if errors.Is(err, io.EOF) && raw == "" && !tooLong {
			s.logger.Debug("input closed", "turns", turns)
			return nil
		}

		if tooLong {
			turns++
			s.logger.Warn("input line too long", "limit", MaxLineBytes)
			s.say(s.opts.Messages.Fallback)
			continue
		}

		line := strings.TrimSpace(raw)
		if IsExitCommand(line, s.opts.Messages.ExitCommand) {
			s.say(s.opts.Messages.Farewell)
			s.logger.Debug("session ended by user", "turns", turns)
			return nil
		}

		turns++
		s.say(s.Respond(line))
	}
}

// readLine returns the next line without its newline. Bytes past limit are
// discarded and reported through tooLong. A final line without a newline is
// returned together with io.EOF.
func readLine(r *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > limit+1 {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err != nil:
			return string(buf), tooLong, err
		default:
			return strings.TrimSuffix(string(buf), "\n"), tooLong, nil
		}
	}
}

// Respond returns the text the bot says for a single user line
func (s *Session) Respond(line string) string {
	reply := s.bot.Ask(line)
	if !reply.Matched {
		return s.opts.Messages.Fallback
	}
	return reply.Answer
}

func (s *Session) say(text string) {
	s.botColor.Fprint(s.out, s.opts.Messages.BotPrefix)
	fmt.Fprintln(s.out, text)
}

// IsExitCommand reports whether line is the exit command, ignoring case.
// Both the default and the Turkish casing rules are tried, so "ÇIK" ends a
// session whose exit command is "çık".
func IsExitCommand(line, exit string) bool {
	line = strings.TrimSpace(line)
	exit = strings.TrimSpace(exit)
	if line == "" || exit == "" {
		return false
	}

	if strings.ToLower(line) == strings.ToLower(exit) {
		return true
	}
	return strings.ToLowerSpecial(unicode.TurkishCase, line) == strings.ToLowerSpecial(unicode.TurkishCase, exit)
}
