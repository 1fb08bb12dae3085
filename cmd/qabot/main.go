package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iishyfishyy/qabot/internal/bot"
	"github.com/iishyfishyy/qabot/internal/chat"
	"github.com/iishyfishyy/qabot/internal/config"
	"github.com/iishyfishyy/qabot/internal/logger"
	"github.com/iishyfishyy/qabot/internal/matcher"
	"github.com/iishyfishyy/qabot/internal/qa"
	"github.com/iishyfishyy/qabot/internal/tui"
	"github.com/iishyfishyy/qabot/internal/ui"
)

var (
	// version is set by goreleaser at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// CLI flags
	configPath     string
	dataFile       string
	strategyName   string
	threshold      float64
	fuzzyAlgorithm string
	debug          bool
	useTUI         bool
	copyAnswer     bool
	showMatch      bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(describeError(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qabot",
		Short:         "Answer questions from a fixed question/answer file",
		Long:          "qabot matches what you type against known questions and replies with the stored answer",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runChat,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default ~/.qabot/config.yaml)")
	flags.StringVar(&dataFile, "data", "", "Question/answer file (.json, .yaml, .db)")
	flags.StringVarP(&strategyName, "strategy", "s", "", "Matching strategy: jaccard, cosine or fuzzy")
	flags.Float64VarP(&threshold, "threshold", "t", 0, "Minimum score for a match, between 0 and 1")
	flags.StringVar(&fuzzyAlgorithm, "fuzzy-algorithm", "", "Fuzzy similarity: ratio, jaro-winkler or levenshtein")
	flags.BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "Use the full-screen chat interface")

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	askCmd.Flags().BoolVarP(&copyAnswer, "copy", "c", false, "Copy the answer to the clipboard")
	askCmd.Flags().BoolVar(&showMatch, "show-match", false, "Print the matched question and its score")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List known questions",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Choose the data file, strategy and thresholds",
		Args:  cobra.NoArgs,
		RunE:  runConfigure,
	}

	importCmd := &cobra.Command{
		Use:   "import <source> <database>",
		Short: "Import a JSON or YAML question file into a SQLite database",
		Args:  cobra.ExactArgs(2),
		RunE:  runImport,
	}

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(importCmd)

	return rootCmd
}

// loadSettings resolves config file, .env, environment and flags, then sets up logging
func loadSettings(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if strategyName != "" {
		cfg.Strategy = matcher.Strategy(strategyName)
	}
	if fuzzyAlgorithm != "" {
		cfg.Fuzzy.Algorithm = matcher.FuzzyAlgorithm(fuzzyAlgorithm)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("threshold") {
		cfg.SetThreshold(cfg.Strategy, threshold)
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	log := logger.Setup(level, cfg.Logging.Format)
	log.Debug("configuration loaded", "data", cfg.DataFile, "strategy", cfg.Strategy, "threshold", cfg.ThresholdFor(cfg.Strategy))

	return cfg, log, nil
}

// openBot loads the configured data file; an empty file counts as no data
func openBot(ctx context.Context, cfg *config.Config, log *slog.Logger) (*bot.Bot, error) {
	b, err := bot.Open(ctx, cfg.DataFile, cfg.MatcherOptions(), log)
	if err != nil {
		return nil, err
	}
	if b.Count() == 0 {
		return nil, fmt.Errorf("%w: %s contains no questions", qa.ErrNoData, cfg.DataFile)
	}
	return b, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	b, err := openBot(ctx, cfg, log)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	if useTUI {
		if interactive && term.IsTerminal(int(os.Stdout.Fd())) {
			summary := fmt.Sprintf("%s · %d questions · %s ≥ %.2f", cfg.DataFile, b.Count(), b.Strategy(), b.Threshold())
			_, err := tea.NewProgram(tui.New(b, cfg.Messages, summary), tea.WithAltScreen()).Run()
			return err
		}
		ui.ShowWarning("--tui needs an interactive terminal, using line mode")
	}

	session := chat.NewSession(b, os.Stdin, os.Stdout, chat.Options{
		Messages:   cfg.Messages,
		EchoPrompt: interactive,
	}, log)

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	b, err := openBot(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	reply := b.Ask(strings.Join(args, " "))
	if !reply.Matched {
		fmt.Println(cfg.Messages.Fallback)
		return nil
	}

	fmt.Println(reply.Answer)

	if showMatch {
		gray := color.New(color.FgHiBlack)
		if reply.Exact {
			gray.Fprintf(os.Stderr, "matched %q exactly\n", reply.Question)
		} else {
			gray.Fprintf(os.Stderr, "matched %q with score %.3f\n", reply.Question, reply.Score)
		}
	}

	if copyAnswer {
		if err := clipboard.WriteAll(reply.Answer); err != nil {
			ui.ShowError(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		} else {
			ui.ShowSuccess("Answer copied to clipboard!")
		}
	}

	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	b, err := openBot(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	ui.ShowSection(fmt.Sprintf("Known questions (%d)", b.Count()))
	for i, q := range b.Questions() {
		fmt.Printf("%3d. %s\n", i+1, q)
	}

	fmt.Println()
	fmt.Printf("Data file: %s\n", cfg.DataFile)
	if imported, ok := importTime(cfg.DataFile); ok {
		fmt.Printf("Imported: %s ago\n", formatDuration(time.Since(imported)))
	}
	fmt.Printf("Strategy: %s (threshold %.2f)\n", b.Strategy(), b.Threshold())

	return nil
}

// importTime reports when a SQLite data file was last written by import
func importTime(path string) (time.Time, bool) {
	if format, err := qa.DetectFormat(path); err != nil || format != qa.FormatSQLite {
		return time.Time{}, false
	}

	src, err := qa.OpenSQLiteSource(path)
	if err != nil {
		return time.Time{}, false
	}
	defer src.Close()

	imported := src.ImportedAt()
	return imported, !imported.IsZero()
}

// formatDuration formats an elapsed duration for humans
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	} else if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}

	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func runImport(cmd *cobra.Command, args []string) error {
	_, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	src, dst := args[0], args[1]
	if format, err := qa.DetectFormat(dst); err != nil || format != qa.FormatSQLite {
		return fmt.Errorf("destination must be a .db, .sqlite or .sqlite3 file: %s", dst)
	}

	store, err := qa.NewLoader(log).Load(cmd.Context(), src)
	if err != nil {
		return err
	}

	db, err := qa.CreateSQLiteSource(dst)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if err := db.Replace(cmd.Context(), store); err != nil {
		return fmt.Errorf("failed to import questions: %w", err)
	}

	ui.ShowSuccess(fmt.Sprintf("Imported %d questions into %s", db.Count(), dst))
	ui.ShowInfo(fmt.Sprintf("Use it with: qabot --data %s", dst))
	return nil
}

// describeError turns the known failures into the messages users see
func describeError(err error) string {
	switch {
	case errors.Is(err, qa.ErrUnsupportedFormat):
		return fmt.Sprintf("Unsupported data file: %v", err)
	case errors.Is(err, qa.ErrNoData):
		return fmt.Sprintf("No question data available: %v", err)
	case errors.Is(err, matcher.ErrUnknownStrategy):
		return fmt.Sprintf("%v (choose jaccard, cosine or fuzzy)", err)
	case errors.Is(err, matcher.ErrInvalidThreshold):
		return fmt.Sprintf("Invalid threshold: %v", err)
	default:
		return err.Error()
	}
}
