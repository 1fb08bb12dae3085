package ui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"

	"github.com/iishyfishyy/qabot/internal/matcher"
)

var strategyLabels = map[matcher.Strategy]string{
	matcher.StrategyJaccard: "Jaccard (shared words)",
	matcher.StrategyCosine:  "Cosine (word frequencies)",
	matcher.StrategyFuzzy:   "Fuzzy (spelling similarity)",
}

// PromptStrategy asks the user to pick a matching strategy
func PromptStrategy(current matcher.Strategy) (matcher.Strategy, error) {
	options := make([]string, 0, len(strategyLabels))
	for _, s := range matcher.Strategies() {
		options = append(options, strategyLabels[s])
	}

	var choice string
	prompt := &survey.Select{
		Message: "Select a matching strategy:",
		Options: options,
		Default: strategyLabels[current],
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return current, err
	}

	for s, label := range strategyLabels {
		if label == choice {
			return s, nil
		}
	}
	return current, nil
}

// PromptFuzzyAlgorithm asks the user to pick the fuzzy similarity
func PromptFuzzyAlgorithm(current matcher.FuzzyAlgorithm) (matcher.FuzzyAlgorithm, error) {
	options := make([]string, 0, 3)
	for _, a := range matcher.FuzzyAlgorithms() {
		options = append(options, string(a))
	}

	var choice string
	prompt := &survey.Select{
		Message: "Select a fuzzy algorithm:",
		Options: options,
		Default: string(current),
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return current, err
	}

	return matcher.FuzzyAlgorithm(choice), nil
}

// PromptThreshold asks for a threshold in [0, 1]
func PromptThreshold(strategy matcher.Strategy, current float64) (float64, error) {
	var answer string
	prompt := &survey.Input{
		Message: fmt.Sprintf("Minimum score for %s (0-1):", strategy),
		Default: strconv.FormatFloat(current, 'f', -1, 64),
	}

	if err := survey.AskOne(prompt, &answer, survey.WithValidator(ValidateThreshold)); err != nil {
		return current, err
	}

	return strconv.ParseFloat(strings.TrimSpace(answer), 64)
}

// ValidateThreshold is a survey validator accepting numbers in [0, 1]
func ValidateThreshold(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return errors.New("threshold must be text")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return matcher.ErrInvalidThreshold
	}
	return nil
}

// PromptInput asks for a free-form value
func PromptInput(message, current string) (string, error) {
	var value string
	prompt := &survey.Input{
		Message: message,
		Default: current,
	}

	if err := survey.AskOne(prompt, &value, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}

	return strings.TrimSpace(value), nil
}

// PromptYesNo asks a yes/no question
func PromptYesNo(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}

	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}

	return confirmed, nil
}

// ShowMenu displays a menu and returns the index of the selected option
func ShowMenu(message string, options []string) (int, error) {
	var selected int
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return -1, err
	}

	return selected, nil
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError displays an error message
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}

// ShowSection prints a bold section heading
func ShowSection(title string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n%s\n%s\n", title, strings.Repeat("─", len([]rune(title))))
}
