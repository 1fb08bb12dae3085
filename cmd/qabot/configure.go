package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iishyfishyy/qabot/internal/config"
	"github.com/iishyfishyy/qabot/internal/matcher"
	"github.com/iishyfishyy/qabot/internal/qa"
	"github.com/iishyfishyy/qabot/internal/ui"
)

func runConfigure(cmd *cobra.Command, args []string) error {
	ui.ShowSection("qabot Configuration")

	path := configPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return err
		}
	}

	exists, err := config.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check configuration: %w", err)
	}
	if !exists {
		ui.ShowInfo("No configuration found, starting from the defaults.\n")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	for {
		displayConfigStatus(cfg)

		options := []string{
			"Data file",
			"Matching strategy",
			"Threshold",
			"Fuzzy algorithm",
			"Save and exit",
			"Exit without saving",
		}

		selected, err := ui.ShowMenu("What would you like to configure?", options)
		if err != nil {
			return err
		}

		switch selected {
		case 0:
			value, err := ui.PromptInput("Path to the question/answer file:", cfg.DataFile)
			if err != nil {
				return err
			}
			if _, err := qa.DetectFormat(value); err != nil {
				ui.ShowError(describeError(err))
				continue
			}
			cfg.DataFile = value
		case 1:
			strategy, err := ui.PromptStrategy(cfg.Strategy)
			if err != nil {
				return err
			}
			cfg.Strategy = strategy
		case 2:
			value, err := ui.PromptThreshold(cfg.Strategy, cfg.ThresholdFor(cfg.Strategy))
			if err != nil {
				return err
			}
			cfg.SetThreshold(cfg.Strategy, value)
		case 3:
			algorithm, err := ui.PromptFuzzyAlgorithm(cfg.Fuzzy.Algorithm)
			if err != nil {
				return err
			}
			cfg.Fuzzy.Algorithm = algorithm
		case 4:
			if err := cfg.Validate(); err != nil {
				ui.ShowError(describeError(err))
				continue
			}
			if exists {
				overwrite, err := ui.PromptYesNo(fmt.Sprintf("Overwrite %s?", path), true)
				if err != nil {
					return err
				}
				if !overwrite {
					ui.ShowInfo("Configuration not saved")
					continue
				}
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			ui.ShowSuccess(fmt.Sprintf("Configuration saved to %s", path))
			return nil
		default:
			ui.ShowInfo("Configuration menu closed")
			return nil
		}
	}
}

// displayConfigStatus shows a summary of the configuration being edited
func displayConfigStatus(cfg *config.Config) {
	fmt.Println()
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	fmt.Print("  Data file: ")
	cyan.Println(cfg.DataFile)

	fmt.Print("  Strategy: ")
	cyan.Printf("%s (threshold %.2f)\n", cfg.Strategy, cfg.ThresholdFor(cfg.Strategy))

	if cfg.Strategy == matcher.StrategyFuzzy {
		fmt.Print("  Fuzzy algorithm: ")
		cyan.Println(cfg.Fuzzy.Algorithm)
	}

	gray.Printf("  Thresholds: jaccard %.2f, cosine %.2f, fuzzy %.2f\n",
		cfg.Thresholds.Jaccard, cfg.Thresholds.Cosine, cfg.Thresholds.Fuzzy)
	fmt.Println()
}
