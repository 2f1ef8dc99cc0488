package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/config"
	"github.com/octobees/leadscout/internal/service/intent"
)

var (
	parseApply     bool
	parseRulesOnly bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <request>",
	Short: "Turn a free-form request into run settings",
	Long: `Parses a request such as "find 20 plumbers in Durham NC with no website" into
run settings and prints them as JSON. With --apply the result is saved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := settingsStore()
		base, err := store.Load()
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		var parser intent.Parser = intent.NewRuleParser()
		if cfg.AnthropicAPIKey != "" && !parseRulesOnly {
			parser = intent.NewLLMParser(intent.NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil, zap.L())
		}

		runCfg, err := parser.Parse(cmd.Context(), strings.Join(args, " "), base)
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		if parseApply {
			if err := store.Save(runCfg); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			zap.L().Info("settings saved", zap.String("path", store.Path()))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runCfg)
	},
}

func settingsStore() *config.SettingsStore {
	return config.NewSettingsStore(cfg.SettingsPath)
}

func init() {
	parseCmd.Flags().BoolVar(&parseApply, "apply", false, "save the parsed settings")
	parseCmd.Flags().BoolVar(&parseRulesOnly, "rules", false, "skip the language model even when ANTHROPIC_API_KEY is set")
	rootCmd.AddCommand(parseCmd)
}
