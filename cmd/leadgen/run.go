package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/app"
	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/repository"
	"github.com/octobees/leadscout/internal/service"
	"github.com/octobees/leadscout/internal/source"
)

var (
	runFile     string
	runCity     string
	runState    string
	runNiche    string
	runLimit    int
	runPersist  bool
	runNotion   bool
	runOutput   string
	runNoExport bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the lead pipeline over a fragments file",
	Long: `Reads business fragments from a JSON or CSV file and runs them through website
classification, filtering, contact validation, deduplication and scoring.

Saved settings supply the city, niche, filters and lead cap; flags override them.

Examples:
  leadgen run --file fragments.json
  leadgen run --file export.csv --city Durham --limit 25 --db --notion`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		logger := zap.L()

		static, err := source.LoadFile(runFile)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		logger.Info("loaded fragments", zap.String("file", runFile), zap.Int("count", static.Len()))

		runCfg, err := runConfig(static)
		if err != nil {
			return err
		}

		pipe, err := app.NewPipeline(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		defer pipe.Close()

		opts := []service.RunnerOption{service.WithRunnerLogger(logger)}
		if !runNoExport {
			opts = append(opts, service.WithOutputDir(runOutput))
		}
		if runPersist {
			pool, err := app.OpenDatabase(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			defer pool.Close()
			opts = append(opts, service.WithPersistence(
				repository.NewPGXRunsRepository(pool),
				repository.NewPGXLeadsRepository(pool),
			))
		}
		if runNotion {
			board := app.NewBoard(cfg, logger)
			if board == nil {
				return fmt.Errorf("run: --notion requires NOTION_API_KEY")
			}
			opts = append(opts, service.WithCRM(board))
		}

		runner := service.NewRunner(static, pipe.Assembler, opts...)
		report, err := runner.Execute(ctx, runCfg)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

// runConfig merges saved settings with flag overrides.
func runConfig(static *source.Static) (entity.RunConfig, error) {
	runCfg, err := settingsStore().Load()
	if err != nil {
		return entity.RunConfig{}, fmt.Errorf("load settings: %w", err)
	}
	if runCity != "" {
		runCfg.City = runCity
	}
	if runState != "" {
		runCfg.State = runState
	}
	if runNiche != "" {
		runCfg.Niche = runNiche
	}
	if runLimit > 0 {
		runCfg.MaxLeads = runLimit
	}
	runCfg.Sources = static.Sources()
	if err := runCfg.Validate(); err != nil {
		return entity.RunConfig{}, err
	}
	return runCfg, nil
}

func init() {
	runCmd.Flags().StringVar(&runFile, "file", "", "fragments file (.json or .csv)")
	runCmd.Flags().StringVar(&runCity, "city", "", "override the saved city")
	runCmd.Flags().StringVar(&runState, "state", "", "override the saved state")
	runCmd.Flags().StringVar(&runNiche, "niche", "", "override the saved niche")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "override the saved lead cap")
	runCmd.Flags().BoolVar(&runPersist, "db", false, "store the run in PostgreSQL (DATABASE_URL)")
	runCmd.Flags().BoolVar(&runNotion, "notion", false, "push leads to the Notion board")
	runCmd.Flags().StringVar(&runOutput, "output", "output", "directory for the latest.* snapshot")
	runCmd.Flags().BoolVar(&runNoExport, "no-export", false, "skip writing snapshot files")
	_ = runCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(runCmd)
}
