package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/app"
	"github.com/octobees/leadscout/internal/crm"
	"github.com/octobees/leadscout/internal/database"
	"github.com/octobees/leadscout/internal/repository"
	"github.com/octobees/leadscout/internal/service"
)

var clearConfirm bool

var setupNotionCmd = &cobra.Command{
	Use:   "setup-notion",
	Short: "Add missing lead properties to the Notion database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		board := app.NewBoard(cfg, zap.L())
		if board == nil {
			return errors.New("setup-notion: NOTION_API_KEY is not set")
		}
		added, err := board.EnsureSchema(cmd.Context())
		if err != nil {
			if errors.Is(err, crm.ErrNotConfigured) {
				return errors.New("setup-notion: NOTION_DATABASE_ID is not set")
			}
			return fmt.Errorf("setup-notion: %w", err)
		}
		if len(added) == 0 {
			zap.L().Info("notion schema already up to date")
			return nil
		}
		zap.L().Info("notion properties added", zap.Strings("properties", added))
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pool, err := database.Connect(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		defer pool.Close()
		return database.Migrate(cmd.Context(), pool, zap.L())
	},
}

var clearDBCmd = &cobra.Command{
	Use:   "clear-db",
	Short: "Delete every stored run and lead",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !clearConfirm {
			return errors.New("clear-db: pass --yes to delete all runs and leads")
		}
		pool, err := app.OpenDatabase(cmd.Context(), cfg, zap.L())
		if err != nil {
			return fmt.Errorf("clear-db: %w", err)
		}
		defer pool.Close()

		svc := service.NewLeadsService(repository.NewPGXRunsRepository(pool), repository.NewPGXLeadsRepository(pool))
		deleted, err := svc.ClearAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("clear-db: %w", err)
		}
		zap.L().Info("database cleared", zap.Int64("runs_deleted", deleted))
		return nil
	},
}

func init() {
	clearDBCmd.Flags().BoolVar(&clearConfirm, "yes", false, "confirm deletion")
	rootCmd.AddCommand(setupNotionCmd, migrateCmd, clearDBCmd)
}
