package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	api "kanban-backend/cmd/api"
	"kanban-backend/pkg/config"
	"kanban-backend/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the HTTP API, the WebSocket hub, the reminder scanner and the daily digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		db, err := openDatabase(cfg, !skipMigrate)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		handler, err := api.NewHandler(ctx, cfg, db)
		if err != nil {
			return fmt.Errorf("wire server: %w", err)
		}
		return handler.Start(ctx)
	},
}

func openDatabase(cfg *config.Config, migrate bool) (*gorm.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if migrate {
		if err := database.Migrate(db, api.Models()...); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run AutoMigrate on startup")
	rootCmd.AddCommand(serveCmd)
}
