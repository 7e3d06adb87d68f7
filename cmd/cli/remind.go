package cli

import (
	"context"
	"fmt"
	"log"

	api "kanban-backend/cmd/api"
	"kanban-backend/pkg/config"

	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run one due-date reminder scan and exit",
	Long:  "Runs the reminder scanner once, for deployments that drive it from an external cron",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, err := openDatabase(cfg, false)
		if err != nil {
			return err
		}

		ctx := context.Background()
		handler, err := api.NewHandler(ctx, cfg, db)
		if err != nil {
			return fmt.Errorf("wire server: %w", err)
		}
		defer handler.Close()

		sent := handler.RunReminders(ctx)
		log.Printf("[TaskScheduler] Sent %d reminders", sent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remindCmd)
}
