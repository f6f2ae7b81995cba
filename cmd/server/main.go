package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/config"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "server",
	Short:        "Recipe API backend",
	Long:         "Serves the recipe API over HTTP and gRPC health. Without a subcommand it runs serve.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createSuperuserCmd)
}

// boot loads config, builds the logger and opens the migrated database.
func boot() (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	appLogger := logger.New(cfg)

	db, err := database.ConnectDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		return nil, nil, nil, err
	}

	return cfg, appLogger, db, nil
}

func closeDB(db *gorm.DB, appLogger *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		appLogger.Warn("⚠️ Failed to close database", "error", err)
	}
}
