package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
)

var rootCmd = &cobra.Command{
	Use:           "vocabctl",
	Short:         "Vocab Drill administration and terminal drills",
	Long:          "vocabctl manages the Vocab Drill database and runs study drills in the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides DB_PATH)")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(drillCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDatabase loads the configuration, connects and migrates
func openDatabase(cmd *cobra.Command) (*config.Config, *database.DB, error) {
	cfg := config.Load()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DatabaseType = "sqlite"
		cfg.DatabasePath = p
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return cfg, db, nil
}
