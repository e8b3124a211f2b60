package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vocabdrill/internal/database"
	"vocabdrill/internal/service"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or import a JSON backup",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the database to a JSON file",
	Example: `  vocabctl backup export
  vocabctl backup export --output mybackup.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		outputPath, _ := cmd.Flags().GetString("output")
		return handleExport(service.NewBackupService(db), outputPath)
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON backup into the database",
	Example: `  vocabctl backup import --input backup.json
  vocabctl backup import --input backup.json --clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath, _ := cmd.Flags().GetString("input")
		clearData, _ := cmd.Flags().GetBool("clear")

		// Check if file exists
		if _, err := os.Stat(inputPath); os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", inputPath)
		}

		_, db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if clearData {
			fmt.Fprint(cmd.OutOrStdout(), "WARNING: This will delete all existing data. Type 'yes' to confirm: ")
			confirmation, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if strings.TrimSpace(confirmation) != "yes" {
				log.Println("Import cancelled")
				return nil
			}

			log.Println("Clearing existing data...")
			if err := clearDatabase(db); err != nil {
				return fmt.Errorf("failed to clear database: %w", err)
			}
		}

		log.Printf("Importing database from: %s", inputPath)
		if err := service.NewBackupService(db).Import(inputPath); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		log.Println("Import complete!")
		return nil
	},
}

func init() {
	backupExportCmd.Flags().String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	backupImportCmd.Flags().String("input", "", "Input file path")
	backupImportCmd.Flags().Bool("clear", false, "Clear existing data before import (WARNING: destructive)")
	_ = backupImportCmd.MarkFlagRequired("input")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
}

func handleExport(backupService *service.BackupService, outputPath string) error {
	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Printf("Exporting database to: %s", outputPath)
	if err := backupService.Export(outputPath); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if fileInfo, err := os.Stat(outputPath); err == nil {
		log.Printf("Export complete! File size: %.2f MB", float64(fileInfo.Size())/1024/1024)
	}
	return nil
}

func clearDatabase(db *database.DB) error {
	// Delete in reverse order of dependencies
	tables := []string{
		"study_snapshots",
		"bookmarks",
		"study_results",
		"classroom_vocabs",
		"classrooms",
		"words",
		"vocabs",
		"users",
	}

	return db.WithTx(func(tx *database.Tx) error {
		for _, table := range tables {
			query := fmt.Sprintf("DELETE FROM %s", table)
			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			log.Printf("Cleared table: %s", table)
		}
		return nil
	})
}
