package database

import (
	"path/filepath"
	"testing"
)

const migrationsPath = "../../migrations"

// openTestDB creates a migrated SQLite database in a temp dir
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(migrationsPath); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	tables := []string{"users", "vocabs", "words", "classrooms", "classroom_vocabs", "study_results", "bookmarks", "study_snapshots"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// a second run must be a no-op
	if err := db.RunMigrations(migrationsPath); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}
}

func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	err := db.WithTx(func(tx *Tx) error {
		_, err := tx.ExecReturningID("INSERT INTO vocabs (title) VALUES (?)", "committed")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO vocabs (title) VALUES (?)", "rolled back"); err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM vocabs").Scan(&count); err != nil {
		t.Fatalf("Failed to count vocabs: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 vocab, got %d", count)
	}
}

func TestUpsertAgainstSQLite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	query := db.Dialect.Upsert("study_snapshots", []string{"learner_id"}, []string{"learner_id", "payload"})

	for _, payload := range []string{"first", "second"} {
		if _, err := db.Exec(query, "learner-1", payload); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	var payload string
	if err := db.QueryRow("SELECT payload FROM study_snapshots WHERE learner_id = ?", "learner-1").Scan(&payload); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if payload != "second" {
		t.Errorf("payload = %q, want second", payload)
	}
}

func TestSeedStarterVocab(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	if err := db.SeedStarterVocab(); err != nil {
		t.Fatalf("SeedStarterVocab() error = %v", err)
	}
	if err := db.SeedStarterVocab(); err != nil {
		t.Fatalf("second SeedStarterVocab() error = %v", err)
	}

	var vocabs, words int
	db.QueryRow("SELECT COUNT(*) FROM vocabs").Scan(&vocabs)
	db.QueryRow("SELECT COUNT(*) FROM words").Scan(&words)
	if vocabs != 1 {
		t.Errorf("vocabs = %d, want 1", vocabs)
	}
	if words != 15 {
		t.Errorf("words = %d, want 15", words)
	}
}

func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	if _, err := db.Exec("INSERT INTO vocabs (title) VALUES (?)", "shared"); err != nil {
		t.Fatalf("Failed to create test vocab: %v", err)
	}

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			var title string
			if err := db.QueryRow("SELECT title FROM vocabs WHERE title = ?", "shared").Scan(&title); err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
