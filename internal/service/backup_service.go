package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"vocabdrill/internal/database"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string            `json:"version"`
	ExportedAt   time.Time         `json:"exported_at"`
	DatabaseType string            `json:"database_type"`
	Users        []UserBackup      `json:"users"`
	Vocabs       []VocabBackup     `json:"vocabs"`
	Words        []WordBackup      `json:"words"`
	Classrooms   []ClassroomBackup `json:"classrooms"`
	Results      []ResultBackup    `json:"study_results"`
}

// UserBackup represents an administrator record for backup
type UserBackup struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VocabBackup represents a vocabulary for backup
type VocabBackup struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WordBackup represents a word for backup
type WordBackup struct {
	ID            int64     `json:"id"`
	VocabID       int64     `json:"vocab_id"`
	English       string    `json:"english"`
	Korean        string    `json:"korean"`
	Example       string    `json:"example"`
	Pronunciation string    `json:"pronunciation"`
	Difficulty    string    `json:"difficulty"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
}

// ClassroomBackup represents a classroom and its vocab assignment
type ClassroomBackup struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	OwnerEmail  string    `json:"owner_email"`
	VocabIDs    []int64   `json:"vocab_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ResultBackup represents a completed study session
type ResultBackup struct {
	ID           int64      `json:"id"`
	LearnerID    string     `json:"learner_id"`
	SessionID    string     `json:"session_id"`
	SourceKind   string     `json:"source_kind"`
	SourceID     int64      `json:"source_id"`
	Style        string     `json:"style"`
	Direction    string     `json:"direction"`
	TotalWords   int        `json:"total_words"`
	CorrectWords int        `json:"correct_words"`
	IncorrectIDs string     `json:"incorrect_ids"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(file)
	if err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d users, %d vocabs, %d words, %d classrooms, %d study results",
		len(backup.Users), len(backup.Vocabs), len(backup.Words), len(backup.Classrooms), len(backup.Results))
	return nil
}

// ExportToWriter writes the backup as indented JSON and returns it
func (s *BackupService) ExportToWriter(w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	if err := s.exportUsers(backup); err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportVocabs(backup); err != nil {
		return nil, fmt.Errorf("failed to export vocabs: %w", err)
	}
	if err := s.exportWords(backup); err != nil {
		return nil, fmt.Errorf("failed to export words: %w", err)
	}
	if err := s.exportClassrooms(backup); err != nil {
		return nil, fmt.Errorf("failed to export classrooms: %w", err)
	}
	if err := s.exportResults(backup); err != nil {
		return nil, fmt.Errorf("failed to export study results: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup into an empty database. Everything is
// imported in one transaction.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(func(tx *database.Tx) error {
		// Import in order of dependencies
		if err := importUsers(tx, backup.Users); err != nil {
			return fmt.Errorf("failed to import users: %w", err)
		}
		if err := importVocabs(tx, backup.Vocabs); err != nil {
			return fmt.Errorf("failed to import vocabs: %w", err)
		}
		if err := importWords(tx, backup.Words); err != nil {
			return fmt.Errorf("failed to import words: %w", err)
		}
		if err := importClassrooms(tx, backup.Classrooms); err != nil {
			return fmt.Errorf("failed to import classrooms: %w", err)
		}
		if err := importResults(tx, backup.Results); err != nil {
			return fmt.Errorf("failed to import study results: %w", err)
		}
		return resetSequences(tx)
	})
	if err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, email, password_hash, name, is_admin, created_at, updated_at FROM users ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportVocabs(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, title, description, created_at, updated_at FROM vocabs ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v VocabBackup
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return err
		}
		backup.Vocabs = append(backup.Vocabs, v)
	}
	return rows.Err()
}

func (s *BackupService) exportWords(backup *BackupData) error {
	query := "SELECT id, vocab_id, english, korean, example, pronunciation, difficulty, position, created_at FROM words ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var w WordBackup
		if err := rows.Scan(&w.ID, &w.VocabID, &w.English, &w.Korean, &w.Example, &w.Pronunciation, &w.Difficulty, &w.Position, &w.CreatedAt); err != nil {
			return err
		}
		backup.Words = append(backup.Words, w)
	}
	return rows.Err()
}

func (s *BackupService) exportClassrooms(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name, description, code, owner_email, created_at, updated_at FROM classrooms ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ClassroomBackup
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Code, &c.OwnerEmail, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		backup.Classrooms = append(backup.Classrooms, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// assignments are read once the classroom cursor is closed
	for i := range backup.Classrooms {
		c := &backup.Classrooms[i]
		assignRows, err := s.db.Query("SELECT vocab_id FROM classroom_vocabs WHERE classroom_id = ? ORDER BY position", c.ID)
		if err != nil {
			return err
		}
		for assignRows.Next() {
			var vocabID int64
			if err := assignRows.Scan(&vocabID); err != nil {
				assignRows.Close()
				return err
			}
			c.VocabIDs = append(c.VocabIDs, vocabID)
		}
		assignRows.Close()
	}
	return nil
}

func (s *BackupService) exportResults(backup *BackupData) error {
	query := `SELECT id, learner_id, session_id, source_kind, source_id, style, direction,
		total_words, correct_words, incorrect_ids, started_at, completed_at
		FROM study_results ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r ResultBackup
		var completedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.LearnerID, &r.SessionID, &r.SourceKind, &r.SourceID, &r.Style, &r.Direction,
			&r.TotalWords, &r.CorrectWords, &r.IncorrectIDs, &r.StartedAt, &completedAt); err != nil {
			return err
		}
		if completedAt.Valid {
			r.CompletedAt = &completedAt.Time
		}
		backup.Results = append(backup.Results, r)
	}
	return rows.Err()
}

func importUsers(tx *database.Tx, users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := "INSERT INTO users (id, email, password_hash, name, is_admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, u.ID, u.Email, u.PasswordHash, u.Name, u.IsAdmin, u.CreatedAt, u.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func importVocabs(tx *database.Tx, vocabs []VocabBackup) error {
	log.Printf("Importing %d vocabs...", len(vocabs))
	for _, v := range vocabs {
		query := "INSERT INTO vocabs (id, title, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, v.ID, v.Title, v.Description, v.CreatedAt, v.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import vocab %d: %w", v.ID, err)
		}
	}
	return nil
}

func importWords(tx *database.Tx, words []WordBackup) error {
	log.Printf("Importing %d words...", len(words))
	for _, w := range words {
		query := `INSERT INTO words (id, vocab_id, english, korean, example, pronunciation, difficulty, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.Exec(query, w.ID, w.VocabID, w.English, w.Korean, w.Example, w.Pronunciation, w.Difficulty, w.Position, w.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import word %d: %w", w.ID, err)
		}
	}
	return nil
}

func importClassrooms(tx *database.Tx, classrooms []ClassroomBackup) error {
	log.Printf("Importing %d classrooms...", len(classrooms))
	for _, c := range classrooms {
		query := "INSERT INTO classrooms (id, name, description, code, owner_email, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, c.ID, c.Name, c.Description, c.Code, c.OwnerEmail, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import classroom %d: %w", c.ID, err)
		}
		for i, vocabID := range c.VocabIDs {
			assignQuery := "INSERT INTO classroom_vocabs (classroom_id, vocab_id, position) VALUES (?, ?, ?)"
			if _, err := tx.Exec(assignQuery, c.ID, vocabID, i+1); err != nil {
				return fmt.Errorf("failed to import vocab %d for classroom %d: %w", vocabID, c.ID, err)
			}
		}
	}
	return nil
}

func importResults(tx *database.Tx, results []ResultBackup) error {
	log.Printf("Importing %d study results...", len(results))
	for _, r := range results {
		var completedAt interface{}
		if r.CompletedAt != nil {
			completedAt = *r.CompletedAt
		}
		incorrect := r.IncorrectIDs
		if incorrect == "" {
			incorrect = "[]"
		}
		query := `INSERT INTO study_results (id, learner_id, session_id, source_kind, source_id, style, direction,
			total_words, correct_words, incorrect_ids, started_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.Exec(query, r.ID, r.LearnerID, r.SessionID, r.SourceKind, r.SourceID, r.Style, r.Direction,
			r.TotalWords, r.CorrectWords, incorrect, r.StartedAt, completedAt)
		if err != nil {
			return fmt.Errorf("failed to import study result %d: %w", r.ID, err)
		}
	}
	return nil
}

// resetSequences moves PostgreSQL id sequences past the imported ids.
// SQLite and MySQL track this themselves.
func resetSequences(tx *database.Tx) error {
	if tx.GetDialect().DriverName() != "postgres" {
		return nil
	}
	for _, table := range []string{"users", "vocabs", "words", "classrooms", "study_results"} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %s", table, table)
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}
