package repository

import (
	"database/sql"
	"fmt"
	"time"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// VocabRepository handles database operations for vocabularies
type VocabRepository struct {
	db database.DBTX
}

// NewVocabRepository creates a new vocab repository
func NewVocabRepository(db database.DBTX) *VocabRepository {
	return &VocabRepository{db: db}
}

const vocabColumns = `
	v.id, v.title, COALESCE(v.description, ''),
	(SELECT COUNT(*) FROM words w WHERE w.vocab_id = v.id),
	v.created_at, v.updated_at`

func scanVocab(row interface{ Scan(...interface{}) error }, v *models.Vocab) error {
	return row.Scan(&v.ID, &v.Title, &v.Description, &v.WordCount, &v.CreatedAt, &v.UpdatedAt)
}

// CreateVocab creates a new vocabulary
func (r *VocabRepository) CreateVocab(title, description string) (*models.Vocab, error) {
	id, err := r.db.ExecReturningID("INSERT INTO vocabs (title, description) VALUES (?, ?)", title, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create vocab: %w", err)
	}

	now := time.Now()
	return &models.Vocab{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetVocabByID retrieves a vocabulary by ID
func (r *VocabRepository) GetVocabByID(id int64) (*models.Vocab, error) {
	query := "SELECT" + vocabColumns + " FROM vocabs v WHERE v.id = ?"
	vocab := &models.Vocab{}
	err := scanVocab(r.db.QueryRow(query, id), vocab)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vocab: %w", err)
	}
	return vocab, nil
}

// GetAllVocabs retrieves every vocabulary, newest first
func (r *VocabRepository) GetAllVocabs() ([]models.Vocab, error) {
	query := "SELECT" + vocabColumns + " FROM vocabs v ORDER BY v.created_at DESC, v.id DESC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query vocabs: %w", err)
	}
	defer rows.Close()

	var vocabs []models.Vocab
	for rows.Next() {
		var vocab models.Vocab
		if err := scanVocab(rows, &vocab); err != nil {
			return nil, fmt.Errorf("failed to scan vocab: %w", err)
		}
		vocabs = append(vocabs, vocab)
	}
	return vocabs, rows.Err()
}

// UpdateVocab updates a vocabulary's title and description
func (r *VocabRepository) UpdateVocab(id int64, title, description string) error {
	query := "UPDATE vocabs SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, title, description, id); err != nil {
		return fmt.Errorf("failed to update vocab: %w", err)
	}
	return nil
}

// DeleteVocab deletes a vocabulary and its words
func (r *VocabRepository) DeleteVocab(id int64) error {
	if _, err := r.db.Exec("DELETE FROM words WHERE vocab_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete vocab words: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM classroom_vocabs WHERE vocab_id = ?", id); err != nil {
		return fmt.Errorf("failed to unassign vocab: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM vocabs WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete vocab: %w", err)
	}
	return nil
}
