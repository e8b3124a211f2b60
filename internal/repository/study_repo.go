package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// StudyRepository stores study history, bookmarks and session snapshots
type StudyRepository struct {
	db database.DBTX
}

// NewStudyRepository creates a new study repository
func NewStudyRepository(db database.DBTX) *StudyRepository {
	return &StudyRepository{db: db}
}

// SaveResult records a completed study session
func (r *StudyRepository) SaveResult(result *models.StudyResult) error {
	incorrect, err := json.Marshal(nonNilIDs(result.IncorrectIDs))
	if err != nil {
		return fmt.Errorf("failed to encode incorrect ids: %w", err)
	}

	var completedAt sql.NullTime
	if result.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *result.CompletedAt, Valid: true}
	}

	query := `
		INSERT INTO study_results (learner_id, session_id, source_kind, source_id, style, direction,
			total_words, correct_words, incorrect_ids, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, result.LearnerID, result.SessionID, result.SourceKind, result.SourceID,
		result.Style, result.Direction, result.TotalWords, result.CorrectWords, string(incorrect),
		result.StartedAt, completedAt)
	if err != nil {
		return fmt.Errorf("failed to save study result: %w", err)
	}
	result.ID = id
	return nil
}

// GetLearnerResults returns a learner's most recent results, newest first
func (r *StudyRepository) GetLearnerResults(learnerID string, limit int) ([]models.StudyResult, error) {
	query := `
		SELECT id, learner_id, session_id, source_kind, source_id, style, direction,
			total_words, correct_words, COALESCE(incorrect_ids, '[]'), started_at, completed_at
		FROM study_results
		WHERE learner_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query study results: %w", err)
	}
	defer rows.Close()

	results := []models.StudyResult{}
	for rows.Next() {
		var res models.StudyResult
		var incorrect string
		var completedAt sql.NullTime
		if err := rows.Scan(
			&res.ID,
			&res.LearnerID,
			&res.SessionID,
			&res.SourceKind,
			&res.SourceID,
			&res.Style,
			&res.Direction,
			&res.TotalWords,
			&res.CorrectWords,
			&incorrect,
			&res.StartedAt,
			&completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan study result: %w", err)
		}
		if err := json.Unmarshal([]byte(incorrect), &res.IncorrectIDs); err != nil {
			res.IncorrectIDs = nil
		}
		if completedAt.Valid {
			t := completedAt.Time
			res.CompletedAt = &t
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetBookmarks returns the ids of a learner's bookmarked words
func (r *StudyRepository) GetBookmarks(learnerID string) ([]models.WordID, error) {
	rows, err := r.db.Query("SELECT word_id FROM bookmarks WHERE learner_id = ? ORDER BY created_at ASC, word_id ASC", learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var ids []models.WordID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		ids = append(ids, models.WordID(id))
	}
	return ids, rows.Err()
}

// ReplaceBookmarks stores exactly ids as the learner's bookmarks.
// Run it inside a transaction.
func (r *StudyRepository) ReplaceBookmarks(learnerID string, ids []models.WordID) error {
	if _, err := r.db.Exec("DELETE FROM bookmarks WHERE learner_id = ?", learnerID); err != nil {
		return fmt.Errorf("failed to clear bookmarks: %w", err)
	}
	query := r.db.GetDialect().Upsert("bookmarks", []string{"learner_id", "word_id"}, []string{"learner_id", "word_id"})
	for _, id := range ids {
		if _, err := r.db.Exec(query, learnerID, string(id)); err != nil {
			return fmt.Errorf("failed to save bookmark: %w", err)
		}
	}
	return nil
}

// SaveSnapshot stores the serialized snapshot of a learner's active session
func (r *StudyRepository) SaveSnapshot(learnerID, payload string) error {
	query := r.db.GetDialect().Upsert("study_snapshots", []string{"learner_id"}, []string{"learner_id", "payload"})
	if _, err := r.db.Exec(query, learnerID, payload); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the stored snapshot payload, or "" when there is none
func (r *StudyRepository) GetSnapshot(learnerID string) (string, error) {
	var payload string
	err := r.db.QueryRow("SELECT payload FROM study_snapshots WHERE learner_id = ?", learnerID).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get snapshot: %w", err)
	}
	return payload, nil
}

// DeleteSnapshot removes a learner's snapshot
func (r *StudyRepository) DeleteSnapshot(learnerID string) error {
	if _, err := r.db.Exec("DELETE FROM study_snapshots WHERE learner_id = ?", learnerID); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func nonNilIDs(ids []models.WordID) []models.WordID {
	if ids == nil {
		return []models.WordID{}
	}
	return ids
}
