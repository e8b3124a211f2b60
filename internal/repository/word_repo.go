package repository

import (
	"database/sql"
	"fmt"
	"time"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// WordRepository handles database operations for words
type WordRepository struct {
	db database.DBTX
}

// NewWordRepository creates a new word repository
func NewWordRepository(db database.DBTX) *WordRepository {
	return &WordRepository{db: db}
}

const wordColumns = `
	w.id, w.vocab_id, w.english, w.korean, COALESCE(w.example, ''), w.pronunciation,
	w.difficulty, w.position, w.created_at`

func scanWord(row interface{ Scan(...interface{}) error }, w *models.Word) error {
	var id int64
	var difficulty string
	if err := row.Scan(&id, &w.VocabID, &w.English, &w.Korean, &w.Example, &w.Pronunciation,
		&difficulty, &w.Position, &w.CreatedAt); err != nil {
		return err
	}
	w.ID = models.WordIDFromInt(id)
	w.Difficulty = models.ParseDifficulty(difficulty)
	return nil
}

func (r *WordRepository) queryWords(query string, args ...interface{}) ([]models.Word, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		var word models.Word
		if err := scanWord(rows, &word); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, word)
	}
	return words, rows.Err()
}

// AddWord appends a word to the end of a vocabulary
func (r *WordRepository) AddWord(vocabID int64, word models.Word) (*models.Word, error) {
	word.Normalize()

	var position int
	err := r.db.QueryRow("SELECT COALESCE(MAX(position), 0) FROM words WHERE vocab_id = ?", vocabID).Scan(&position)
	if err != nil {
		return nil, fmt.Errorf("failed to get next position: %w", err)
	}
	position++

	query := `
		INSERT INTO words (vocab_id, english, korean, example, pronunciation, difficulty, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, vocabID, word.English, word.Korean, word.Example,
		word.Pronunciation, string(word.Difficulty), position)
	if err != nil {
		return nil, fmt.Errorf("failed to add word: %w", err)
	}

	word.ID = models.WordIDFromInt(id)
	word.VocabID = vocabID
	word.Position = position
	word.CreatedAt = time.Now()
	return &word, nil
}

// GetVocabWords retrieves all words of a vocabulary in list order
func (r *WordRepository) GetVocabWords(vocabID int64) ([]models.Word, error) {
	query := "SELECT" + wordColumns + " FROM words w WHERE w.vocab_id = ? ORDER BY w.position ASC, w.id ASC"
	return r.queryWords(query, vocabID)
}

// GetWordsPage retrieves one page of a vocabulary's words and the total word count.
// Pages start at 1.
func (r *WordRepository) GetWordsPage(vocabID int64, page, size int) ([]models.Word, int, error) {
	total, err := r.CountWords(vocabID)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT" + wordColumns + " FROM words w WHERE w.vocab_id = ? ORDER BY w.position ASC, w.id ASC LIMIT ? OFFSET ?"
	words, err := r.queryWords(query, vocabID, size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	return words, total, nil
}

// GetAllWords retrieves every word, grouped by vocabulary
func (r *WordRepository) GetAllWords() ([]models.Word, error) {
	query := "SELECT" + wordColumns + " FROM words w ORDER BY w.vocab_id ASC, w.position ASC"
	return r.queryWords(query)
}

// GetWordByID retrieves a word by ID
func (r *WordRepository) GetWordByID(id int64) (*models.Word, error) {
	query := "SELECT" + wordColumns + " FROM words w WHERE w.id = ?"
	word := &models.Word{}
	err := scanWord(r.db.QueryRow(query, id), word)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return word, nil
}

// UpdateWord updates a word's content
func (r *WordRepository) UpdateWord(id int64, word models.Word) error {
	word.Normalize()
	query := `
		UPDATE words SET english = ?, korean = ?, example = ?, pronunciation = ?, difficulty = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, word.English, word.Korean, word.Example, word.Pronunciation, string(word.Difficulty), id)
	if err != nil {
		return fmt.Errorf("failed to update word: %w", err)
	}
	return nil
}

// DeleteWord deletes a word
func (r *WordRepository) DeleteWord(id int64) error {
	if _, err := r.db.Exec("DELETE FROM words WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}

// CountWords returns the number of words in a vocabulary
func (r *WordRepository) CountWords(vocabID int64) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM words WHERE vocab_id = ?", vocabID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}
