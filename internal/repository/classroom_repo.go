package repository

import (
	"database/sql"
	"fmt"
	"time"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// ClassroomRepository handles database operations for classrooms
type ClassroomRepository struct {
	db database.DBTX
}

// NewClassroomRepository creates a new classroom repository
func NewClassroomRepository(db database.DBTX) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

const classroomColumns = `id, name, COALESCE(description, ''), code, owner_email, created_at, updated_at`

// CreateClassroom creates a new classroom
func (r *ClassroomRepository) CreateClassroom(name, description, code, ownerEmail string) (*models.Classroom, error) {
	query := "INSERT INTO classrooms (name, description, code, owner_email) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, name, description, code, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to create classroom: %w", err)
	}

	now := time.Now()
	return &models.Classroom{
		ID:          id,
		Name:        name,
		Description: description,
		Code:        code,
		OwnerEmail:  ownerEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *ClassroomRepository) getOne(where string, arg interface{}) (*models.Classroom, error) {
	query := "SELECT " + classroomColumns + " FROM classrooms WHERE " + where
	c := &models.Classroom{}
	err := r.db.QueryRow(query, arg).Scan(&c.ID, &c.Name, &c.Description, &c.Code, &c.OwnerEmail, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}

	c.VocabIDs, err = r.GetClassroomVocabIDs(c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetClassroomByID retrieves a classroom and its vocab assignment by ID
func (r *ClassroomRepository) GetClassroomByID(id int64) (*models.Classroom, error) {
	return r.getOne("id = ?", id)
}

// GetClassroomByCode retrieves a classroom by its join code
func (r *ClassroomRepository) GetClassroomByCode(code string) (*models.Classroom, error) {
	return r.getOne("code = ?", code)
}

// GetAllClassrooms retrieves every classroom with its vocab assignment
func (r *ClassroomRepository) GetAllClassrooms() ([]models.Classroom, error) {
	rows, err := r.db.Query("SELECT " + classroomColumns + " FROM classrooms ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query classrooms: %w", err)
	}

	var classrooms []models.Classroom
	for rows.Next() {
		var c models.Classroom
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Code, &c.OwnerEmail, &c.CreatedAt, &c.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan classroom: %w", err)
		}
		classrooms = append(classrooms, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// a Tx cannot query again while rows are open
	for i := range classrooms {
		ids, err := r.GetClassroomVocabIDs(classrooms[i].ID)
		if err != nil {
			return nil, err
		}
		classrooms[i].VocabIDs = ids
	}
	return classrooms, nil
}

// UpdateClassroom updates a classroom's details
func (r *ClassroomRepository) UpdateClassroom(id int64, name, description, ownerEmail string) error {
	query := "UPDATE classrooms SET name = ?, description = ?, owner_email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, name, description, ownerEmail, id); err != nil {
		return fmt.Errorf("failed to update classroom: %w", err)
	}
	return nil
}

// DeleteClassroom deletes a classroom
func (r *ClassroomRepository) DeleteClassroom(id int64) error {
	if _, err := r.db.Exec("DELETE FROM classroom_vocabs WHERE classroom_id = ?", id); err != nil {
		return fmt.Errorf("failed to unassign classroom vocabs: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM classrooms WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete classroom: %w", err)
	}
	return nil
}

// GetClassroomVocabIDs returns the vocab ids assigned to a classroom, in exam order
func (r *ClassroomRepository) GetClassroomVocabIDs(classroomID int64) ([]int64, error) {
	rows, err := r.db.Query("SELECT vocab_id FROM classroom_vocabs WHERE classroom_id = ? ORDER BY position ASC", classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classroom vocabs: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan classroom vocab: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetClassroomVocabs replaces the vocab assignment of a classroom. The order
// of vocabIDs is the exam order. Run it inside a transaction.
func (r *ClassroomRepository) SetClassroomVocabs(classroomID int64, vocabIDs []int64) error {
	if _, err := r.db.Exec("DELETE FROM classroom_vocabs WHERE classroom_id = ?", classroomID); err != nil {
		return fmt.Errorf("failed to clear classroom vocabs: %w", err)
	}
	for i, vocabID := range vocabIDs {
		query := "INSERT INTO classroom_vocabs (classroom_id, vocab_id, position) VALUES (?, ?, ?)"
		if _, err := r.db.Exec(query, classroomID, vocabID, i+1); err != nil {
			return fmt.Errorf("failed to assign vocab %d: %w", vocabID, err)
		}
	}
	return nil
}

// GetClassroomWords returns the words of every vocab in a classroom in exam
// order: vocab assignment order first, then word position.
func (r *ClassroomRepository) GetClassroomWords(classroomID int64) ([]models.Word, error) {
	query := "SELECT" + wordColumns + `
		FROM words w
		INNER JOIN classroom_vocabs cv ON cv.vocab_id = w.vocab_id
		WHERE cv.classroom_id = ?
		ORDER BY cv.position ASC, w.position ASC, w.id ASC
	`
	return NewWordRepository(r.db).queryWords(query, classroomID)
}

// GetClassroomVocabs returns the vocabularies of a classroom in exam order
func (r *ClassroomRepository) GetClassroomVocabs(classroomID int64) ([]models.Vocab, error) {
	query := "SELECT" + vocabColumns + `
		FROM vocabs v
		INNER JOIN classroom_vocabs cv ON cv.vocab_id = v.id
		WHERE cv.classroom_id = ?
		ORDER BY cv.position ASC
	`
	rows, err := r.db.Query(query, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classroom vocabs: %w", err)
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
