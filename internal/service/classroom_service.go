package service

import (
	"fmt"
	"log"
	"strings"

	"vocabdrill/internal/credentials"
	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/validation"
)

var ErrClassroomNotFound = errorNotFound("classroom")

// maxCodeAttempts bounds the retries when a generated code is already taken
const maxCodeAttempts = 5

// ClassroomInput is the payload for creating or updating a classroom
type ClassroomInput struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	OwnerEmail  string `json:"ownerEmail" validate:"omitempty,email"`
}

// ClassroomService handles classroom business logic
type ClassroomService struct {
	db            *database.DB
	classroomRepo *repository.ClassroomRepository
	vocabRepo     *repository.VocabRepository
}

// NewClassroomService creates a new classroom service
func NewClassroomService(db *database.DB) *ClassroomService {
	return &ClassroomService{
		db:            db,
		classroomRepo: repository.NewClassroomRepository(db),
		vocabRepo:     repository.NewVocabRepository(db),
	}
}

// ListClassrooms returns every classroom
func (s *ClassroomService) ListClassrooms() ([]models.Classroom, error) {
	return s.classroomRepo.GetAllClassrooms()
}

// GetClassroom returns a classroom with its vocabularies and words in exam order
func (s *ClassroomService) GetClassroom(id int64) (*models.ClassroomWithWords, error) {
	classroom, err := s.classroomRepo.GetClassroomByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}
	if classroom == nil {
		return nil, ErrClassroomNotFound
	}

	vocabs, err := s.classroomRepo.GetClassroomVocabs(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom vocabs: %w", err)
	}
	words, err := s.classroomRepo.GetClassroomWords(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom words: %w", err)
	}
	return &models.ClassroomWithWords{Classroom: *classroom, Vocabs: vocabs, Words: words}, nil
}

// CreateClassroom creates a classroom with a fresh join code
func (s *ClassroomService) CreateClassroom(in ClassroomInput) (*models.Classroom, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	code, err := s.uniqueCode()
	if err != nil {
		return nil, err
	}

	classroom, err := s.classroomRepo.CreateClassroom(strings.TrimSpace(in.Name), strings.TrimSpace(in.Description),
		code, strings.ToLower(strings.TrimSpace(in.OwnerEmail)))
	if err != nil {
		return nil, err
	}
	log.Printf("Created classroom %d with code %s", classroom.ID, classroom.Code)
	return classroom, nil
}

func (s *ClassroomService) uniqueCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := credentials.GenerateClassroomCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate classroom code: %w", err)
		}
		existing, err := s.classroomRepo.GetClassroomByCode(code)
		if err != nil {
			return "", fmt.Errorf("failed to check classroom code: %w", err)
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique classroom code after %d attempts", maxCodeAttempts)
}

// UpdateClassroom changes a classroom's details
func (s *ClassroomService) UpdateClassroom(id int64, in ClassroomInput) (*models.Classroom, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.requireClassroom(id); err != nil {
		return nil, err
	}
	err := s.classroomRepo.UpdateClassroom(id, strings.TrimSpace(in.Name), strings.TrimSpace(in.Description),
		strings.ToLower(strings.TrimSpace(in.OwnerEmail)))
	if err != nil {
		return nil, err
	}
	return s.classroomRepo.GetClassroomByID(id)
}

// DeleteClassroom deletes a classroom
func (s *ClassroomService) DeleteClassroom(id int64) error {
	if err := s.requireClassroom(id); err != nil {
		return err
	}
	return s.classroomRepo.DeleteClassroom(id)
}

// SetVocabs replaces the classroom's vocabularies. The order given is the exam order.
func (s *ClassroomService) SetVocabs(classroomID int64, vocabIDs []int64) (*models.Classroom, error) {
	if err := s.requireClassroom(classroomID); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(vocabIDs))
	unique := make([]int64, 0, len(vocabIDs))
	for _, id := range vocabIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		vocab, err := s.vocabRepo.GetVocabByID(id)
		if err != nil {
			return nil, fmt.Errorf("failed to get vocab: %w", err)
		}
		if vocab == nil {
			return nil, fmt.Errorf("vocab %d: %w", id, ErrVocabNotFound)
		}
		unique = append(unique, id)
	}

	err := s.db.WithTx(func(tx *database.Tx) error {
		return repository.NewClassroomRepository(tx).SetClassroomVocabs(classroomID, unique)
	})
	if err != nil {
		return nil, err
	}
	return s.classroomRepo.GetClassroomByID(classroomID)
}

func (s *ClassroomService) requireClassroom(id int64) error {
	classroom, err := s.classroomRepo.GetClassroomByID(id)
	if err != nil {
		return fmt.Errorf("failed to get classroom: %w", err)
	}
	if classroom == nil {
		return ErrClassroomNotFound
	}
	return nil
}
