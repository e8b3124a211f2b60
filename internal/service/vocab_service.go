package service

import (
	"fmt"
	"strings"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/validation"
	"vocabdrill/internal/wordsource"
)

var (
	ErrVocabNotFound = errorNotFound("vocab")
	ErrWordNotFound  = errorNotFound("word")
)

const maxPageSize = 100

// VocabInput is the payload for creating or updating a vocabulary
type VocabInput struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// WordInput is the payload for creating or updating a word
type WordInput struct {
	English       string `json:"english" validate:"notblank,max=200"`
	Korean        string `json:"korean" validate:"notblank,max=200"`
	Example       string `json:"example" validate:"max=1000"`
	Pronunciation string `json:"pronunciation" validate:"max=200"`
	Difficulty    string `json:"difficulty" validate:"difficulty"`
}

func (in WordInput) toModel() models.Word {
	return models.Word{
		English:       in.English,
		Korean:        in.Korean,
		Example:       in.Example,
		Pronunciation: in.Pronunciation,
		Difficulty:    models.ParseDifficulty(in.Difficulty),
	}
}

// VocabService handles vocabulary business logic
type VocabService struct {
	db        *database.DB
	vocabRepo *repository.VocabRepository
	wordRepo  *repository.WordRepository
}

// NewVocabService creates a new vocab service
func NewVocabService(db *database.DB) *VocabService {
	return &VocabService{
		db:        db,
		vocabRepo: repository.NewVocabRepository(db),
		wordRepo:  repository.NewWordRepository(db),
	}
}

// ListVocabs returns every vocabulary with its word count
func (s *VocabService) ListVocabs() ([]models.Vocab, error) {
	return s.vocabRepo.GetAllVocabs()
}

// GetVocab returns a vocabulary and its words
func (s *VocabService) GetVocab(id int64) (*models.VocabWithWords, error) {
	vocab, err := s.vocabRepo.GetVocabByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get vocab: %w", err)
	}
	if vocab == nil {
		return nil, ErrVocabNotFound
	}

	words, err := s.wordRepo.GetVocabWords(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get vocab words: %w", err)
	}
	return &models.VocabWithWords{Vocab: *vocab, Words: words}, nil
}

// GetWordsPage returns one page of a vocabulary's words. Pages start at 1.
func (s *VocabService) GetWordsPage(vocabID int64, page, size int) (*models.WordPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = 20
	}

	vocab, err := s.vocabRepo.GetVocabByID(vocabID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vocab: %w", err)
	}
	if vocab == nil {
		return nil, ErrVocabNotFound
	}

	words, total, err := s.wordRepo.GetWordsPage(vocabID, page, size)
	if err != nil {
		return nil, fmt.Errorf("failed to get words page: %w", err)
	}
	return &models.WordPage{
		Words:      words,
		Page:       page,
		PageSize:   size,
		TotalWords: total,
		TotalPages: wordsource.TotalPages(total, size),
	}, nil
}

// CreateVocab creates a vocabulary
func (s *VocabService) CreateVocab(in VocabInput) (*models.Vocab, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.vocabRepo.CreateVocab(strings.TrimSpace(in.Title), strings.TrimSpace(in.Description))
}

// UpdateVocab renames a vocabulary
func (s *VocabService) UpdateVocab(id int64, in VocabInput) (*models.Vocab, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.requireVocab(id); err != nil {
		return nil, err
	}
	if err := s.vocabRepo.UpdateVocab(id, strings.TrimSpace(in.Title), strings.TrimSpace(in.Description)); err != nil {
		return nil, err
	}
	return s.vocabRepo.GetVocabByID(id)
}

// DeleteVocab deletes a vocabulary and its words
func (s *VocabService) DeleteVocab(id int64) error {
	if err := s.requireVocab(id); err != nil {
		return err
	}
	return s.vocabRepo.DeleteVocab(id)
}

// AddWords appends words to a vocabulary in one transaction
func (s *VocabService) AddWords(vocabID int64, inputs []WordInput) ([]models.Word, error) {
	for _, in := range inputs {
		if err := validation.Struct(in); err != nil {
			return nil, err
		}
	}
	if err := s.requireVocab(vocabID); err != nil {
		return nil, err
	}

	added := make([]models.Word, 0, len(inputs))
	err := s.db.WithTx(func(tx *database.Tx) error {
		repo := repository.NewWordRepository(tx)
		for _, in := range inputs {
			word, err := repo.AddWord(vocabID, in.toModel())
			if err != nil {
				return err
			}
			added = append(added, *word)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateWord replaces the content of a word
func (s *VocabService) UpdateWord(id int64, in WordInput) (*models.Word, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.requireWord(id); err != nil {
		return nil, err
	}
	if err := s.wordRepo.UpdateWord(id, in.toModel()); err != nil {
		return nil, err
	}
	return s.wordRepo.GetWordByID(id)
}

// DeleteWord deletes a word
func (s *VocabService) DeleteWord(id int64) error {
	if err := s.requireWord(id); err != nil {
		return err
	}
	return s.wordRepo.DeleteWord(id)
}

func (s *VocabService) requireVocab(id int64) error {
	vocab, err := s.vocabRepo.GetVocabByID(id)
	if err != nil {
		return fmt.Errorf("failed to get vocab: %w", err)
	}
	if vocab == nil {
		return ErrVocabNotFound
	}
	return nil
}

func (s *VocabService) requireWord(id int64) error {
	word, err := s.wordRepo.GetWordByID(id)
	if err != nil {
		return fmt.Errorf("failed to get word: %w", err)
	}
	if word == nil {
		return ErrWordNotFound
	}
	return nil
}
