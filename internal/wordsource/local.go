package wordsource

import (
	"context"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
)

// LocalSource serves words from the application's own database
type LocalSource struct {
	vocabs     *repository.VocabRepository
	words      *repository.WordRepository
	classrooms *repository.ClassroomRepository
}

// NewLocalSource creates a word source backed by db
func NewLocalSource(db database.DBTX) *LocalSource {
	return &LocalSource{
		vocabs:     repository.NewVocabRepository(db),
		words:      repository.NewWordRepository(db),
		classrooms: repository.NewClassroomRepository(db),
	}
}

func (s *LocalSource) Vocabs(ctx context.Context) ([]models.Vocab, error) {
	vocabs, err := s.vocabs.GetAllVocabs()
	if err != nil {
		return nil, err
	}
	if vocabs == nil {
		vocabs = []models.Vocab{}
	}
	return vocabs, nil
}

func (s *LocalSource) Vocab(ctx context.Context, id int64) (*models.Vocab, error) {
	vocab, err := s.vocabs.GetVocabByID(id)
	if err != nil {
		return nil, err
	}
	if vocab == nil {
		return nil, ErrNotFound
	}
	return vocab, nil
}

func (s *LocalSource) VocabWords(ctx context.Context, vocabID int64) ([]models.Word, error) {
	if _, err := s.Vocab(ctx, vocabID); err != nil {
		return nil, err
	}
	return s.words.GetVocabWords(vocabID)
}

func (s *LocalSource) WordsPage(ctx context.Context, vocabID int64, page, size int) (*models.WordPage, error) {
	if _, err := s.Vocab(ctx, vocabID); err != nil {
		return nil, err
	}
	words, total, err := s.words.GetWordsPage(vocabID, page, size)
	if err != nil {
		return nil, err
	}
	if words == nil {
		words = []models.Word{}
	}
	return &models.WordPage{
		Words:      words,
		Page:       page,
		PageSize:   size,
		TotalWords: total,
		TotalPages: TotalPages(total, size),
	}, nil
}

func (s *LocalSource) Classroom(ctx context.Context, id int64) (*models.Classroom, error) {
	classroom, err := s.classrooms.GetClassroomByID(id)
	if err != nil {
		return nil, err
	}
	if classroom == nil {
		return nil, ErrNotFound
	}
	return classroom, nil
}

func (s *LocalSource) ClassroomWords(ctx context.Context, classroomID int64) ([]models.Word, error) {
	if _, err := s.Classroom(ctx, classroomID); err != nil {
		return nil, err
	}
	return s.classrooms.GetClassroomWords(classroomID)
}
