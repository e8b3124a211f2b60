// Package wordsource loads the word lists a study session works on, either
// from a remote REST API or from the local database.
package wordsource

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"vocabdrill/internal/models"
)

var (
	// ErrNetwork is returned when the remote source could not be reached or
	// answered with a non-2xx status. Callers show a retry affordance; the
	// request is never retried automatically.
	ErrNetwork = errors.New("word source unavailable")
	// ErrNotFound is returned when a vocabulary or classroom does not exist
	ErrNotFound = errors.New("not found")
)

// NetworkError describes a failed request to the remote source
type NetworkError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("word source %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("word source %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return ErrNetwork }

// Source provides vocabularies, classrooms and their words
type Source interface {
	Vocabs(ctx context.Context) ([]models.Vocab, error)
	Vocab(ctx context.Context, id int64) (*models.Vocab, error)
	VocabWords(ctx context.Context, vocabID int64) ([]models.Word, error)
	WordsPage(ctx context.Context, vocabID int64, page, size int) (*models.WordPage, error)
	Classroom(ctx context.Context, id int64) (*models.Classroom, error)
	// ClassroomWords returns the words of every vocab in the classroom, in exam order
	ClassroomWords(ctx context.Context, classroomID int64) ([]models.Word, error)
}

// Load resolves the word list of a study source
func Load(ctx context.Context, src Source, kind string, id int64) ([]models.Word, error) {
	switch kind {
	case models.SourceVocab:
		return src.VocabWords(ctx, id)
	case models.SourceClassroom:
		return src.ClassroomWords(ctx, id)
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}

// Shuffle returns a shuffled copy of words
func Shuffle(words []models.Word) []models.Word {
	shuffled := make([]models.Word, len(words))
	copy(shuffled, words)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// ReorderByIDs puts words in the order given by ids. Words missing from ids
// are appended in their original order; ids with no word are skipped.
func ReorderByIDs(words []models.Word, ids []models.WordID) []models.Word {
	if len(ids) == 0 {
		return words
	}

	byID := make(map[models.WordID]models.Word, len(words))
	for _, w := range words {
		byID[w.ID] = w
	}

	ordered := make([]models.Word, 0, len(words))
	used := make(map[models.WordID]bool, len(ids))
	for _, id := range ids {
		if w, ok := byID[id]; ok && !used[id] {
			ordered = append(ordered, w)
			used[id] = true
		}
	}
	for _, w := range words {
		if !used[w.ID] {
			ordered = append(ordered, w)
		}
	}
	return ordered
}

// TotalPages is the number of pages of size needed for total items
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
