package wordsource

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
)

func TestShuffleKeepsWords(t *testing.T) {
	words := []models.Word{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}
	shuffled := Shuffle(words)

	assert.ElementsMatch(t, words, shuffled)
	assert.Equal(t, models.WordID("1"), words[0].ID, "input must not be modified")
}

func TestReorderByIDs(t *testing.T) {
	words := []models.Word{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	got := ReorderByIDs(words, []models.WordID{"3", "9", "1"})
	assert.Equal(t, []models.Word{{ID: "3"}, {ID: "1"}, {ID: "2"}}, got)
	assert.Equal(t, words, ReorderByIDs(words, nil))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestLocalSource(t *testing.T) {
	db, err := database.Initialize(filepath.Join(t.TempDir(), "source.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.RunMigrations("../../migrations"))

	vocab, err := repository.NewVocabRepository(db).CreateVocab("Food", "")
	require.NoError(t, err)
	words := repository.NewWordRepository(db)
	for _, en := range []string{"rice", "kimchi", "soup"} {
		_, err := words.AddWord(vocab.ID, models.Word{English: en, Korean: "음식"})
		require.NoError(t, err)
	}

	src := NewLocalSource(db)
	ctx := context.Background()

	list, err := Load(ctx, src, models.SourceVocab, vocab.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	page, err := src.WordsPage(ctx, vocab.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Words, 2)

	_, err = src.VocabWords(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Load(ctx, src, models.SourceClassroom, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Load(ctx, src, "playlist", 1)
	assert.Error(t, err)
}
