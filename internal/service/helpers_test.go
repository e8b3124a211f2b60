package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vocabdrill/internal/cache"
	"vocabdrill/internal/database"
	"vocabdrill/internal/events"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/study"
	"vocabdrill/internal/wordsource"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations("../../migrations"))
	return db
}

// seedVocab creates a vocabulary holding words and returns its id
func seedVocab(t *testing.T, db *database.DB, title string, words ...WordInput) int64 {
	t.Helper()
	vocabs := NewVocabService(db)
	vocab, err := vocabs.CreateVocab(VocabInput{Title: title})
	require.NoError(t, err)
	if len(words) > 0 {
		_, err = vocabs.AddWords(vocab.ID, words)
		require.NoError(t, err)
	}
	return vocab.ID
}

var animalWords = []WordInput{
	{English: "cat", Korean: "고양이"},
	{English: "dog", Korean: "개"},
	{English: "horse", Korean: "말"},
}

type studyFixture struct {
	db        *database.DB
	svc       *StudyService
	repo      *repository.StudyRepository
	snapshots cache.SnapshotStore
	events    *events.RecordingPublisher
	scheduler *study.ManualScheduler
}

func newStudyFixture(t *testing.T, db *database.DB) *studyFixture {
	t.Helper()
	f := &studyFixture{
		db:        db,
		repo:      repository.NewStudyRepository(db),
		events:    &events.RecordingPublisher{},
		scheduler: &study.ManualScheduler{},
	}
	f.snapshots = cache.NewDBSnapshotStore(f.repo)
	f.svc = f.newService()
	t.Cleanup(f.svc.Shutdown)
	return f
}

// newService builds another service over the same storage, as after a restart
func (f *studyFixture) newService() *StudyService {
	return NewStudyService(StudyServiceConfig{
		Source:    wordsource.NewLocalSource(f.db),
		StudyRepo: f.repo,
		Snapshots: f.snapshots,
		Publisher: f.events,
		Scheduler: f.scheduler,
	})
}

// answerFor looks up the expected answer of the current card
func answerFor(t *testing.T, db *database.DB, state *StudyState) []string {
	t.Helper()
	require.NotNil(t, state.Session)
	require.NotNil(t, state.Session.Card)

	id, err := state.Session.Card.WordID.Int64()
	require.NoError(t, err)
	word, err := repository.NewWordRepository(db).GetWordByID(id)
	require.NoError(t, err)
	require.NotNil(t, word)

	target := study.Target(*word, state.Session.Direction)
	inputs := make([]string, 0, len(target))
	for _, r := range target {
		inputs = append(inputs, string(r))
	}
	return inputs
}

func wrongAnswer(state *StudyState) []string {
	inputs := make([]string, state.Session.Card.AnswerLength)
	for i := range inputs {
		inputs[i] = "x"
	}
	return inputs
}

func eventTypes(rec *events.RecordingPublisher) []string {
	var types []string
	for _, e := range rec.Events() {
		types = append(types, e.Type)
	}
	return types
}

func wordIDs(words []models.Word) []models.WordID {
	ids := make([]models.WordID, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	return ids
}
