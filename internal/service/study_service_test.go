package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/events"
	"vocabdrill/internal/models"
	"vocabdrill/internal/study"
	"vocabdrill/internal/wordsource"
)

func TestStudyServiceTypedFlow(t *testing.T) {
	db := newTestDB(t)
	vocabID := seedVocab(t, db, "Animals", animalWords...)
	f := newStudyFixture(t, db)
	ctx := context.Background()

	state, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Typed)
	require.NoError(t, err)
	assert.Equal(t, study.StepDirection, state.Step)
	assert.Equal(t, 3, state.WordCount)
	assert.Nil(t, state.Session)

	state, err = f.svc.ChooseDirection(ctx, "learner-1", study.EnglishToKorean)
	require.NoError(t, err)
	assert.Equal(t, study.StepBatch, state.Step)
	require.NotEmpty(t, state.BatchOptions)
	assert.True(t, state.BatchOptions[len(state.BatchOptions)-1].All)

	state, err = f.svc.ChooseBatch(ctx, "learner-1", study.BatchAll)
	require.NoError(t, err)
	require.NotNil(t, state.Session)
	assert.Equal(t, 3, state.Session.Total)
	assert.Equal(t, []string{events.StudyStarted}, eventTypes(f.events))

	snap, err := f.snapshots.Load(ctx, "learner-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, snap.WordOrder, 3)

	// first word right, auto-advanced by the timer
	_, err = f.svc.SetInputs("learner-1", answerFor(t, db, state))
	require.NoError(t, err)
	state, err = f.svc.Check("learner-1")
	require.NoError(t, err)
	assert.Equal(t, study.VerdictCorrect, state.Session.Verdict)
	assert.True(t, state.Session.AutoAdvancePending)
	assert.Equal(t, 1, f.scheduler.Fire())

	state, err = f.svc.State(ctx, "learner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.Session.Index)

	snap, err = f.snapshots.Load(ctx, "learner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentIndex, "snapshot follows the auto-advance")

	// second word wrong, advanced by hand
	missedID := state.Session.Card.WordID
	_, err = f.svc.SetInputs("learner-1", wrongAnswer(state))
	require.NoError(t, err)
	state, err = f.svc.Check("learner-1")
	require.NoError(t, err)
	assert.Equal(t, study.VerdictIncorrect, state.Session.Verdict)
	state, err = f.svc.Advance("learner-1")
	require.NoError(t, err)
	assert.Equal(t, []models.WordID{missedID}, state.Session.IncorrectIDs)

	// last word right
	_, err = f.svc.SetInputs("learner-1", answerFor(t, db, state))
	require.NoError(t, err)
	_, err = f.svc.Check("learner-1")
	require.NoError(t, err)
	f.scheduler.Fire()

	state, err = f.svc.State(ctx, "learner-1")
	require.NoError(t, err)
	assert.True(t, state.Session.Completed)
	require.NotNil(t, state.Session.Summary)
	assert.Equal(t, study.Summary{Total: 3, Correct: 2, Incorrect: 1, CorrectPercent: 67}, *state.Session.Summary)

	assert.Equal(t, []string{events.StudyStarted, events.StudyCompleted}, eventTypes(f.events))

	history, err := f.svc.History("learner-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].CorrectWords)
	assert.Equal(t, []models.WordID{missedID}, history[0].IncorrectIDs)
	assert.NotNil(t, history[0].CompletedAt)

	snap, err = f.snapshots.Load(ctx, "learner-1")
	require.NoError(t, err)
	assert.Nil(t, snap, "snapshot is removed once the session completes")

	_, err = f.svc.Advance("learner-1")
	assert.ErrorIs(t, err, study.ErrCompleted)
}

func TestStudyServiceFlashcardFlow(t *testing.T) {
	db := newTestDB(t)
	vocabID := seedVocab(t, db, "Animals", animalWords...)
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Flashcard)
	require.NoError(t, err)

	state, err := f.svc.ChooseDirection(ctx, "learner-1", study.KoreanToEnglish)
	require.NoError(t, err)
	assert.Equal(t, study.StepReady, state.Step)
	require.NotNil(t, state.Session, "flashcards begin without a batch choice")

	_, err = f.svc.Check("learner-1")
	assert.ErrorIs(t, err, study.ErrWrongStyle)

	state, err = f.svc.MarkUnknown("learner-1")
	require.NoError(t, err)
	unknownID := state.Session.UnknownIDs[0]

	_, err = f.svc.MarkKnown("learner-1")
	require.NoError(t, err)
	state, err = f.svc.MarkKnown("learner-1")
	require.NoError(t, err)
	assert.True(t, state.Session.Completed)
	assert.Equal(t, 2, state.Session.Summary.Correct)

	history, err := f.svc.History("learner-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(study.Flashcard), history[0].Style)
	assert.Equal(t, []models.WordID{unknownID}, history[0].IncorrectIDs)
}

func TestStudyServiceSelectionOrder(t *testing.T) {
	db := newTestDB(t)
	vocabID := seedVocab(t, db, "Animals", animalWords...)
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.ChooseDirection(ctx, "nobody", study.EnglishToKorean)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Typed)
	require.NoError(t, err)

	_, err = f.svc.ChooseBatch(ctx, "learner-1", 5)
	assert.ErrorIs(t, err, study.ErrSelectionOrder)

	_, err = f.svc.Check("learner-1")
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = f.svc.ChooseDirection(ctx, "learner-1", study.Direction("sideways"))
	assert.Error(t, err)

	_, err = f.svc.ChooseDirection(ctx, "learner-1", study.EnglishToKorean)
	require.NoError(t, err)
	state, err := f.svc.ChooseBatch(ctx, "learner-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Session.Total, "batch truncates the word list")

	_, err = f.svc.ChooseDirection(ctx, "learner-1", study.KoreanToEnglish)
	assert.ErrorIs(t, err, ErrAlreadyBegun)
}

func TestStudyServiceInvalidStart(t *testing.T) {
	db := newTestDB(t)
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "learner-1", "playlist", 1, study.Typed)
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = f.svc.Start(ctx, "learner-1", models.SourceVocab, 1, study.Style("quiz"))
	assert.ErrorIs(t, err, study.ErrInvalidStyle)

	_, err = f.svc.Start(ctx, "learner-1", models.SourceVocab, 999, study.Typed)
	assert.ErrorIs(t, err, wordsource.ErrNotFound)
}

func TestStudyServiceEmptyVocab(t *testing.T) {
	db := newTestDB(t)
	vocabID := seedVocab(t, db, "Nothing yet")
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Flashcard)
	require.NoError(t, err)
	state, err := f.svc.ChooseDirection(ctx, "learner-1", study.EnglishToKorean)
	require.NoError(t, err)
	assert.True(t, state.Session.Empty)
	assert.Nil(t, state.Session.Card)

	_, err = f.svc.ToggleBookmark(ctx, "learner-1")
	assert.ErrorIs(t, err, study.ErrEmptySession)
}

func TestStudyServiceStartReplacesSession(t *testing.T) {
	db := newTestDB(t)
	animals := seedVocab(t, db, "Animals", animalWords...)
	colors := seedVocab(t, db, "Colors", WordInput{English: "red", Korean: "빨간색"})
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, animals, study.Flashcard)
	require.NoError(t, err)
	_, err = f.svc.ChooseDirection(ctx, "learner-1", study.EnglishToKorean)
	require.NoError(t, err)

	state, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, colors, study.Flashcard)
	require.NoError(t, err)
	assert.Equal(t, colors, state.SourceID)
	assert.Equal(t, 1, state.WordCount)
	assert.Nil(t, state.Session)
}

func TestStudyServiceToggleDirectionKeepsOrder(t *testing.T) {
	db := newTestDB(t)
	vocabID := seedVocab(t, db, "Animals", animalWords...)
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Flashcard)
	require.NoError(t, err)
	before, err := f.svc.ChooseDirection(ctx, "learner-1", study.EnglishToKorean)
	require.NoError(t, err)
	firstID := before.Session.Card.WordID

	_, err = f.svc.Advance("learner-1")
	require.NoError(t, err)

	after, err := f.svc.ToggleDirection(ctx, "learner-1")
	require.NoError(t, err)
	assert.Equal(t, study.KoreanToEnglish, after.Session.Direction)
	assert.Equal(t, 0, after.Session.Index)
	assert.Equal(t, firstID, after.Session.Card.WordID)
}

func TestStudyServiceReset(t *testing.T) {
	db := newTestDB(t)
	vocabID := seedVocab(t, db, "Animals", animalWords...)
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Flashcard)
	require.NoError(t, err)
	_, err = f.svc.ChooseDirection(ctx, "learner-1", study.EnglishToKorean)
	require.NoError(t, err)
	_, err = f.svc.MarkKnown("learner-1")
	require.NoError(t, err)

	state, err := f.svc.Reset(ctx, "learner-1")
	require.NoError(t, err)
	assert.Equal(t, 0, state.Session.Index)
	assert.Empty(t, state.Session.KnownIDs)
	assert.Equal(t, 3, state.Session.Total)
}

func TestStudyServiceRestoreFromSnapshot(t *testing.T) {
	db := newTestDB(t)
	vocabID := seedVocab(t, db, "Animals", animalWords...)
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Typed)
	require.NoError(t, err)
	_, err = f.svc.ChooseDirection(ctx, "learner-1", study.KoreanToEnglish)
	require.NoError(t, err)
	state, err := f.svc.ChooseBatch(ctx, "learner-1", study.BatchAll)
	require.NoError(t, err)

	_, err = f.svc.SetInputs("learner-1", wrongAnswer(state))
	require.NoError(t, err)
	_, err = f.svc.Check("learner-1")
	require.NoError(t, err)
	before, err := f.svc.Advance("learner-1")
	require.NoError(t, err)

	// a fresh service over the same storage picks the session back up
	restarted := f.newService()
	defer restarted.Shutdown()

	after, err := restarted.State(ctx, "learner-1")
	require.NoError(t, err)
	require.NotNil(t, after.Session)
	assert.Equal(t, study.StepReady, after.Step)
	assert.Equal(t, 1, after.Session.Index)
	assert.Equal(t, before.Session.Card.WordID, after.Session.Card.WordID)
	assert.Equal(t, before.Session.IncorrectIDs, after.Session.IncorrectIDs)
	assert.Equal(t, study.KoreanToEnglish, after.Session.Direction)

	_, err = restarted.State(ctx, "somebody-else")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStudyServiceBookmarks(t *testing.T) {
	db := newTestDB(t)
	vocabID := seedVocab(t, db, "Animals", animalWords...)
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Flashcard)
	require.NoError(t, err)
	_, err = f.svc.ChooseDirection(ctx, "learner-1", study.EnglishToKorean)
	require.NoError(t, err)

	state, err := f.svc.ToggleBookmark(ctx, "learner-1")
	require.NoError(t, err)
	assert.True(t, state.Bookmarked)
	marked := state.Session.Card.WordID

	// not persisted until the session ends
	stored, err := f.repo.GetBookmarks("learner-1")
	require.NoError(t, err)
	assert.Empty(t, stored)

	require.NoError(t, f.svc.End(ctx, "learner-1"))
	assert.ErrorIs(t, f.svc.End(ctx, "learner-1"), ErrNoSession)

	stored, err = f.repo.GetBookmarks("learner-1")
	require.NoError(t, err)
	assert.Equal(t, []models.WordID{marked}, stored)

	state, err = f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Flashcard)
	require.NoError(t, err)
	assert.Equal(t, []models.WordID{marked}, state.Bookmarks)
}

func TestStudyServiceToggleAfterCompletionRecordsAgain(t *testing.T) {
	db := newTestDB(t)
	vocabID := seedVocab(t, db, "Animals", animalWords...)
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Flashcard)
	require.NoError(t, err)
	_, err = f.svc.ChooseDirection(ctx, "learner-1", study.EnglishToKorean)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.svc.MarkKnown("learner-1")
		require.NoError(t, err)
	}

	state, err := f.svc.ToggleDirection(ctx, "learner-1")
	require.NoError(t, err)
	assert.False(t, state.Session.Completed)
	for i := 0; i < 3; i++ {
		state, err = f.svc.MarkUnknown("learner-1")
		require.NoError(t, err)
	}
	assert.True(t, state.Session.Completed)

	history, err := f.svc.History("learner-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	correct := []int{history[0].CorrectWords, history[1].CorrectWords}
	assert.ElementsMatch(t, []int{3, 0}, correct)
	assert.Equal(t, []string{events.StudyStarted, events.StudyCompleted, events.StudyCompleted}, eventTypes(f.events))
}

func TestStudyServiceBookmarksSurviveReplacement(t *testing.T) {
	db := newTestDB(t)
	vocabID := seedVocab(t, db, "Animals", animalWords...)
	f := newStudyFixture(t, db)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Flashcard)
	require.NoError(t, err)
	_, err = f.svc.ChooseDirection(ctx, "learner-1", study.EnglishToKorean)
	require.NoError(t, err)
	state, err := f.svc.ToggleBookmark(ctx, "learner-1")
	require.NoError(t, err)
	marked := state.Session.Card.WordID

	snap, err := f.snapshots.Load(ctx, "learner-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, []models.WordID{marked}, snap.Bookmarks)

	// starting again without ending keeps what was bookmarked
	state, err = f.svc.Start(ctx, "learner-1", models.SourceVocab, vocabID, study.Flashcard)
	require.NoError(t, err)
	assert.Equal(t, []models.WordID{marked}, state.Bookmarks)

	state, err = f.svc.ChooseDirection(ctx, "learner-1", study.EnglishToKorean)
	require.NoError(t, err)
	current := state.Session.Card.WordID
	_, err = f.svc.ToggleBookmark(ctx, "learner-1")
	require.NoError(t, err)

	want := []models.WordID{marked, current}
	if current == marked {
		want = nil
	}

	// shutting down also writes them back
	f.svc.Shutdown()
	stored, err := f.repo.GetBookmarks("learner-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, want, stored)
}

type failingSource struct {
	wordsource.Source
}

func (failingSource) VocabWords(context.Context, int64) ([]models.Word, error) {
	return nil, &wordsource.NetworkError{Endpoint: "/api/vocabs/1", Err: errors.New("connection refused")}
}

func TestStudyServiceSourceFailure(t *testing.T) {
	db := newTestDB(t)
	f := newStudyFixture(t, db)
	svc := NewStudyService(StudyServiceConfig{
		Source:    failingSource{},
		StudyRepo: f.repo,
		Scheduler: f.scheduler,
	})

	_, err := svc.Start(context.Background(), "learner-1", models.SourceVocab, 1, study.Typed)
	assert.ErrorIs(t, err, wordsource.ErrNetwork)

	_, err = svc.State(context.Background(), "learner-1")
	assert.ErrorIs(t, err, ErrNoSession, "a failed load leaves no session behind")
}
