package study

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/models"
)

type recordingSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
	err     error
}

func (r *recordingSpeaker) Speak(text, lang string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.spoken = append(r.spoken, lang+":"+text)
	return nil
}

func (r *recordingSpeaker) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels++
}

func threeWords() []models.Word {
	return []models.Word{
		{ID: "1", English: "cat", Korean: "고양이"},
		{ID: "2", English: "dog", Korean: "개"},
		{ID: "3", English: "bird", Korean: "새"},
	}
}

func newTypedSession(t *testing.T, words []models.Word, dir Direction) (*Session, *ManualScheduler) {
	t.Helper()
	sched := &ManualScheduler{}
	s := NewSession(Options{ID: "s1", Style: Typed, Scheduler: sched, Speaker: &recordingSpeaker{}})
	require.NoError(t, s.Initialize(words, dir, BatchAll))
	return s, sched
}

func TestSessionScenario(t *testing.T) {
	s, sched := newTypedSession(t, threeWords(), KoreanToEnglish)

	require.NoError(t, s.SetInputs([]string{"C", "A", "T"}))
	verdict, err := s.Check()
	require.NoError(t, err)
	assert.Equal(t, VerdictCorrect, verdict)
	assert.True(t, s.View().AutoAdvancePending)

	assert.Equal(t, 1, sched.Fire())
	v := s.View()
	assert.Equal(t, 1, v.Index)
	assert.Empty(t, v.IncorrectIDs)
	assert.Equal(t, []string{"", "", ""}, v.Inputs)

	require.NoError(t, s.SetInputs([]string{"c", "o", "w"}))
	verdict, err = s.Check()
	require.NoError(t, err)
	assert.Equal(t, VerdictIncorrect, verdict)
	assert.Zero(t, sched.Pending())

	require.NoError(t, s.Advance())
	v = s.View()
	assert.Equal(t, 2, v.Index)
	assert.Equal(t, []models.WordID{"2"}, v.IncorrectIDs)

	require.NoError(t, s.Advance())
	v = s.View()
	assert.True(t, v.Completed)
	require.NotNil(t, v.Summary)
	assert.Equal(t, 2, v.Summary.Correct)
	assert.Equal(t, 67, v.Summary.CorrectPercent)
}

func TestAdvanceCompletesAfterEveryWord(t *testing.T) {
	for n := 1; n <= 6; n++ {
		s, _ := newTypedSession(t, makeWords(n), KoreanToEnglish)
		for i := 0; i < n; i++ {
			require.NoError(t, s.Advance())
		}
		v := s.View()
		assert.True(t, v.Completed, "n=%d", n)
		assert.Equal(t, n-1, v.Index, "n=%d", n)
		assert.ErrorIs(t, s.Advance(), ErrCompleted)
	}
}

func TestCompletedSessionIsFrozen(t *testing.T) {
	s, _ := newTypedSession(t, makeWords(1), KoreanToEnglish)
	require.NoError(t, s.Advance())

	_, err := s.SetInput(0, "w")
	assert.ErrorIs(t, err, ErrCompleted)
	assert.ErrorIs(t, s.SetInputs([]string{"w"}), ErrCompleted)
	_, err = s.Check()
	assert.ErrorIs(t, err, ErrCompleted)
	assert.ErrorIs(t, s.Reveal(), ErrCompleted)

	require.NoError(t, s.Reset(makeWords(2)))
	v := s.View()
	assert.False(t, v.Completed)
	assert.Equal(t, 2, v.Total)
}

func TestEmptySession(t *testing.T) {
	s, _ := newTypedSession(t, nil, EnglishToKorean)
	v := s.View()
	assert.True(t, v.Empty)
	assert.Equal(t, 0, v.Progress)
	assert.Nil(t, v.Card)

	_, err := s.Check()
	assert.ErrorIs(t, err, ErrEmptySession)

	require.NoError(t, s.Advance())
	v = s.View()
	assert.True(t, v.Completed)
	assert.Equal(t, 0, v.Summary.CorrectPercent)
}

func TestSetInputFocus(t *testing.T) {
	words := []models.Word{{ID: "1", English: "New York", Korean: "뉴욕"}}

	s, _ := newTypedSession(t, words, KoreanToEnglish)
	next, err := s.SetInput(2, "w")
	require.NoError(t, err)
	assert.Equal(t, 4, next)

	_, err = s.SetInput(3, "x")
	assert.ErrorIs(t, err, ErrInputPosition)

	next, err = s.SetInput(4, "Yo")
	require.NoError(t, err)
	assert.Equal(t, 5, next)
	assert.Equal(t, "Y", s.View().Inputs[4])

	next, err = s.Backspace(4)
	require.NoError(t, err)
	assert.Equal(t, 4, next)
	assert.Equal(t, "", s.View().Inputs[4])

	next, err = s.Backspace(4)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	ko, _ := newTypedSession(t, words, EnglishToKorean)
	next, err = ko.SetInput(0, "뉴")
	require.NoError(t, err)
	assert.Equal(t, 0, next)
}

func TestSetInputsLengthMismatchResetsBuffer(t *testing.T) {
	s, _ := newTypedSession(t, threeWords(), KoreanToEnglish)
	require.NoError(t, s.SetInputs([]string{"c", "a", "x"}))

	err := s.SetInputs([]string{"c", "a"})
	assert.ErrorIs(t, err, ErrInputLength)
	assert.Equal(t, []string{"", "", ""}, s.View().Inputs)
}

func TestRevealBlocksEditing(t *testing.T) {
	speaker := &recordingSpeaker{}
	s := NewSession(Options{Style: Typed, Scheduler: &ManualScheduler{}, Speaker: speaker})
	require.NoError(t, s.Initialize(threeWords(), EnglishToKorean, BatchAll))

	require.NoError(t, s.Reveal())
	v := s.View()
	assert.True(t, v.Revealed)
	assert.Equal(t, VerdictIncorrect, v.Verdict)
	assert.Equal(t, "고양이", v.Card.Answer)
	assert.Equal(t, []string{"ko-KR:고양이"}, speaker.spoken)

	_, err := s.SetInput(0, "고")
	assert.ErrorIs(t, err, ErrRevealed)
	_, err = s.Check()
	assert.ErrorIs(t, err, ErrRevealed)
	assert.ErrorIs(t, s.Reveal(), ErrRevealed)

	require.NoError(t, s.Advance())
	v = s.View()
	assert.False(t, v.Revealed)
	assert.Equal(t, 1, v.Index)
	assert.Equal(t, []models.WordID{"1"}, v.IncorrectIDs)
}

func TestRevealKeepsCorrectVerdict(t *testing.T) {
	s, _ := newTypedSession(t, threeWords(), KoreanToEnglish)
	require.NoError(t, s.SetInputs([]string{"c", "a", "t"}))
	_, err := s.Check()
	require.NoError(t, err)

	require.NoError(t, s.Reveal())
	assert.Equal(t, VerdictCorrect, s.View().Verdict)
	assert.False(t, s.View().AutoAdvancePending)

	require.NoError(t, s.Advance())
	assert.Empty(t, s.View().IncorrectIDs)
}

func TestRevealFlashcardLeavesVerdict(t *testing.T) {
	s := NewSession(Options{Style: Flashcard, Scheduler: &ManualScheduler{}, Speaker: &recordingSpeaker{}})
	require.NoError(t, s.Initialize(threeWords(), EnglishToKorean, BatchAll))

	require.NoError(t, s.Reveal())
	require.NoError(t, s.MarkKnown())
	v := s.View()
	assert.Empty(t, v.IncorrectIDs)
	assert.Equal(t, []models.WordID{"1"}, v.KnownIDs)
}

func TestStaleAutoAdvanceIsIgnored(t *testing.T) {
	s, sched := newTypedSession(t, threeWords(), KoreanToEnglish)
	require.NoError(t, s.SetInputs([]string{"c", "a", "t"}))
	_, err := s.Check()
	require.NoError(t, err)

	require.NoError(t, s.Advance())
	assert.Equal(t, 1, sched.FireStale())
	assert.Equal(t, 1, s.View().Index)
}

func TestResetCancelsAutoAdvance(t *testing.T) {
	s, sched := newTypedSession(t, threeWords(), KoreanToEnglish)
	require.NoError(t, s.SetInputs([]string{"c", "a", "t"}))
	_, err := s.Check()
	require.NoError(t, err)

	require.NoError(t, s.Reset(threeWords()))
	assert.Zero(t, sched.Pending())
	sched.FireStale()
	assert.Equal(t, 0, s.View().Index)
}

func TestCloseCancelsAutoAdvance(t *testing.T) {
	s, sched := newTypedSession(t, threeWords(), KoreanToEnglish)
	require.NoError(t, s.SetInputs([]string{"c", "a", "t"}))
	_, err := s.Check()
	require.NoError(t, err)

	s.Close()
	sched.FireStale()
	v := s.View()
	assert.True(t, v.Closed)
	assert.Equal(t, 0, v.Index)
	assert.ErrorIs(t, s.Advance(), ErrClosed)
}

func TestEditAfterCorrectCancelsAutoAdvance(t *testing.T) {
	s, sched := newTypedSession(t, threeWords(), KoreanToEnglish)
	require.NoError(t, s.SetInputs([]string{"c", "a", "t"}))
	_, err := s.Check()
	require.NoError(t, err)

	_, err = s.SetInput(2, "r")
	require.NoError(t, err)
	assert.Equal(t, VerdictUnknown, s.View().Verdict)
	assert.Zero(t, sched.Pending())
}

func TestToggleDirectionKeepsOrder(t *testing.T) {
	s, _ := newTypedSession(t, makeWords(5), KoreanToEnglish)
	before := s.Words()
	require.NoError(t, s.Advance())
	require.NoError(t, s.Advance())

	require.NoError(t, s.ToggleDirection())
	v := s.View()
	assert.Equal(t, EnglishToKorean, v.Direction)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, before, s.Words())
	assert.Equal(t, []string{"", ""}, v.Inputs)
}

func TestInitializeTruncatesToBatch(t *testing.T) {
	s, _ := newTypedSession(t, nil, KoreanToEnglish)
	require.NoError(t, s.Initialize(makeWords(12), KoreanToEnglish, 5))
	v := s.View()
	assert.Equal(t, 5, v.Total)
	assert.Equal(t, 5, v.BatchSize)
	assert.Equal(t, 20, v.Progress)

	assert.ErrorIs(t, s.Initialize(makeWords(3), "up", 0), ErrInvalidDirection)
}

func TestFlashcardFlow(t *testing.T) {
	var advanced []int
	s := NewSession(Options{
		Style:     Flashcard,
		Scheduler: &ManualScheduler{},
		OnAdvance: func(v View) { advanced = append(advanced, v.Index) },
	})
	require.NoError(t, s.Initialize(threeWords(), EnglishToKorean, BatchAll))

	require.NoError(t, s.Retreat())
	assert.Equal(t, 0, s.View().Index)

	require.NoError(t, s.MarkUnknown())
	require.NoError(t, s.MarkKnown())
	require.NoError(t, s.Retreat())
	require.NoError(t, s.MarkKnown())

	v := s.View()
	assert.Equal(t, 2, v.Index)
	assert.Equal(t, []models.WordID{"2"}, v.KnownIDs)
	assert.Equal(t, []models.WordID{"1"}, v.UnknownIDs)
	assert.Empty(t, v.IncorrectIDs)

	require.NoError(t, s.MarkKnown())
	v = s.View()
	assert.True(t, v.Completed)
	assert.Equal(t, Summary{Total: 3, Correct: 2, Incorrect: 1, CorrectPercent: 67}, *v.Summary)
	assert.Equal(t, []int{1, 2, 2, 2}, advanced)

	_, err := s.Check()
	assert.ErrorIs(t, err, ErrWrongStyle)
}

func TestTypedRejectsFlashcardOperations(t *testing.T) {
	s, _ := newTypedSession(t, threeWords(), KoreanToEnglish)
	assert.ErrorIs(t, s.Retreat(), ErrWrongStyle)
	assert.ErrorIs(t, s.MarkKnown(), ErrWrongStyle)
}

func TestSpeechUnavailableNoticeOnce(t *testing.T) {
	s := NewSession(Options{Style: Typed, Scheduler: &ManualScheduler{}, Speaker: Silent{}})
	require.NoError(t, s.Initialize(threeWords(), KoreanToEnglish, BatchAll))

	require.NoError(t, s.Reveal())
	assert.Equal(t, SpeechNotice, s.TakeNotice())
	assert.Empty(t, s.TakeNotice())

	require.NoError(t, s.Advance())
	require.NoError(t, s.Reveal())
	assert.Empty(t, s.TakeNotice())
}

func TestAnswerHiddenUntilEarned(t *testing.T) {
	s, _ := newTypedSession(t, threeWords(), KoreanToEnglish)
	v := s.View()
	assert.Empty(t, v.Card.Answer)
	assert.Equal(t, "고양이", v.Card.Prompt)
	assert.Equal(t, "c__ (3)", v.Card.Hint)
	assert.Equal(t, 3, v.Card.AnswerLength)
}
