package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"vocabdrill/internal/audio"
	"vocabdrill/internal/cache"
	"vocabdrill/internal/events"
	"vocabdrill/internal/metrics"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/study"
	"vocabdrill/internal/wordsource"
)

var (
	ErrNoSession     = errors.New("no study session in progress")
	ErrNotReady      = errors.New("study mode not selected yet")
	ErrAlreadyBegun  = errors.New("study session already begun")
	ErrInvalidSource = errors.New("invalid study source")
)

// StudyState is everything the learner's study screen needs
type StudyState struct {
	LearnerID    string              `json:"learnerId"`
	SourceKind   string              `json:"sourceKind"`
	SourceID     int64               `json:"sourceId"`
	Style        study.Style         `json:"style"`
	Step         study.SelectionStep `json:"step"`
	Direction    study.Direction     `json:"direction,omitempty"`
	WordCount    int                 `json:"wordCount"`
	BatchOptions []study.BatchOption `json:"batchOptions,omitempty"`
	Session      *study.View         `json:"session,omitempty"`
	Bookmarked   bool                `json:"bookmarked"`
	Bookmarks    []models.WordID     `json:"bookmarks"`
	Speech       *audio.Utterance    `json:"speech,omitempty"`
}

// StudyServiceConfig holds the collaborators of a StudyService
type StudyServiceConfig struct {
	Source           wordsource.Source
	StudyRepo        *repository.StudyRepository
	Snapshots        cache.SnapshotStore
	Publisher        events.Publisher
	Email            *EmailService
	NewSpeaker       func() study.Speaker
	Scheduler        study.Scheduler
	AutoAdvanceDelay time.Duration
}

// StudyService keeps one study session per learner
type StudyService struct {
	source     wordsource.Source
	studyRepo  *repository.StudyRepository
	snapshots  cache.SnapshotStore
	publisher  events.Publisher
	email      *EmailService
	newSpeaker func() study.Speaker
	scheduler  study.Scheduler
	delay      time.Duration
	now        func() time.Time

	mu       sync.Mutex
	learners map[string]*learnerState
}

// learnerState is one learner's study flow. mu guards the fields below it and
// is never held while calling into the session, whose advance callback
// takes it again.
type learnerState struct {
	learnerID string
	kind      string
	sourceID  int64
	words     []models.Word
	speaker   study.Speaker
	startedAt time.Time

	mu        sync.Mutex
	selector  *study.Selector
	session   *study.Session
	bookmarks map[models.WordID]bool
	finished  bool
}

// NewStudyService creates a new study service
func NewStudyService(cfg StudyServiceConfig) *StudyService {
	s := &StudyService{
		source:     cfg.Source,
		studyRepo:  cfg.StudyRepo,
		snapshots:  cfg.Snapshots,
		publisher:  cfg.Publisher,
		email:      cfg.Email,
		newSpeaker: cfg.NewSpeaker,
		scheduler:  cfg.Scheduler,
		delay:      cfg.AutoAdvanceDelay,
		now:        time.Now,
		learners:   make(map[string]*learnerState),
	}
	if s.publisher == nil {
		s.publisher = events.LogPublisher{}
	}
	if s.newSpeaker == nil {
		s.newSpeaker = func() study.Speaker { return study.Silent{} }
	}
	return s
}

// loadWords fetches and shuffles the words of a source
func (s *StudyService) loadWords(ctx context.Context, kind string, sourceID int64) ([]models.Word, error) {
	start := time.Now()
	words, err := wordsource.Load(ctx, s.source, kind, sourceID)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.WordSourceDuration.WithLabelValues(kind, outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return wordsource.Shuffle(words), nil
}

// Start loads a word source and opens the mode selector. Any previous
// session of the learner is closed.
func (s *StudyService) Start(ctx context.Context, learnerID, kind string, sourceID int64, style study.Style) (*StudyState, error) {
	if kind != models.SourceVocab && kind != models.SourceClassroom {
		return nil, ErrInvalidSource
	}
	if _, err := study.ParseStyle(string(style)); err != nil {
		return nil, err
	}

	words, err := s.loadWords(ctx, kind, sourceID)
	if err != nil {
		return nil, err
	}

	// the session being replaced has to write its bookmarks back first
	if old, err := s.lookup(learnerID); err == nil {
		if err := s.saveBookmarks(old); err != nil {
			log.Printf("Error saving bookmarks for learner %s: %v", learnerID, err)
		}
	}
	bookmarks, err := s.studyRepo.GetBookmarks(learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	st := &learnerState{
		learnerID: learnerID,
		kind:      kind,
		sourceID:  sourceID,
		words:     words,
		speaker:   s.newSpeaker(),
		startedAt: s.now(),
		selector:  study.NewSelector(style),
		bookmarks: idSet(bookmarks),
	}

	// loads for the same learner are not de-duplicated; the last one wins
	s.replace(learnerID, st)
	return s.state(st), nil
}

func (s *StudyService) replace(learnerID string, st *learnerState) {
	s.mu.Lock()
	old := s.learners[learnerID]
	s.learners[learnerID] = st
	s.mu.Unlock()

	if old != nil {
		s.discard(old)
	}
}

// discard closes a session that is being dropped and keeps its bookmarks
func (s *StudyService) discard(st *learnerState) {
	s.closeSession(st)
	if err := s.saveBookmarks(st); err != nil {
		log.Printf("Error saving bookmarks for learner %s: %v", st.learnerID, err)
	}
}

func (s *StudyService) closeSession(st *learnerState) {
	st.mu.Lock()
	session := st.session
	st.mu.Unlock()
	if session != nil {
		session.Close()
		metrics.ActiveSessions.Dec()
	}
}

func (s *StudyService) saveBookmarks(st *learnerState) error {
	st.mu.Lock()
	bookmarks := setIDs(st.bookmarks)
	st.mu.Unlock()
	return s.studyRepo.ReplaceBookmarks(st.learnerID, bookmarks)
}

func (s *StudyService) lookup(learnerID string) (*learnerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.learners[learnerID]
	if !ok {
		return nil, ErrNoSession
	}
	return st, nil
}

func (s *StudyService) activeSession(learnerID string) (*learnerState, *study.Session, error) {
	st, err := s.lookup(learnerID)
	if err != nil {
		return nil, nil, err
	}
	st.mu.Lock()
	session := st.session
	st.mu.Unlock()
	if session == nil {
		return nil, nil, ErrNotReady
	}
	return st, session, nil
}

// ChooseDirection records the direction. Flashcard sessions begin immediately.
func (s *StudyService) ChooseDirection(ctx context.Context, learnerID string, dir study.Direction) (*StudyState, error) {
	st, err := s.lookup(learnerID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	if st.session != nil {
		st.mu.Unlock()
		return nil, ErrAlreadyBegun
	}
	err = st.selector.ChooseDirection(dir)
	ready := st.selector.Ready()
	st.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if ready {
		if err := s.begin(ctx, st); err != nil {
			return nil, err
		}
	}
	return s.state(st), nil
}

// ChooseBatch records the batch size of a typed session and begins it
func (s *StudyService) ChooseBatch(ctx context.Context, learnerID string, size int) (*StudyState, error) {
	st, err := s.lookup(learnerID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	if st.session != nil {
		st.mu.Unlock()
		return nil, ErrAlreadyBegun
	}
	err = st.selector.ChooseBatch(size)
	st.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := s.begin(ctx, st); err != nil {
		return nil, err
	}
	return s.state(st), nil
}

func (s *StudyService) newSession(st *learnerState, style study.Style) *study.Session {
	return study.NewSession(study.Options{
		ID:               security.GenerateSessionID(),
		Style:            style,
		AutoAdvanceDelay: s.delay,
		Scheduler:        s.scheduler,
		Speaker:          st.speaker,
		OnAdvance: func(view study.View) {
			s.onAdvance(st, view)
		},
	})
}

func (s *StudyService) begin(ctx context.Context, st *learnerState) error {
	st.mu.Lock()
	sel := st.selector
	session := s.newSession(st, sel.Style())
	if err := session.Initialize(st.words, sel.Direction(), sel.BatchSize()); err != nil {
		st.mu.Unlock()
		return err
	}
	st.session = session
	st.mu.Unlock()

	metrics.SessionsStarted.WithLabelValues(string(sel.Style()), string(sel.Direction())).Inc()
	metrics.ActiveSessions.Inc()

	s.saveSnapshot(ctx, st)
	view := session.View()
	s.publish(ctx, st, events.StudyStarted, view)
	return nil
}

// onAdvance runs after every forward move, from a request or the auto-advance timer
func (s *StudyService) onAdvance(st *learnerState, view study.View) {
	if !s.isCurrent(st) {
		return
	}
	ctx := context.Background()
	if view.Completed {
		s.finish(ctx, st, view)
		return
	}
	s.saveSnapshot(ctx, st)
}

func (s *StudyService) isCurrent(st *learnerState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.learners[st.learnerID] == st
}

// finish records a completed session exactly once
func (s *StudyService) finish(ctx context.Context, st *learnerState, view study.View) {
	st.mu.Lock()
	if st.finished {
		st.mu.Unlock()
		return
	}
	st.finished = true
	st.mu.Unlock()

	summary := view.Summary
	if summary == nil {
		return
	}

	incorrect := view.IncorrectIDs
	if view.Style == study.Flashcard {
		incorrect = view.UnknownIDs
	}
	completedAt := s.now()
	result := &models.StudyResult{
		LearnerID:    st.learnerID,
		SessionID:    view.SessionID,
		SourceKind:   st.kind,
		SourceID:     st.sourceID,
		Style:        string(view.Style),
		Direction:    string(view.Direction),
		TotalWords:   summary.Total,
		CorrectWords: summary.Correct,
		IncorrectIDs: incorrect,
		StartedAt:    st.startedAt,
		CompletedAt:  &completedAt,
	}
	if err := s.studyRepo.SaveResult(result); err != nil {
		log.Printf("Error saving study result for learner %s: %v", st.learnerID, err)
	}
	if err := s.saveBookmarks(st); err != nil {
		log.Printf("Error saving bookmarks for learner %s: %v", st.learnerID, err)
	}
	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, st.learnerID); err != nil {
			log.Printf("Error deleting snapshot for learner %s: %v", st.learnerID, err)
		}
	}

	metrics.SessionsCompleted.WithLabelValues(string(view.Style)).Inc()
	s.publish(ctx, st, events.StudyCompleted, view)
	s.sendReport(ctx, st, result)
}

func (s *StudyService) sendReport(ctx context.Context, st *learnerState, result *models.StudyResult) {
	if s.email == nil || !s.email.IsEnabled() || st.kind != models.SourceClassroom {
		return
	}
	classroom, err := s.source.Classroom(ctx, st.sourceID)
	if err != nil || classroom == nil || classroom.OwnerEmail == "" {
		return
	}

	byID := make(map[models.WordID]models.Word, len(st.words))
	for _, w := range st.words {
		byID[w.ID] = w
	}
	missed := make([]models.Word, 0, len(result.IncorrectIDs))
	for _, id := range result.IncorrectIDs {
		if w, ok := byID[id]; ok {
			missed = append(missed, w)
		}
	}

	if err := s.email.SendStudyReport(ctx, classroom.OwnerEmail, classroom.Name, result, missed); err != nil {
		log.Printf("Error sending study report for classroom %d: %v", classroom.ID, err)
	}
}

func (s *StudyService) publish(ctx context.Context, st *learnerState, eventType string, view study.View) {
	event := events.StudyEvent{
		Type:       eventType,
		LearnerID:  st.learnerID,
		SessionID:  view.SessionID,
		SourceKind: st.kind,
		SourceID:   st.sourceID,
		Style:      string(view.Style),
		Direction:  string(view.Direction),
		TotalWords: view.Total,
		Timestamp:  s.now().UTC(),
	}
	if view.Summary != nil {
		event.CorrectWords = view.Summary.Correct
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("Error publishing %s event: %v", eventType, err)
	}
}

func (s *StudyService) saveSnapshot(ctx context.Context, st *learnerState) {
	if s.snapshots == nil {
		return
	}
	st.mu.Lock()
	session := st.session
	bookmarks := setIDs(st.bookmarks)
	st.mu.Unlock()
	if session == nil {
		return
	}

	view := session.View()
	if view.Completed || view.Closed {
		return
	}
	words := session.Words()
	order := make([]models.WordID, len(words))
	for i, w := range words {
		order[i] = w.ID
	}

	snap := &models.StudySnapshot{
		LearnerID:    st.learnerID,
		SessionID:    view.SessionID,
		SourceKind:   st.kind,
		SourceID:     st.sourceID,
		Style:        string(view.Style),
		Direction:    string(view.Direction),
		BatchSize:    view.BatchSize,
		WordOrder:    order,
		CurrentIndex: view.Index,
		IncorrectIDs: view.IncorrectIDs,
		KnownIDs:     view.KnownIDs,
		UnknownIDs:   view.UnknownIDs,
		Bookmarks:    bookmarks,
		StartedAt:    st.startedAt,
		UpdatedAt:    s.now(),
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		log.Printf("Error saving snapshot for learner %s: %v", st.learnerID, err)
	}
}

// State returns the learner's study state. A learner with no session in
// memory gets it restored from a snapshot when one exists.
func (s *StudyService) State(ctx context.Context, learnerID string) (*StudyState, error) {
	st, err := s.lookup(learnerID)
	if errors.Is(err, ErrNoSession) {
		st, err = s.restore(ctx, learnerID)
	}
	if err != nil {
		return nil, err
	}
	return s.state(st), nil
}

func (s *StudyService) restore(ctx context.Context, learnerID string) (*learnerState, error) {
	if s.snapshots == nil {
		return nil, ErrNoSession
	}
	snap, err := s.snapshots.Load(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNoSession
	}

	style, err := study.ParseStyle(snap.Style)
	if err != nil {
		return nil, err
	}
	dir, err := study.ParseDirection(snap.Direction)
	if err != nil {
		return nil, err
	}
	words, err := wordsource.Load(ctx, s.source, snap.SourceKind, snap.SourceID)
	if err != nil {
		return nil, err
	}

	st := &learnerState{
		learnerID: learnerID,
		kind:      snap.SourceKind,
		sourceID:  snap.SourceID,
		words:     wordsource.ReorderByIDs(words, snap.WordOrder),
		speaker:   s.newSpeaker(),
		startedAt: snap.StartedAt,
		selector:  study.NewSelector(style),
		bookmarks: idSet(snap.Bookmarks),
	}
	if err := st.selector.ChooseDirection(dir); err != nil {
		return nil, err
	}
	if !st.selector.Ready() {
		if err := st.selector.ChooseBatch(snap.BatchSize); err != nil {
			return nil, err
		}
	}

	session := s.newSession(st, style)
	if err := session.Initialize(st.words, dir, snap.BatchSize); err != nil {
		return nil, err
	}
	session.Restore(snap.CurrentIndex, snap.IncorrectIDs, snap.KnownIDs, snap.UnknownIDs)
	st.session = session
	metrics.ActiveSessions.Inc()

	s.mu.Lock()
	if existing, ok := s.learners[learnerID]; ok {
		// a Start raced us; keep it
		s.mu.Unlock()
		session.Close()
		metrics.ActiveSessions.Dec()
		return existing, nil
	}
	s.learners[learnerID] = st
	s.mu.Unlock()

	log.Printf("Restored study session %s for learner %s at word %d", snap.SessionID, learnerID, snap.CurrentIndex)
	return st, nil
}

func (s *StudyService) state(st *learnerState) *StudyState {
	st.mu.Lock()
	state := &StudyState{
		LearnerID:  st.learnerID,
		SourceKind: st.kind,
		SourceID:   st.sourceID,
		Style:      st.selector.Style(),
		Step:       st.selector.Step(),
		Direction:  st.selector.Direction(),
		WordCount:  len(st.words),
		Bookmarks:  setIDs(st.bookmarks),
	}
	if state.Step == study.StepBatch {
		state.BatchOptions = study.BatchOptions(len(st.words))
	}
	session := st.session
	bookmarks := st.bookmarks
	st.mu.Unlock()

	if session != nil {
		view := session.View()
		view.Notice = session.TakeNotice()
		state.Session = &view
		if view.Card != nil {
			st.mu.Lock()
			state.Bookmarked = bookmarks[view.Card.WordID]
			st.mu.Unlock()
		}
	}
	if voice, ok := st.speaker.(*audio.Voice); ok {
		state.Speech = voice.Current()
	}
	return state
}

// do runs op on the learner's session and returns the new state
func (s *StudyService) do(learnerID string, op func(*study.Session) error) (*StudyState, error) {
	st, session, err := s.activeSession(learnerID)
	if err != nil {
		return nil, err
	}
	if err := op(session); err != nil {
		return nil, err
	}
	return s.state(st), nil
}

// SetInput writes one character cell
func (s *StudyService) SetInput(learnerID string, pos int, value string) (*StudyState, error) {
	return s.do(learnerID, func(session *study.Session) error {
		_, err := session.SetInput(pos, value)
		return err
	})
}

// Backspace clears a cell, stepping back when it was already empty
func (s *StudyService) Backspace(learnerID string, pos int) (*StudyState, error) {
	return s.do(learnerID, func(session *study.Session) error {
		_, err := session.Backspace(pos)
		return err
	})
}

// SetInputs replaces the whole input buffer
func (s *StudyService) SetInputs(learnerID string, inputs []string) (*StudyState, error) {
	return s.do(learnerID, func(session *study.Session) error {
		return session.SetInputs(inputs)
	})
}

// Check judges the current answer
func (s *StudyService) Check(learnerID string) (*StudyState, error) {
	return s.do(learnerID, func(session *study.Session) error {
		verdict, err := session.Check()
		if err != nil {
			return err
		}
		metrics.AnswersChecked.WithLabelValues(string(verdict)).Inc()
		return nil
	})
}

func (s *StudyService) Reveal(learnerID string) (*StudyState, error) {
	return s.do(learnerID, (*study.Session).Reveal)
}

func (s *StudyService) Advance(learnerID string) (*StudyState, error) {
	return s.do(learnerID, (*study.Session).Advance)
}

func (s *StudyService) Retreat(learnerID string) (*StudyState, error) {
	return s.do(learnerID, (*study.Session).Retreat)
}

func (s *StudyService) MarkKnown(learnerID string) (*StudyState, error) {
	return s.do(learnerID, (*study.Session).MarkKnown)
}

func (s *StudyService) MarkUnknown(learnerID string) (*StudyState, error) {
	return s.do(learnerID, (*study.Session).MarkUnknown)
}

func (s *StudyService) Pronounce(learnerID string) (*StudyState, error) {
	return s.do(learnerID, (*study.Session).Pronounce)
}

// ToggleDirection flips the direction and starts over on the same words
func (s *StudyService) ToggleDirection(ctx context.Context, learnerID string) (*StudyState, error) {
	st, session, err := s.activeSession(learnerID)
	if err != nil {
		return nil, err
	}
	if err := session.ToggleDirection(); err != nil {
		return nil, err
	}

	// a completed session starts over and is recorded again when it finishes
	st.mu.Lock()
	st.finished = false
	st.startedAt = s.now()
	st.mu.Unlock()

	s.saveSnapshot(ctx, st)
	return s.state(st), nil
}

// Reset re-fetches and reshuffles the words and starts the session over
func (s *StudyService) Reset(ctx context.Context, learnerID string) (*StudyState, error) {
	st, session, err := s.activeSession(learnerID)
	if err != nil {
		return nil, err
	}
	words, err := s.loadWords(ctx, st.kind, st.sourceID)
	if err != nil {
		return nil, err
	}
	if err := session.Reset(words); err != nil {
		return nil, err
	}

	st.mu.Lock()
	st.words = words
	st.finished = false
	st.startedAt = s.now()
	st.mu.Unlock()

	s.saveSnapshot(ctx, st)
	return s.state(st), nil
}

// ToggleBookmark adds or removes the current word from the learner's bookmarks
func (s *StudyService) ToggleBookmark(ctx context.Context, learnerID string) (*StudyState, error) {
	st, session, err := s.activeSession(learnerID)
	if err != nil {
		return nil, err
	}
	view := session.View()
	if view.Card == nil {
		return nil, study.ErrEmptySession
	}

	st.mu.Lock()
	id := view.Card.WordID
	if st.bookmarks[id] {
		delete(st.bookmarks, id)
	} else {
		st.bookmarks[id] = true
	}
	st.mu.Unlock()

	s.saveSnapshot(ctx, st)
	return s.state(st), nil
}

// End tears the learner's session down, saving bookmarks
func (s *StudyService) End(ctx context.Context, learnerID string) error {
	s.mu.Lock()
	st, ok := s.learners[learnerID]
	delete(s.learners, learnerID)
	s.mu.Unlock()
	if !ok {
		return ErrNoSession
	}

	s.closeSession(st)
	if err := s.saveBookmarks(st); err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}
	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, learnerID); err != nil {
			log.Printf("Error deleting snapshot for learner %s: %v", learnerID, err)
		}
	}
	return nil
}

// History returns the learner's most recent completed sessions
func (s *StudyService) History(learnerID string, limit int) ([]models.StudyResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	results, err := s.studyRepo.GetLearnerResults(learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get study history: %w", err)
	}
	return results, nil
}

// Shutdown closes every session, saving bookmarks and leaving snapshots in place
func (s *StudyService) Shutdown() {
	s.mu.Lock()
	learners := s.learners
	s.learners = make(map[string]*learnerState)
	s.mu.Unlock()

	for _, st := range learners {
		s.discard(st)
	}
}

func idSet(ids []models.WordID) map[models.WordID]bool {
	set := make(map[models.WordID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func setIDs(set map[models.WordID]bool) []models.WordID {
	ids := make([]models.WordID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
