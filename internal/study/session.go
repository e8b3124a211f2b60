package study

import (
	"errors"
	"sync"
	"time"

	"vocabdrill/internal/models"
)

// Verdict is the result of checking the current word
type Verdict string

const (
	VerdictUnknown   Verdict = "unknown"
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// SpeechNotice is shown once when no speech engine is available
const SpeechNotice = "Speech playback is not available, words will not be read aloud."

// Options configures a Session
type Options struct {
	ID               string
	Style            Style
	AutoAdvanceDelay time.Duration
	Scheduler        Scheduler
	Speaker          Speaker
	// OnAdvance is called outside the session lock after every forward move,
	// including the one made by the auto-advance timer.
	OnAdvance func(View)
}

// Session is the state of one learner working through a word list.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id        string
	style     Style
	direction Direction
	batchSize int

	words     []models.Word
	index     int
	inputs    []string
	verdict   Verdict
	revealed  bool
	completed bool
	closed    bool

	incorrect []models.WordID
	known     map[models.WordID]bool
	unknown   map[models.WordID]bool

	delay     time.Duration
	scheduler Scheduler
	speaker   Speaker
	timer     Timer
	// generation is bumped whenever a pending auto-advance must not run
	generation uint64

	speechDisabled bool
	notice         string

	onAdvance func(View)
}

// NewSession creates an uninitialized session
func NewSession(opts Options) *Session {
	s := &Session{
		id:        opts.ID,
		style:     opts.Style,
		direction: KoreanToEnglish,
		delay:     opts.AutoAdvanceDelay,
		scheduler: opts.Scheduler,
		speaker:   opts.Speaker,
		onAdvance: opts.OnAdvance,
		verdict:   VerdictUnknown,
		known:     make(map[models.WordID]bool),
		unknown:   make(map[models.WordID]bool),
	}
	if s.style == "" {
		s.style = Typed
	}
	if s.delay <= 0 {
		s.delay = DefaultAutoAdvanceDelay
	}
	if s.scheduler == nil {
		s.scheduler = RealScheduler{}
	}
	if s.speaker == nil {
		s.speaker = Silent{}
	}
	return s
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Style returns the study style
func (s *Session) Style() Style { return s.style }

// Initialize starts over with words, truncated to batchSize, in direction dir.
// An empty list is allowed and gives a session with nothing to study.
func (s *Session) Initialize(words []models.Word, dir Direction, batchSize int) error {
	if _, err := ParseDirection(string(dir)); err != nil {
		return err
	}
	if batchSize < 0 {
		return ErrInvalidBatchSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	working := Partition(words, batchSize)
	s.words = append([]models.Word(nil), working...)
	s.direction = dir
	s.batchSize = batchSize
	s.resetLocked()
	return nil
}

// Reset re-initializes with a freshly loaded word list, keeping direction and batch size
func (s *Session) Reset(words []models.Word) error {
	s.mu.Lock()
	dir, size := s.direction, s.batchSize
	s.mu.Unlock()
	return s.Initialize(words, dir, size)
}

// ToggleDirection flips the direction and starts over on the same words
func (s *Session) ToggleDirection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.direction = s.direction.Toggle()
	s.resetLocked()
	return nil
}

func (s *Session) resetLocked() {
	s.cancelTimerLocked()
	s.speaker.Cancel()
	s.index = 0
	s.verdict = VerdictUnknown
	s.revealed = false
	s.completed = false
	s.incorrect = nil
	s.known = make(map[models.WordID]bool)
	s.unknown = make(map[models.WordID]bool)
	s.deriveInputsLocked()
}

func (s *Session) deriveInputsLocked() {
	if len(s.words) == 0 {
		s.inputs = nil
		return
	}
	s.inputs = DeriveInputs(s.targetLocked())
}

func (s *Session) targetLocked() string {
	return Target(s.words[s.index], s.direction)
}

func (s *Session) cancelTimerLocked() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// editableLocked checks that the current word can still be changed
func (s *Session) editableLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.completed {
		return ErrCompleted
	}
	if len(s.words) == 0 {
		return ErrEmptySession
	}
	return nil
}

// Advance moves to the next word, recording the current one as incorrect
// if it was last checked wrong. Past the last word the session completes.
func (s *Session) Advance() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.completed {
		s.mu.Unlock()
		return ErrCompleted
	}
	s.cancelTimerLocked()
	s.advanceLocked()
	view := s.viewLocked()
	s.mu.Unlock()

	s.notifyAdvance(view)
	return nil
}

func (s *Session) advanceLocked() {
	if len(s.words) > 0 && s.verdict == VerdictIncorrect {
		id := s.words[s.index].ID
		if !containsID(s.incorrect, id) {
			s.incorrect = append(s.incorrect, id)
		}
	}

	if s.index < len(s.words)-1 {
		s.index++
		s.verdict = VerdictUnknown
		s.revealed = false
		s.speaker.Cancel()
		s.deriveInputsLocked()
		return
	}
	s.speaker.Cancel()
	s.completed = true
}

func (s *Session) notifyAdvance(view View) {
	if s.onAdvance != nil {
		s.onAdvance(view)
	}
}

// Retreat goes back one card. Flashcards only.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.style != Flashcard {
		return ErrWrongStyle
	}
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.cancelTimerLocked()
	if s.index > 0 {
		s.index--
		s.verdict = VerdictUnknown
		s.revealed = false
		s.speaker.Cancel()
		s.deriveInputsLocked()
	}
	return nil
}

// MarkKnown records the current card as known and advances. Flashcards only.
func (s *Session) MarkKnown() error {
	return s.mark(true)
}

// MarkUnknown records the current card as not known and advances. Flashcards only.
func (s *Session) MarkUnknown() error {
	return s.mark(false)
}

func (s *Session) mark(known bool) error {
	s.mu.Lock()
	if s.style != Flashcard {
		s.mu.Unlock()
		return ErrWrongStyle
	}
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cancelTimerLocked()

	id := s.words[s.index].ID
	if known {
		s.known[id] = true
		delete(s.unknown, id)
	} else {
		s.unknown[id] = true
		delete(s.known, id)
	}
	s.advanceLocked()
	view := s.viewLocked()
	s.mu.Unlock()

	s.notifyAdvance(view)
	return nil
}

// SetInput stores one character at pos and returns the position that should
// receive focus next.
func (s *Session) SetInput(pos int, value string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.typingLocked(); err != nil {
		return pos, err
	}
	target := s.targetLocked()
	if err := s.checkBufferLocked(target); err != nil {
		return pos, err
	}
	if pos < 0 || pos >= len(s.inputs) || isSpaceAt(target, pos) {
		return pos, ErrInputPosition
	}

	s.clearCorrectLocked()
	s.inputs[pos] = firstRune(value)
	if s.inputs[pos] == "" {
		return pos, nil
	}
	return NextFocus(target, pos, s.direction), nil
}

// Backspace clears the cell at pos, or when it is already empty moves focus
// to the previous typed position. It returns the position to focus.
func (s *Session) Backspace(pos int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.typingLocked(); err != nil {
		return pos, err
	}
	target := s.targetLocked()
	if err := s.checkBufferLocked(target); err != nil {
		return pos, err
	}
	if pos < 0 || pos >= len(s.inputs) {
		return pos, ErrInputPosition
	}

	if s.inputs[pos] != "" && !isSpaceAt(target, pos) {
		s.clearCorrectLocked()
		s.inputs[pos] = ""
		return pos, nil
	}
	return PrevFocus(target, pos), nil
}

// SetInputs replaces the whole buffer. A buffer whose length does not match
// the answer is discarded and replaced with an empty one.
func (s *Session) SetInputs(inputs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.typingLocked(); err != nil {
		return err
	}
	target := s.targetLocked()
	runes := []rune(target)
	if len(inputs) != len(runes) {
		s.inputs = DeriveInputs(target)
		return ErrInputLength
	}

	s.clearCorrectLocked()
	buf := make([]string, len(runes))
	for i, r := range runes {
		if r == ' ' {
			buf[i] = " "
			continue
		}
		buf[i] = firstRune(inputs[i])
	}
	s.inputs = buf
	return nil
}

func (s *Session) typingLocked() error {
	if s.style != Typed {
		return ErrWrongStyle
	}
	if err := s.editableLocked(); err != nil {
		return err
	}
	if s.revealed {
		return ErrRevealed
	}
	return nil
}

func (s *Session) checkBufferLocked(target string) error {
	if len(s.inputs) != len([]rune(target)) {
		s.inputs = DeriveInputs(target)
		return ErrInputLength
	}
	return nil
}

// clearCorrectLocked drops a correct verdict once the answer is edited again
func (s *Session) clearCorrectLocked() {
	if s.verdict == VerdictCorrect {
		s.cancelTimerLocked()
		s.verdict = VerdictUnknown
	}
}

// Check judges the current buffer. A correct answer schedules an automatic
// advance after the configured delay.
func (s *Session) Check() (Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.typingLocked(); err != nil {
		return s.verdict, err
	}
	target := s.targetLocked()
	if err := s.checkBufferLocked(target); err != nil {
		return s.verdict, err
	}

	s.cancelTimerLocked()
	if !CheckAnswer(s.inputs, target, s.direction) {
		s.verdict = VerdictIncorrect
		return s.verdict, nil
	}

	s.verdict = VerdictCorrect
	s.speakLocked(target, s.direction.AnswerLang())

	generation := s.generation
	s.timer = s.scheduler.AfterFunc(s.delay, func() {
		s.autoAdvance(generation)
	})
	return s.verdict, nil
}

func (s *Session) autoAdvance(generation uint64) {
	s.mu.Lock()
	if s.closed || s.completed || generation != s.generation {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.advanceLocked()
	view := s.viewLocked()
	s.mu.Unlock()

	s.notifyAdvance(view)
}

// Reveal shows the answer and reads it aloud. After a reveal only a forward
// move is possible.
func (s *Session) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if s.revealed {
		return ErrRevealed
	}
	s.cancelTimerLocked()
	s.revealed = true
	// giving up on a typed word counts against it
	if s.style == Typed && s.verdict != VerdictCorrect {
		s.verdict = VerdictIncorrect
	}
	s.speakLocked(s.targetLocked(), s.direction.AnswerLang())
	return nil
}

// Pronounce reads the current prompt aloud
func (s *Session) Pronounce() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.speakLocked(Prompt(s.words[s.index], s.direction), s.direction.PromptLang())
	return nil
}

// speakLocked is fire-and-forget. A missing speech engine leaves a notice
// the first time and is not retried.
func (s *Session) speakLocked(text, lang string) {
	if s.speechDisabled || text == "" {
		return
	}
	s.speaker.Cancel()
	if err := s.speaker.Speak(text, lang); err != nil && errors.Is(err, ErrSpeechUnavailable) {
		s.speechDisabled = true
		s.notice = SpeechNotice
	}
}

// TakeNotice returns the pending notice, if any, and clears it
func (s *Session) TakeNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notice
	s.notice = ""
	return n
}

// Close tears the session down. Pending auto-advances and speech are cancelled.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cancelTimerLocked()
	s.speaker.Cancel()
	s.closed = true
}

// Closed reports whether Close was called
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Words returns the working word list
func (s *Session) Words() []models.Word {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Word(nil), s.words...)
}

// Restore moves an initialized session to index and reapplies results saved
// in a snapshot.
func (s *Session) Restore(index int, incorrect, known, unknown []models.WordID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.words) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.words) {
		index = len(s.words) - 1
	}
	s.index = index
	for _, id := range incorrect {
		if !containsID(s.incorrect, id) {
			s.incorrect = append(s.incorrect, id)
		}
	}
	for _, id := range known {
		s.known[id] = true
	}
	for _, id := range unknown {
		s.unknown[id] = true
	}
	s.deriveInputsLocked()
}

func containsID(ids []models.WordID, id models.WordID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func isSpaceAt(target string, pos int) bool {
	runes := []rune(target)
	return pos >= 0 && pos < len(runes) && runes[pos] == ' '
}
