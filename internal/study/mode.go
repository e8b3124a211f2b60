package study

// Direction decides which side of a word is the prompt and which is the answer
type Direction string

const (
	EnglishToKorean Direction = "englishToKorean"
	KoreanToEnglish Direction = "koreanToEnglish"
)

// Language tags used for speech
const (
	LangKorean  = "ko-KR"
	LangEnglish = "en-US"
)

// ParseDirection validates a direction value
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case EnglishToKorean, KoreanToEnglish:
		return Direction(s), nil
	}
	return "", ErrInvalidDirection
}

// Toggle returns the opposite direction
func (d Direction) Toggle() Direction {
	if d == EnglishToKorean {
		return KoreanToEnglish
	}
	return EnglishToKorean
}

// AnswerLang is the language tag of the expected answer
func (d Direction) AnswerLang() string {
	if d == EnglishToKorean {
		return LangKorean
	}
	return LangEnglish
}

// PromptLang is the language tag of the prompt
func (d Direction) PromptLang() string {
	if d == EnglishToKorean {
		return LangEnglish
	}
	return LangKorean
}

// Style is the interaction style of a session
type Style string

const (
	// Flashcard reveals the answer and lets the learner mark it known or unknown
	Flashcard Style = "flashcard"
	// Typed asks the learner to type the answer character by character
	Typed Style = "typed"
)

// ParseStyle validates a style value
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case Flashcard, Typed:
		return Style(s), nil
	}
	return "", ErrInvalidStyle
}

// SelectionStep is where a Selector is in the mode-selection gate
type SelectionStep string

const (
	StepDirection SelectionStep = "direction"
	StepBatch     SelectionStep = "batch"
	StepReady     SelectionStep = "ready"
)

// Selector is the ordered gate a learner passes before a session starts:
// direction first, then (typed style only) the batch size.
type Selector struct {
	style     Style
	direction Direction
	batchSize int
	step      SelectionStep
}

// NewSelector creates a selector waiting for a direction
func NewSelector(style Style) *Selector {
	return &Selector{style: style, step: StepDirection}
}

// Step returns the current selection step
func (s *Selector) Step() SelectionStep { return s.step }

// Style returns the study style being selected for
func (s *Selector) Style() Style { return s.style }

// Direction returns the chosen direction, empty until chosen
func (s *Selector) Direction() Direction { return s.direction }

// BatchSize returns the chosen batch size; BatchAll means the full list
func (s *Selector) BatchSize() int { return s.batchSize }

// Ready reports whether the session can begin
func (s *Selector) Ready() bool { return s.step == StepReady }

// ChooseDirection records the direction. Flashcards skip batch selection.
func (s *Selector) ChooseDirection(d Direction) error {
	if s.step != StepDirection {
		return ErrSelectionOrder
	}
	if _, err := ParseDirection(string(d)); err != nil {
		return err
	}
	s.direction = d
	if s.style == Flashcard {
		s.batchSize = BatchAll
		s.step = StepReady
		return nil
	}
	s.step = StepBatch
	return nil
}

// ChooseBatch records the batch size for a typed session
func (s *Selector) ChooseBatch(size int) error {
	if s.step != StepBatch {
		return ErrSelectionOrder
	}
	if size < 0 {
		return ErrInvalidBatchSize
	}
	s.batchSize = size
	s.step = StepReady
	return nil
}
