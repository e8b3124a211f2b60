package study

import (
	"sort"

	"vocabdrill/internal/models"
)

// View is a read-only copy of a session's state, ready to render
type View struct {
	SessionID  string    `json:"sessionId"`
	Style      Style     `json:"style"`
	Direction  Direction `json:"direction"`
	BatchSize  int       `json:"batchSize"`
	Total      int       `json:"total"`
	Index      int       `json:"index"`
	Progress   int       `json:"progress"`
	Empty      bool      `json:"empty"`
	Completed  bool      `json:"completed"`
	Closed     bool      `json:"closed"`
	Verdict    Verdict   `json:"verdict"`
	Revealed   bool      `json:"revealed"`
	Inputs     []string  `json:"inputs,omitempty"`
	PromptLang string    `json:"promptLang"`
	AnswerLang string    `json:"answerLang"`

	Card *Card `json:"card,omitempty"`

	AutoAdvancePending bool            `json:"autoAdvancePending"`
	IncorrectIDs       []models.WordID `json:"incorrectIds"`
	KnownIDs           []models.WordID `json:"knownIds,omitempty"`
	UnknownIDs         []models.WordID `json:"unknownIds,omitempty"`

	Summary *Summary `json:"summary,omitempty"`
	Notice  string   `json:"notice,omitempty"`
}

// Card is the current word as the learner sees it. Answer stays empty until
// it is revealed or answered correctly.
type Card struct {
	WordID        models.WordID     `json:"wordId"`
	Prompt        string            `json:"prompt"`
	Answer        string            `json:"answer,omitempty"`
	AnswerLength  int               `json:"answerLength"`
	Hint          string            `json:"hint"`
	Example       string            `json:"example,omitempty"`
	Pronunciation string            `json:"pronunciation,omitempty"`
	Difficulty    models.Difficulty `json:"difficulty"`
}

// View returns a snapshot of the session
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		SessionID:          s.id,
		Style:              s.style,
		Direction:          s.direction,
		BatchSize:          s.batchSize,
		Total:              len(s.words),
		Index:              s.index,
		Progress:           ProgressPercent(s.index, len(s.words)),
		Empty:              len(s.words) == 0,
		Completed:          s.completed,
		Closed:             s.closed,
		Verdict:            s.verdict,
		Revealed:           s.revealed,
		Inputs:             append([]string(nil), s.inputs...),
		PromptLang:         s.direction.PromptLang(),
		AnswerLang:         s.direction.AnswerLang(),
		AutoAdvancePending: s.timer != nil,
		IncorrectIDs:       append([]models.WordID{}, s.incorrect...),
		KnownIDs:           sortedIDs(s.known),
		UnknownIDs:         sortedIDs(s.unknown),
	}

	if len(s.words) > 0 {
		w := s.words[s.index]
		target := Target(w, s.direction)
		card := &Card{
			WordID:        w.ID,
			Prompt:        Prompt(w, s.direction),
			AnswerLength:  len([]rune(target)),
			Hint:          Hint(w, s.direction),
			Example:       w.Example,
			Pronunciation: w.Pronunciation,
			Difficulty:    w.Difficulty,
		}
		if s.revealed || s.verdict == VerdictCorrect || s.completed {
			card.Answer = target
		}
		v.Card = card
	}

	if s.completed {
		summary := s.summaryLocked()
		v.Summary = &summary
	}
	return v
}

// Summary returns the tally for the session so far
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Session) summaryLocked() Summary {
	if s.style == Flashcard {
		return FlashcardSummary(len(s.words), len(s.known), len(s.unknown))
	}
	return TypedSummary(len(s.words), len(s.incorrect))
}

func sortedIDs(set map[models.WordID]bool) []models.WordID {
	if len(set) == 0 {
		return nil
	}
	ids := make([]models.WordID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
