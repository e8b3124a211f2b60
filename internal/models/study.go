package models

import "time"

// Source kinds a study session can be loaded from
const (
	SourceVocab     = "vocab"
	SourceClassroom = "classroom"
)

// StudyResult is the persisted outcome of a completed study session
type StudyResult struct {
	ID           int64      `json:"id"`
	LearnerID    string     `json:"learnerId"`
	SessionID    string     `json:"sessionId"`
	SourceKind   string     `json:"sourceKind"`
	SourceID     int64      `json:"sourceId"`
	Style        string     `json:"style"`
	Direction    string     `json:"direction"`
	TotalWords   int        `json:"totalWords"`
	CorrectWords int        `json:"correctWords"`
	IncorrectIDs []WordID   `json:"incorrectIds"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Accuracy returns the percentage of correct words, 0 for an empty session
func (r *StudyResult) Accuracy() float64 {
	if r.TotalWords == 0 {
		return 0
	}
	return float64(r.CorrectWords) / float64(r.TotalWords) * 100
}

// Bookmark marks a word a learner wants to revisit
type Bookmark struct {
	LearnerID string    `json:"learnerId"`
	WordID    WordID    `json:"wordId"`
	CreatedAt time.Time `json:"createdAt"`
}

// StudySnapshot is the resumable state of an active session, stored at
// session boundaries (start, advance, end).
type StudySnapshot struct {
	LearnerID    string    `json:"learnerId"`
	SessionID    string    `json:"sessionId"`
	SourceKind   string    `json:"sourceKind"`
	SourceID     int64     `json:"sourceId"`
	Style        string    `json:"style"`
	Direction    string    `json:"direction"`
	BatchSize    int       `json:"batchSize"`
	WordOrder    []WordID  `json:"wordOrder"`
	CurrentIndex int       `json:"currentIndex"`
	IncorrectIDs []WordID  `json:"incorrectIds"`
	KnownIDs     []WordID  `json:"knownIds"`
	UnknownIDs   []WordID  `json:"unknownIds"`
	Bookmarks    []WordID  `json:"bookmarks"`
	StartedAt    time.Time `json:"startedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
