package models

import "time"

// Vocab is a named vocabulary: an ordered list of words
type Vocab struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	WordCount   int       `json:"wordCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VocabWithWords combines a vocabulary with its words
type VocabWithWords struct {
	Vocab Vocab  `json:"vocab"`
	Words []Word `json:"words"`
}

// Classroom groups vocabularies into an exam-ordered study set
type Classroom struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	OwnerEmail  string    `json:"ownerEmail,omitempty"`
	VocabIDs    []int64   `json:"vocabIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ClassroomWithWords is a classroom and its words in exam order
type ClassroomWithWords struct {
	Classroom Classroom `json:"classroom"`
	Vocabs    []Vocab   `json:"vocabs"`
	Words     []Word    `json:"words"`
}
