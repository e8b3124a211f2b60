package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// WordID identifies a word. The word source is not consistent about whether
// ids are numbers or strings, so both decode into the same value.
type WordID string

// WordIDFromInt converts a database id into a WordID
func WordIDFromInt(id int64) WordID {
	return WordID(strconv.FormatInt(id, 10))
}

// Int64 parses the id as a database id
func (id WordID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// UnmarshalJSON accepts 12, "12" and null
func (id *WordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = WordID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = WordID(n.String())
	return nil
}

// Difficulty is the difficulty rating of a word
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ParseDifficulty normalizes a difficulty value, defaulting to MEDIUM
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToUpper(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Valid reports whether d is one of the known difficulties
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// UnmarshalJSON decodes unknown or missing values as MEDIUM
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// numbers, objects and the like are malformed; fall back to the default
		*d = DifficultyMedium
		return nil
	}
	*d = ParseDifficulty(s)
	return nil
}

// Word represents a vocabulary entry
type Word struct {
	ID            WordID     `json:"id"`
	VocabID       int64      `json:"vocabId,omitempty"`
	English       string     `json:"english"`
	Korean        string     `json:"korean"`
	Example       string     `json:"example"`
	Pronunciation string     `json:"pronunciation"`
	Difficulty    Difficulty `json:"difficulty"`
	Position      int        `json:"position,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
}

// Normalize fills in safe placeholder values for missing fields
func (w *Word) Normalize() {
	w.English = strings.TrimSpace(w.English)
	w.Korean = strings.TrimSpace(w.Korean)
	w.Example = strings.TrimSpace(w.Example)
	w.Pronunciation = strings.TrimSpace(w.Pronunciation)
	if !w.Difficulty.Valid() {
		w.Difficulty = DifficultyMedium
	}
}

// WordPage is one page of a vocabulary's words
type WordPage struct {
	Words      []Word `json:"words"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalWords int    `json:"totalWords"`
	TotalPages int    `json:"totalPages"`
}
