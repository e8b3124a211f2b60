package wordsource

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"vocabdrill/internal/models"
)

// flexString decodes strings, numbers and null. Anything else becomes "".
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = flexString(v)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*s = flexString(data)
	default:
		*s = ""
	}
	return nil
}

// flexInt decodes numbers and numeric strings. Anything else becomes 0.
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(bytes.Trim(bytes.TrimSpace(data), `"`), &num); err != nil {
		*n = 0
		return nil
	}
	v, err := num.Int64()
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(v)
	return nil
}

// flexTime decodes RFC 3339 timestamps and leaves anything else as the zero time
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var parsed time.Time
	if err := json.Unmarshal(data, &parsed); err != nil {
		*t = flexTime(time.Time{})
		return nil
	}
	*t = flexTime(parsed)
	return nil
}

type wireWord struct {
	ID            flexString `json:"id"`
	VocabID       flexInt    `json:"vocabId"`
	English       flexString `json:"english"`
	Korean        flexString `json:"korean"`
	Example       flexString `json:"example"`
	Pronunciation flexString `json:"pronunciation"`
	Difficulty    flexString `json:"difficulty"`
	Position      flexInt    `json:"position"`
}

func (w wireWord) toModel() models.Word {
	word := models.Word{
		ID:            models.WordID(strings.TrimSpace(string(w.ID))),
		VocabID:       int64(w.VocabID),
		English:       string(w.English),
		Korean:        string(w.Korean),
		Example:       string(w.Example),
		Pronunciation: string(w.Pronunciation),
		Difficulty:    models.ParseDifficulty(string(w.Difficulty)),
		Position:      int(w.Position),
	}
	word.Normalize()
	return word
}

func wordsFromWire(in []wireWord) []models.Word {
	words := make([]models.Word, 0, len(in))
	for _, w := range in {
		words = append(words, w.toModel())
	}
	return words
}

type wireVocab struct {
	ID          flexInt    `json:"id"`
	Title       flexString `json:"title"`
	Description flexString `json:"description"`
	WordCount   flexInt    `json:"wordCount"`
	CreatedAt   flexTime   `json:"createdAt"`
	UpdatedAt   flexTime   `json:"updatedAt"`
}

func (v wireVocab) toModel() models.Vocab {
	return models.Vocab{
		ID:          int64(v.ID),
		Title:       strings.TrimSpace(string(v.Title)),
		Description: strings.TrimSpace(string(v.Description)),
		WordCount:   int(v.WordCount),
		CreatedAt:   time.Time(v.CreatedAt),
		UpdatedAt:   time.Time(v.UpdatedAt),
	}
}

type wireClassroom struct {
	ID          flexInt    `json:"id"`
	Name        flexString `json:"name"`
	Description flexString `json:"description"`
	Code        flexString `json:"code"`
	VocabIDs    []flexInt  `json:"vocabIds"`
	CreatedAt   flexTime   `json:"createdAt"`
	UpdatedAt   flexTime   `json:"updatedAt"`
}

func (c wireClassroom) toModel() models.Classroom {
	ids := make([]int64, 0, len(c.VocabIDs))
	for _, id := range c.VocabIDs {
		ids = append(ids, int64(id))
	}
	return models.Classroom{
		ID:          int64(c.ID),
		Name:        strings.TrimSpace(string(c.Name)),
		Description: strings.TrimSpace(string(c.Description)),
		Code:        string(c.Code),
		VocabIDs:    ids,
		CreatedAt:   time.Time(c.CreatedAt),
		UpdatedAt:   time.Time(c.UpdatedAt),
	}
}

type wireVocabWithWords struct {
	Vocab wireVocab  `json:"vocab"`
	Words []wireWord `json:"words"`
}

type wireClassroomWithWords struct {
	Classroom wireClassroom `json:"classroom"`
	Words     []wireWord    `json:"words"`
}

type wireWordPage struct {
	Words      []wireWord `json:"words"`
	Page       flexInt    `json:"page"`
	PageSize   flexInt    `json:"pageSize"`
	TotalWords flexInt    `json:"totalWords"`
	TotalPages flexInt    `json:"totalPages"`
}
