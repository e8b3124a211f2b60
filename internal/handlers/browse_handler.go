package handlers

import (
	"net/http"
	"time"

	"vocabdrill/internal/metrics"
	"vocabdrill/internal/models"
	"vocabdrill/internal/wordsource"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BrowseHandler serves the read-only vocabulary and classroom screens
type BrowseHandler struct {
	source wordsource.Source
}

// NewBrowseHandler creates a new browse handler
func NewBrowseHandler(source wordsource.Source) *BrowseHandler {
	return &BrowseHandler{source: source}
}

// observe records how long a word source call took
func observe(kind string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.WordSourceDuration.WithLabelValues(kind, outcome).Observe(time.Since(start).Seconds())
}

// ListVocabs lists every vocabulary
func (h *BrowseHandler) ListVocabs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	vocabs, err := h.source.Vocabs(r.Context())
	observe("vocabs", start, err)
	if err != nil {
		respondWithServiceError(w, "Error listing vocabs", err)
		return
	}
	if vocabs == nil {
		vocabs = []models.Vocab{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vocabs": vocabs})
}

// GetVocab returns one vocabulary's details
func (h *BrowseHandler) GetVocab(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()
	vocab, err := h.source.Vocab(r.Context(), id)
	observe(models.SourceVocab, start, err)
	if err != nil {
		respondWithServiceError(w, "Error getting vocab", err)
		return
	}
	writeJSON(w, http.StatusOK, vocab)
}

// GetWordsPage returns one page of a vocabulary's words
func (h *BrowseHandler) GetWordsPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	pageNum := queryInt(r, "page", 1)
	if pageNum < 1 {
		pageNum = 1
	}
	size := queryInt(r, "size", defaultPageSize)
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}

	start := time.Now()
	page, err := h.source.WordsPage(r.Context(), id, pageNum, size)
	observe("words_page", start, err)
	if err != nil {
		respondWithServiceError(w, "Error getting words page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetClassroom returns a classroom and its words in exam order
func (h *BrowseHandler) GetClassroom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()
	classroom, words, err := h.classroom(r, id)
	observe(models.SourceClassroom, start, err)
	if err != nil {
		respondWithServiceError(w, "Error getting classroom", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"classroom": classroom, "words": words})
}

func (h *BrowseHandler) classroom(r *http.Request, id int64) (*models.Classroom, []models.Word, error) {
	classroom, err := h.source.Classroom(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	words, err := h.source.ClassroomWords(r.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	return classroom, words, nil
}
