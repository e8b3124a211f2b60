package handlers

import (
	"net/http"
	"strconv"

	"vocabdrill/internal/service"
	"vocabdrill/internal/study"
)

// StudyHandler handles the learner's study session HTTP requests
type StudyHandler struct {
	studyService *service.StudyService
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(studyService *service.StudyService) *StudyHandler {
	return &StudyHandler{studyService: studyService}
}

type startRequest struct {
	SourceKind string `json:"sourceKind"`
	SourceID   int64  `json:"sourceId"`
	Style      string `json:"style"`
}

// StartSession loads a vocab or classroom and begins mode selection
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state, err := h.studyService.Start(r.Context(), GetLearnerID(r.Context()), req.SourceKind, req.SourceID, study.Style(req.Style))
	if err != nil {
		respondWithServiceError(w, "Error starting study session", err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

// GetSession returns the learner's current session, restoring a saved one if needed
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.studyService.State(r.Context(), GetLearnerID(r.Context()))
	if err != nil {
		respondWithServiceError(w, "Error loading study session", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// EndSession abandons the learner's session
func (h *StudyHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.studyService.End(r.Context(), GetLearnerID(r.Context())); err != nil {
		respondWithServiceError(w, "Error ending study session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChooseDirection selects the study direction
func (h *StudyHandler) ChooseDirection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	dir, err := study.ParseDirection(req.Direction)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	h.respond(w, "Error choosing direction")(h.studyService.ChooseDirection(r.Context(), GetLearnerID(r.Context()), dir))
}

// ChooseBatch selects the batch size and begins the session
func (h *StudyHandler) ChooseBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size int `json:"size"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, "Error choosing batch")(h.studyService.ChooseBatch(r.Context(), GetLearnerID(r.Context()), req.Size))
}

// SetInput writes one character of the typed answer
func (h *StudyHandler) SetInput(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.Atoi(r.PathValue("pos"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, "Error setting input")(h.studyService.SetInput(GetLearnerID(r.Context()), pos, req.Value))
}

// Backspace clears one input position and moves focus back
func (h *StudyHandler) Backspace(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.Atoi(r.PathValue("pos"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	h.respond(w, "Error handling backspace")(h.studyService.Backspace(GetLearnerID(r.Context()), pos))
}

// Check grades the typed answer. The request may carry the whole input buffer.
func (h *StudyHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Inputs []string `json:"inputs"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	learnerID := GetLearnerID(r.Context())
	if req.Inputs != nil {
		if _, err := h.studyService.SetInputs(learnerID, req.Inputs); err != nil {
			respondWithServiceError(w, "Error setting inputs", err)
			return
		}
	}
	h.respond(w, "Error checking answer")(h.studyService.Check(learnerID))
}

// Reveal flips the flashcard
func (h *StudyHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "Error revealing card")(h.studyService.Reveal(GetLearnerID(r.Context())))
}

// Advance moves to the next card
func (h *StudyHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "Error advancing")(h.studyService.Advance(GetLearnerID(r.Context())))
}

// Retreat moves to the previous card
func (h *StudyHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "Error going back")(h.studyService.Retreat(GetLearnerID(r.Context())))
}

// MarkKnown records the flashcard as known
func (h *StudyHandler) MarkKnown(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "Error marking known")(h.studyService.MarkKnown(GetLearnerID(r.Context())))
}

// MarkUnknown records the flashcard as unknown
func (h *StudyHandler) MarkUnknown(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "Error marking unknown")(h.studyService.MarkUnknown(GetLearnerID(r.Context())))
}

// Pronounce speaks the current word
func (h *StudyHandler) Pronounce(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "Error pronouncing word")(h.studyService.Pronounce(GetLearnerID(r.Context())))
}

// ToggleDirection swaps the study direction mid-session
func (h *StudyHandler) ToggleDirection(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "Error toggling direction")(h.studyService.ToggleDirection(r.Context(), GetLearnerID(r.Context())))
}

// Reset reloads the words and starts the session over
func (h *StudyHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "Error resetting session")(h.studyService.Reset(r.Context(), GetLearnerID(r.Context())))
}

// ToggleBookmark bookmarks or un-bookmarks the current word
func (h *StudyHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "Error toggling bookmark")(h.studyService.ToggleBookmark(r.Context(), GetLearnerID(r.Context())))
}

// History lists the learner's completed sessions
func (h *StudyHandler) History(w http.ResponseWriter, r *http.Request) {
	results, err := h.studyService.History(GetLearnerID(r.Context()), queryInt(r, "limit", 0))
	if err != nil {
		respondWithServiceError(w, "Error loading study history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (h *StudyHandler) respond(w http.ResponseWriter, logMsg string) func(*service.StudyState, error) {
	return func(state *service.StudyState, err error) {
		if err != nil {
			respondWithServiceError(w, logMsg, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}
