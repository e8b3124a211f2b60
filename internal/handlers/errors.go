package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"vocabdrill/internal/security"
	"vocabdrill/internal/service"
	"vocabdrill/internal/study"
	"vocabdrill/internal/validation"
	"vocabdrill/internal/wordsource"
)

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error  string            `json:"error"`
	Retry  bool              `json:"retry,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Login  string            `json:"login,omitempty"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	writeJSON(w, status, errorResponse{Error: userMsg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondWithServiceError maps the error of a service call to a response.
// Unexpected errors are logged with logMsg and reported as 500.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var fields validation.FieldErrors
	var fieldErr validation.ValidationError
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidRequest, Fields: fields})
	case errors.As(err, &fieldErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fieldErr.Message, Fields: map[string]string{fieldErr.Field: fieldErr.Message}})
	case errors.Is(err, wordsource.ErrNetwork):
		log.Printf("%s: %v", logMsg, err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: ErrWordSourceUnavailable, Retry: true})
	case errors.Is(err, service.ErrNoSession):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, wordsource.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, security.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), Login: loginPath})
	case errors.Is(err, service.ErrNotAdmin):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidSource),
		errors.Is(err, study.ErrInvalidStyle),
		errors.Is(err, study.ErrInvalidDirection),
		errors.Is(err, study.ErrInvalidBatchSize),
		errors.Is(err, study.ErrInputPosition),
		errors.Is(err, study.ErrInputLength):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotReady),
		errors.Is(err, service.ErrAlreadyBegun),
		errors.Is(err, study.ErrSelectionOrder),
		errors.Is(err, study.ErrCompleted),
		errors.Is(err, study.ErrClosed),
		errors.Is(err, study.ErrEmptySession),
		errors.Is(err, study.ErrWrongStyle),
		errors.Is(err, study.ErrRevealed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
