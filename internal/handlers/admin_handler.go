package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"vocabdrill/internal/service"
)

// AdminHandler handles admin-specific routes
type AdminHandler struct {
	vocabService     *service.VocabService
	classroomService *service.ClassroomService
	backupService    *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(vocabService *service.VocabService, classroomService *service.ClassroomService, backupService *service.BackupService) *AdminHandler {
	return &AdminHandler{
		vocabService:     vocabService,
		classroomService: classroomService,
		backupService:    backupService,
	}
}

// CreateVocab creates a vocabulary, optionally with its first words
func (h *AdminHandler) CreateVocab(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.VocabInput
		Words []service.WordInput `json:"words"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	vocab, err := h.vocabService.CreateVocab(req.VocabInput)
	if err != nil {
		respondWithServiceError(w, "Error creating vocab", err)
		return
	}
	if len(req.Words) > 0 {
		if _, err := h.vocabService.AddWords(vocab.ID, req.Words); err != nil {
			respondWithServiceError(w, "Error adding words", err)
			return
		}
	}

	log.Printf("Vocab %d created by %s", vocab.ID, adminEmail(r))
	result, err := h.vocabService.GetVocab(vocab.ID)
	if err != nil {
		respondWithServiceError(w, "Error loading vocab", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// UpdateVocab changes a vocabulary's title and description
func (h *AdminHandler) UpdateVocab(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.VocabInput
	if !decodeJSON(w, r, &req) {
		return
	}

	vocab, err := h.vocabService.UpdateVocab(id, req)
	if err != nil {
		respondWithServiceError(w, "Error updating vocab", err)
		return
	}
	writeJSON(w, http.StatusOK, vocab)
}

// DeleteVocab deletes a vocabulary and its words
func (h *AdminHandler) DeleteVocab(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.vocabService.DeleteVocab(id); err != nil {
		respondWithServiceError(w, "Error deleting vocab", err)
		return
	}
	log.Printf("Vocab %d deleted by %s", id, adminEmail(r))
	w.WriteHeader(http.StatusNoContent)
}

// AddWords appends words to a vocabulary
func (h *AdminHandler) AddWords(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Words []service.WordInput `json:"words"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Words) == 0 {
		respondWithError(w, http.StatusBadRequest, "At least one word is required", "", nil)
		return
	}

	words, err := h.vocabService.AddWords(id, req.Words)
	if err != nil {
		respondWithServiceError(w, "Error adding words", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"words": words})
}

// UpdateWord replaces the content of a word
func (h *AdminHandler) UpdateWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.WordInput
	if !decodeJSON(w, r, &req) {
		return
	}

	word, err := h.vocabService.UpdateWord(id, req)
	if err != nil {
		respondWithServiceError(w, "Error updating word", err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

// DeleteWord deletes a word
func (h *AdminHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.vocabService.DeleteWord(id); err != nil {
		respondWithServiceError(w, "Error deleting word", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListClassrooms lists every classroom
func (h *AdminHandler) ListClassrooms(w http.ResponseWriter, r *http.Request) {
	classrooms, err := h.classroomService.ListClassrooms()
	if err != nil {
		respondWithServiceError(w, "Error listing classrooms", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"classrooms": classrooms})
}

// CreateClassroom creates a classroom with a fresh join code
func (h *AdminHandler) CreateClassroom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.ClassroomInput
		VocabIDs []int64 `json:"vocabIds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	classroom, err := h.classroomService.CreateClassroom(req.ClassroomInput)
	if err != nil {
		respondWithServiceError(w, "Error creating classroom", err)
		return
	}
	if len(req.VocabIDs) > 0 {
		if classroom, err = h.classroomService.SetVocabs(classroom.ID, req.VocabIDs); err != nil {
			respondWithServiceError(w, "Error assigning vocabs", err)
			return
		}
	}

	log.Printf("Classroom %d created by %s", classroom.ID, adminEmail(r))
	writeJSON(w, http.StatusCreated, classroom)
}

// UpdateClassroom changes a classroom's details
func (h *AdminHandler) UpdateClassroom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.ClassroomInput
	if !decodeJSON(w, r, &req) {
		return
	}

	classroom, err := h.classroomService.UpdateClassroom(id, req)
	if err != nil {
		respondWithServiceError(w, "Error updating classroom", err)
		return
	}
	writeJSON(w, http.StatusOK, classroom)
}

// DeleteClassroom deletes a classroom
func (h *AdminHandler) DeleteClassroom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.classroomService.DeleteClassroom(id); err != nil {
		respondWithServiceError(w, "Error deleting classroom", err)
		return
	}
	log.Printf("Classroom %d deleted by %s", id, adminEmail(r))
	w.WriteHeader(http.StatusNoContent)
}

// SetClassroomVocabs replaces a classroom's vocabularies; the order given is the exam order
func (h *AdminHandler) SetClassroomVocabs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		VocabIDs []int64 `json:"vocabIds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	classroom, err := h.classroomService.SetVocabs(id, req.VocabIDs)
	if err != nil {
		respondWithServiceError(w, "Error assigning vocabs", err)
		return
	}
	writeJSON(w, http.StatusOK, classroom)
}

// ExportDatabase streams a JSON backup
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	// Set headers for file download
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("vocabdrill_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	// Export directly to response writer
	if _, err := h.backupService.ExportToWriter(w); err != nil {
		// headers may be gone already; the client sees a truncated file
		log.Printf("Error exporting database: %v", err)
		return
	}

	log.Printf("Database exported by admin user %s", adminEmail(r))
}

// ImportDatabase restores a JSON backup sent as the request body
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, 50<<20)
	if err := h.backupService.ImportFromReader(body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to import database", "Error importing database", err)
		return
	}

	log.Printf("Database imported successfully by admin user %s", adminEmail(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

func adminEmail(r *http.Request) string {
	if user := GetUserFromContext(r.Context()); user != nil {
		return user.Email
	}
	return "unknown"
}
