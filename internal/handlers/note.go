package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/technotes/apiserver/internal/logging"
	"github.com/technotes/apiserver/internal/services"
)

// NoteHandler provides HTTP handlers for notes.
type NoteHandler struct {
	noteService *services.NoteService
	logger      logging.Logger
}

func NewNoteHandler(noteService *services.NoteService, logger logging.Logger) *NoteHandler {
	return &NoteHandler{noteService: noteService, logger: logger}
}

// NoteRouter registers note routes. Nil middlewares are skipped.
func NoteRouter(r chi.Router, noteService *services.NoteService, logger logging.Logger, middlewares ...func(http.Handler) http.Handler) {
	handler := NewNoteHandler(noteService, logger)

	r = withMiddleware(r, middlewares...)
	r.Get("/", handler.ListNotes)
	r.Post("/", handler.CreateNote)
	r.Patch("/", handler.UpdateNote)
	r.Delete("/", handler.DeleteNote)
}

func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.noteService.Create(r.Context(), services.CreateNoteInput{
		User:  req.User,
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("New note %s created", note.Title)})
}

func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.noteService.Update(r.Context(), services.UpdateNoteInput{
		ID:        req.ID,
		User:      req.User,
		Title:     req.Title,
		Text:      req.Text,
		Completed: optionalBool(req.Completed),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, fmt.Sprintf("'%s' updated", note.Title))
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.noteService.Delete(r.Context(), req.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, fmt.Sprintf("Note '%s' with ID %s deleted", note.Title, note.ID))
}

type CreateNoteRequest struct {
	User  string `json:"user"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type UpdateNoteRequest struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Completed any    `json:"completed"`
}

type DeleteRequest struct {
	ID string `json:"id"`
}
