package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"quill/internal/book"

	"github.com/go-chi/chi/v5"
)

type ParagraphHandler struct {
	Svc *book.Service
}

type createParagraphReq struct {
	ChapterID uint64 `json:"chapter_id"`
	Content   string `json:"content"`
}

func (h *ParagraphHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createParagraphReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.ChapterID == 0 || strings.TrimSpace(req.Content) == "" {
		http.Error(w, "chapter_id and content required", http.StatusBadRequest)
		return
	}

	p, err := h.Svc.AddParagraph(r.Context(), req.ChapterID, req.Content)
	if errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"paragraph": p})
}

type patchParagraphReq struct {
	Content string `json:"content"`
}

func (h *ParagraphHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req patchParagraphReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	p, wc, err := h.Svc.EditParagraph(r.Context(), id, req.Content)
	if errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"paragraph": p, "wordCount": wc})
}

type moveParagraphReq struct {
	Position int `json:"position"`
}

func (h *ParagraphHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req moveParagraphReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	err = h.Svc.MoveParagraph(r.Context(), id, req.Position)
	if errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Undo restores the previous content of a paragraph's last edit. A paragraph
// with no edit history is a distinct not-found outcome, not a server error.
func (h *ParagraphHandler) Undo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, wc, err := h.Svc.UndoParagraphEdit(r.Context(), id)
	if errors.Is(err, book.ErrNothingToUndo) {
		http.Error(w, "nothing to undo", http.StatusNotFound)
		return
	}
	if errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"paragraph": p, "wordCount": wc})
}
