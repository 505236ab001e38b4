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

type ChapterHandler struct {
	Svc *book.Service
}

type createChapterReq struct {
	BookID uint64 `json:"book_id"`
	Title  string `json:"title"`
}

func (h *ChapterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createChapterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.BookID == 0 || req.Title == "" {
		http.Error(w, "book_id and title required", http.StatusBadRequest)
		return
	}

	ch, err := h.Svc.CreateChapter(r.Context(), req.BookID, req.Title)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	all, err := h.Svc.Chapters(r.Context(), req.BookID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"chapter":  book.ChapterDetail{Chapter: ch, Paragraphs: []book.Paragraph{}},
		"chapters": all,
	})
}

func (h *ChapterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	detail, wc, err := h.Svc.ChapterDetail(r.Context(), id)
	if errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"chapter":   detail,
		"wordCount": wc,
	})
}

func (h *ChapterHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var patch book.ChapterPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	ch, err := h.Svc.UpdateChapter(r.Context(), id, patch)
	if errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	detail, _, err := h.Svc.ChapterDetail(r.Context(), ch.ID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"chapter": detail})
}
