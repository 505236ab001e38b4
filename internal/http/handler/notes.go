package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quill/internal/book"

	"github.com/go-chi/chi/v5"
)

var noteKeys = map[string]bool{
	book.KeyUserInstructions: true,
	book.KeyAIInstructions:   true,
}

type NoteHandler struct {
	Svc *book.Service
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseUint(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid book id", http.StatusBadRequest)
		return
	}
	key := chi.URLParam(r, "key")
	if !noteKeys[key] {
		http.Error(w, "unknown note key", http.StatusBadRequest)
		return
	}

	n, err := h.Svc.Note(r.Context(), bookID, key)
	if errors.Is(err, book.ErrNotFound) {
		// A note that was never written reads as empty.
		n = book.ProjectNote{BookID: bookID, Key: key, Value: ""}
	} else if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"note": n})
}

type putNoteReq struct {
	Value string `json:"value"`
}

func (h *NoteHandler) Put(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseUint(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid book id", http.StatusBadRequest)
		return
	}
	key := chi.URLParam(r, "key")
	if !noteKeys[key] {
		http.Error(w, "unknown note key", http.StatusBadRequest)
		return
	}

	var req putNoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	n, err := h.Svc.SetNote(r.Context(), bookID, key, req.Value)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"note": n})
}
