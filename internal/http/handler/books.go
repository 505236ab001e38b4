package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"quill/internal/auth"
	"quill/internal/book"
	"quill/internal/engine"
)

type StateHandler struct {
	Svc    *book.Service
	Engine *engine.Engine
}

// State bootstraps the client: the user's book (created on first visit) and
// the full view snapshot the action engine works against.
func (h *StateHandler) State(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	b, err := h.Svc.BookForUser(r.Context(), uid)
	if errors.Is(err, book.ErrNotFound) {
		b, err = h.Svc.CreateBook(r.Context(), uid, "Untitled Book")
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	st, err := h.Engine.LoadState(r.Context(), b.ID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}
