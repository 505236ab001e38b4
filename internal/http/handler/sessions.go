package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quill/internal/ai"
	"quill/internal/book"
	"quill/internal/engine"

	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	Svc  *book.Service
	Summ engine.Summarizer
}

type createSessionReq struct {
	BookID uint64 `json:"book_id"`
	Mode   string `json:"mode"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.BookID == 0 {
		http.Error(w, "book_id required", http.StatusBadRequest)
		return
	}

	sess, err := h.Svc.CreateSession(r.Context(), req.BookID, req.Mode)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"session": sess})
}

type patchSessionReq struct {
	Mode *string `json:"mode"`
}

func (h *SessionHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req patchSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	updates := map[string]any{}
	if req.Mode != nil {
		updates["mode"] = *req.Mode
	}

	sess, err := h.Svc.UpdateSession(r.Context(), id, updates)
	if errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"session": sess})
}

type wrapSessionReq struct {
	Summary string `json:"summary"`
}

// Wrap closes a session and opens the next one. When the caller supplies no
// summary, one is generated from the session's conversation log; generation
// failures degrade to an empty summary rather than losing the wrap.
func (h *SessionHandler) Wrap(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req wrapSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	sess, err := h.Svc.UpdateSession(r.Context(), id, nil)
	if errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	summary := req.Summary
	if summary == "" && h.Summ != nil {
		msgs, err := h.Svc.SessionMessages(r.Context(), id)
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		history := make([]ai.Message, 0, len(msgs))
		for _, m := range msgs {
			if m.Role == "action" {
				continue
			}
			history = append(history, ai.Message{Role: m.Role, Content: m.Content})
		}
		if len(history) > 0 {
			if generated, err := h.Summ.Summarize(r.Context(), history); err == nil {
				summary = generated
			}
		}
	}

	if err := h.Svc.SetSummary(r.Context(), id, summary); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	next, err := h.Svc.CreateSession(r.Context(), sess.BookID, "")
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"summary": summary, "session": next})
}
