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

// CompactHandler condenses a long session's conversation into a summary so
// later turns spend context budget on the manuscript instead of old chatter.
type CompactHandler struct {
	Svc  *book.Service
	Summ engine.Summarizer
}

func (h *CompactHandler) Compact(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if _, err := h.Svc.UpdateSession(r.Context(), id, nil); errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

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
	if len(history) == 0 {
		http.Error(w, "nothing to compact", http.StatusBadRequest)
		return
	}

	summary, err := h.Summ.Summarize(r.Context(), history)
	if err != nil {
		http.Error(w, "summary generation failed", http.StatusBadGateway)
		return
	}

	if err := h.Svc.SetSummary(r.Context(), id, summary); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"summary": summary})
}
