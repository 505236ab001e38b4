package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"quill/internal/ai"
	"quill/internal/book"
	"quill/internal/engine"
	"quill/internal/live"

	"github.com/sirupsen/logrus"
)

// ActionHandler executes a decoded action batch against the manuscript and
// returns the refreshed view state alongside per-action outcomes.
type ActionHandler struct {
	Svc    *book.Service
	Engine *engine.Engine
	Hub    *live.Hub
	Log    *logrus.Logger
}

type executeReq struct {
	BookID  uint64      `json:"book_id"`
	Actions []ai.Action `json:"actions"`
}

func (h *ActionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.BookID == 0 {
		http.Error(w, "book_id required", http.StatusBadRequest)
		return
	}

	st, err := h.Engine.LoadState(r.Context(), req.BookID)
	if errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	outcomes, err := h.Engine.ExecuteAll(r.Context(), st, req.Actions)
	if err != nil {
		h.Log.WithError(err).Error("action batch failed")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	// Every action gets an activity line in the session log and on any live
	// clients, whether or not its lookup succeeded. Private actions carry an
	// empty summary and stay silent.
	var lines []string
	for _, o := range outcomes {
		if o.Summary == "" {
			continue
		}
		lines = append(lines, o.Summary)
		if _, err := h.Svc.AppendMessage(r.Context(), st.Session.ID, "action", o.Summary); err != nil {
			h.Log.WithError(err).Error("failed to log activity line")
		}
	}
	if len(lines) > 0 && h.Hub != nil {
		h.Hub.Activity(req.BookID, lines)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"state": st, "outcomes": outcomes})
}
