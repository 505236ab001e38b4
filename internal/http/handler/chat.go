package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"quill/internal/ai"
	"quill/internal/book"
	"quill/internal/live"

	"github.com/sirupsen/logrus"
)

// ChatHandler bridges one user message into a streamed model turn. The
// response is a server-sent event stream of JSON frames: a stats frame, zero
// or more token frames, optional ai_notes and actions frames, then [DONE].
// On failure an error frame is sent and the stream ends without [DONE].
type ChatHandler struct {
	Svc    *book.Service
	Prompt *ai.PromptBuilder
	Client *ai.Client
	Hub    *live.Hub
	Log    *logrus.Logger
}

type chatReq struct {
	BookID    uint64 `json:"book_id"`
	SessionID uint64 `json:"session_id"`
	Message   string `json:"message"`
}

func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.BookID == 0 || req.SessionID == 0 || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "book_id, session_id and message required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(frame any) {
		data, err := json.Marshal(frame)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
	fail := func(msg string, err error) {
		h.Log.WithError(err).Error(msg)
		send(map[string]any{"type": "error", "message": msg})
	}

	ctx := r.Context()

	if _, err := h.Svc.AppendMessage(ctx, req.SessionID, "user", req.Message); err != nil {
		fail("failed to save message", err)
		return
	}

	system, err := h.Prompt.Build(ctx, req.BookID)
	if err != nil {
		fail("failed to build prompt", err)
		return
	}

	history, err := h.conversation(r, req.SessionID)
	if err != nil {
		fail("failed to load history", err)
		return
	}

	// The chat estimate runs over the whole transcript as one string, not
	// message by message, so rounding happens once.
	var chat strings.Builder
	for _, m := range history {
		chat.WriteString(m.Content)
	}
	systemTokens := ai.EstimateTokens(system)
	chatTokens := ai.EstimateTokens(chat.String())
	send(map[string]any{
		"type":         "stats",
		"systemTokens": systemTokens,
		"chatTokens":   chatTokens,
		"totalTokens":  systemTokens + chatTokens,
		"modelMax":     ai.ModelMaxTokens,
	})

	events, err := h.Client.StreamChat(ctx, system, history, ai.Tools())
	if err != nil {
		if errors.Is(err, ai.ErrMissingAPIKey) {
			fail("chat is not configured on this server", err)
		} else {
			fail("model request failed", err)
		}
		return
	}

	var full strings.Builder
	var calls []ai.ToolCall
	for ev := range events {
		if ev.Text != "" {
			full.WriteString(ev.Text)
			send(map[string]any{"type": "token", "value": ev.Text})
		}
		if len(ev.Calls) > 0 {
			calls = ev.Calls
		}
	}

	// The model may answer through either transport: native tool calls, or
	// inline <<ACTION>> / <<NOTE_TO_SELF>> tags in the text. Both feed the
	// same actions frame; tag actions follow native calls.
	ex := ai.Extract(full.String())

	actions := make([]ai.Action, 0, len(calls)+len(ex.Actions))
	for _, c := range calls {
		actions = append(actions, ai.Action{Tool: c.Name, Args: c.Arguments})
	}
	for _, a := range ex.Actions {
		// Tag actions are free-form model text, so the tool name is only
		// checked against the vocabulary here, after parsing. Unknown names
		// still flow through; the executor skips them.
		if !ai.KnownTool(a.Tool) {
			h.Log.WithField("tool", a.Tool).Warn("action tag names unknown tool")
		}
		actions = append(actions, a)
	}

	// save_note is private: absorb it server-side instead of handing it to
	// the client executor.
	kept := actions[:0]
	var notes []string
	notes = append(notes, ex.Notes...)
	for _, a := range actions {
		if a.Tool == ai.ToolSaveNote {
			if n := strings.TrimSpace(a.Str("note")); n != "" {
				notes = append(notes, n)
			}
			continue
		}
		kept = append(kept, a)
	}

	for _, n := range notes {
		saved, err := h.Svc.AppendNote(ctx, req.BookID, book.KeyAIInstructions, n)
		if err != nil {
			h.Log.WithError(err).Error("failed to save ai note")
			continue
		}
		send(map[string]any{"type": "ai_notes", "value": saved.Value})
		if h.Hub != nil {
			h.Hub.NotesUpdated(req.BookID, saved.Value)
		}
	}

	if len(kept) > 0 {
		send(map[string]any{"type": "actions", "actions": kept})
	}

	if ex.Visible != "" {
		if _, err := h.Svc.AppendMessage(ctx, req.SessionID, "assistant", ex.Visible); err != nil {
			h.Log.WithError(err).Error("failed to save assistant message")
		}
	}

	snapshot := map[string]any{"user": req.Message, "assistant": ex.Visible, "actions": kept}
	if err := h.Svc.LogEvent(ctx, book.EventInput{
		BookID:       req.BookID,
		SessionID:    &req.SessionID,
		Action:       "chat_message",
		EntityType:   "session",
		EntityID:     &req.SessionID,
		ChatSnapshot: snapshot,
		Source:       book.SourceAI,
	}); err != nil {
		h.Log.WithError(err).Error("failed to log chat event")
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// conversation replays the session log as model messages, skipping the
// synthetic activity lines the executor records.
func (h *ChatHandler) conversation(r *http.Request, sessionID uint64) ([]ai.Message, error) {
	msgs, err := h.Svc.SessionMessages(r.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == "action" {
			continue
		}
		out = append(out, ai.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}
