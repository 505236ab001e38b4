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

type TaskHandler struct {
	Svc *book.Service
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseUint(r.URL.Query().Get("book_id"), 10, 64)
	if err != nil {
		http.Error(w, "book_id required", http.StatusBadRequest)
		return
	}

	tasks, err := h.Svc.OpenTasks(r.Context(), bookID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"tasks": tasks})
}

type createTaskReq struct {
	BookID    uint64  `json:"book_id"`
	Content   string  `json:"content"`
	ChapterID *uint64 `json:"chapter_id"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.BookID == 0 || strings.TrimSpace(req.Content) == "" {
		http.Error(w, "book_id and content required", http.StatusBadRequest)
		return
	}

	t, err := h.Svc.CreateTask(r.Context(), req.BookID, req.Content, req.ChapterID, book.SourceUser)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"task": t})
}

type patchTaskReq struct {
	Status string `json:"status"`
}

func (h *TaskHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req patchTaskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Status != book.TaskOpen && req.Status != book.TaskDone {
		http.Error(w, "status must be open or done", http.StatusBadRequest)
		return
	}

	t, err := h.Svc.SetTaskStatus(r.Context(), id, req.Status)
	if errors.Is(err, book.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"task": t})
}
