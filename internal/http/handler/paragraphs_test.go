package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"quill/internal/book"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func paragraphRouter(svc *book.Service) http.Handler {
	h := &ParagraphHandler{Svc: svc}
	r := chi.NewRouter()
	r.Post("/paragraphs", h.Create)
	r.Patch("/paragraphs/{id}", h.Patch)
	r.Patch("/paragraphs/{id}/move", h.Move)
	r.Post("/paragraphs/{id}/undo", h.Undo)
	return r
}

func TestParagraphHandler_CreateEditUndo(t *testing.T) {
	svc := testBooks(t)
	ctx := context.TODO()
	b, err := svc.CreateBook(ctx, 1, "My Book")
	require.NoError(t, err)
	ch, err := svc.CreateChapter(ctx, b.ID, "One")
	require.NoError(t, err)
	r := paragraphRouter(svc)

	// create
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/paragraphs",
		strings.NewReader(`{"chapter_id":`+itoa(ch.ID)+`,"content":"v0"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	p, err := svc.AddParagraph(ctx, ch.ID, "second")
	require.NoError(t, err)

	// edit
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/paragraphs/"+itoa(p.ID),
		strings.NewReader(`{"content":"edited words"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"wordCount":3`)

	// undo restores
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/paragraphs/"+itoa(p.ID)+"/undo", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"second"`)

	// second undo has nothing left
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/paragraphs/"+itoa(p.ID)+"/undo", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "nothing to undo")
}

func TestParagraphHandler_MoveValidation(t *testing.T) {
	svc := testBooks(t)
	r := paragraphRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/paragraphs/999/move",
		strings.NewReader(`{"position":1}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/paragraphs/abc/move",
		strings.NewReader(`{"position":1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
