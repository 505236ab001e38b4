package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quill/internal/engine"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionHandler_SkippedActionStillLogsActivity(t *testing.T) {
	svc := testBooks(t)
	ctx := context.TODO()
	b, err := svc.CreateBook(ctx, 1, "My Book")
	require.NoError(t, err)
	sess, err := svc.CreateSession(ctx, b.ID, "")
	require.NoError(t, err)

	h := &ActionHandler{
		Svc:    svc,
		Engine: &engine.Engine{Books: svc},
		Log:    logrus.New(),
	}

	// No chapter exists at position 99, so the lookup misses. The activity
	// label depends only on the tool name, not on whether the lookup found
	// anything.
	req := httptest.NewRequest(http.MethodPost, "/api/actions",
		strings.NewReader(`{"book_id":`+itoa(b.ID)+`,"actions":[{"tool":"go_to_chapter","position":99}]}`))
	rec := httptest.NewRecorder()
	h.Execute(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"skip":"unknown_chapter"`)

	msgs, err := svc.SessionMessages(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "action", msgs[0].Role)
	assert.Equal(t, "Switched chapters", msgs[0].Content)
}

func TestActionHandler_PrivateActionStaysSilent(t *testing.T) {
	svc := testBooks(t)
	ctx := context.TODO()
	b, err := svc.CreateBook(ctx, 1, "My Book")
	require.NoError(t, err)
	sess, err := svc.CreateSession(ctx, b.ID, "")
	require.NoError(t, err)

	h := &ActionHandler{
		Svc:    svc,
		Engine: &engine.Engine{Books: svc},
		Log:    logrus.New(),
	}

	req := httptest.NewRequest(http.MethodPost, "/api/actions",
		strings.NewReader(`{"book_id":`+itoa(b.ID)+`,"actions":[{"tool":"save_note","note":"keep it short"}]}`))
	rec := httptest.NewRecorder()
	h.Execute(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	msgs, err := svc.SessionMessages(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
