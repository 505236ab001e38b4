package ai

import (
	"context"
	"strconv"
	"testing"
	"time"

	"quill/internal/book"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func promptFixture(t *testing.T) (*PromptBuilder, *book.Service, book.Book) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&book.Book{}, &book.Chapter{}, &book.Paragraph{}, &book.BookTask{},
		&book.ProjectNote{}, &book.Session{}, &book.Message{}, &book.Event{},
	))
	svc := &book.Service{DB: db}
	b, err := svc.CreateBook(context.TODO(), 1, "My Book")
	require.NoError(t, err)

	fixed := time.Date(2025, time.March, 14, 15, 4, 0, 0, time.UTC)
	return &PromptBuilder{Books: svc, Now: func() time.Time { return fixed }}, svc, b
}

func TestPromptBuild_EmptyBook(t *testing.T) {
	pb, _, b := promptFixture(t)

	prompt, err := pb.Build(context.TODO(), b.ID)
	require.NoError(t, err)

	assert.Contains(t, prompt, "book writing partner")
	assert.Contains(t, prompt, "## Current Time\nFriday, March 14, 2025, 3:04 PM UTC")
	assert.NotContains(t, prompt, "## Full Manuscript")
	assert.NotContains(t, prompt, "## Open Tasks")
	assert.NotContains(t, prompt, "## Previous Session Summary")
}

func TestPromptBuild_ManuscriptSection(t *testing.T) {
	pb, svc, b := promptFixture(t)
	ctx := context.TODO()

	ch, err := svc.CreateChapter(ctx, b.ID, "Origins")
	require.NoError(t, err)
	outline := "How it all started."
	_, err = svc.UpdateChapter(ctx, ch.ID, book.ChapterPatch{Outline: &outline})
	require.NoError(t, err)
	_, err = svc.AddParagraph(ctx, ch.ID, "It began with rain.")
	require.NoError(t, err)

	_, err = svc.CreateChapter(ctx, b.ID, "Untitled")
	require.NoError(t, err)

	prompt, err := pb.Build(ctx, b.ID)
	require.NoError(t, err)

	assert.Contains(t, prompt, "### Chapter 1: Origins")
	assert.Contains(t, prompt, "Outline: How it all started.")
	assert.Contains(t, prompt, "[1] It began with rain.")
	assert.Contains(t, prompt, "### Chapter 2: Untitled")
	assert.Contains(t, prompt, "(no content yet)")
}

func TestPromptBuild_FeedbackReminderOncePerDay(t *testing.T) {
	pb, _, b := promptFixture(t)
	ctx := context.TODO()

	first, err := pb.Build(ctx, b.ID)
	require.NoError(t, err)
	assert.Contains(t, first, "## Feedback Reminder")

	second, err := pb.Build(ctx, b.ID)
	require.NoError(t, err)
	assert.NotContains(t, second, "## Feedback Reminder")

	// next day it fires again
	pb.Now = func() time.Time { return time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC) }
	third, err := pb.Build(ctx, b.ID)
	require.NoError(t, err)
	assert.Contains(t, third, "## Feedback Reminder")
}

func TestPromptBuild_NotesTasksAndPreviousSummary(t *testing.T) {
	pb, svc, b := promptFixture(t)
	ctx := context.TODO()

	_, err := svc.SetNote(ctx, b.ID, book.KeyUserInstructions, "Keep it folksy.")
	require.NoError(t, err)
	_, err = svc.AppendNote(ctx, b.ID, book.KeyAIInstructions, "author grew up on a farm")
	require.NoError(t, err)

	ch, err := svc.CreateChapter(ctx, b.ID, "One")
	require.NoError(t, err)
	task, err := svc.CreateTask(ctx, b.ID, "expand the barn scene", &ch.ID, book.SourceAI)
	require.NoError(t, err)

	s1, err := svc.CreateSession(ctx, b.ID, "")
	require.NoError(t, err)
	require.NoError(t, svc.SetSummary(ctx, s1.ID, "Talked about childhood."))
	_, err = svc.CreateSession(ctx, b.ID, "")
	require.NoError(t, err)

	prompt, err := pb.Build(ctx, b.ID)
	require.NoError(t, err)

	assert.Contains(t, prompt, "## User's Custom Instructions\nKeep it folksy.")
	assert.Contains(t, prompt, "## Your Own Notes (from previous sessions)\nauthor grew up on a farm")
	assert.Contains(t, prompt, "## Open Tasks")
	assert.Contains(t, prompt, "expand the barn scene (Ch 1)")
	assert.Contains(t, prompt, "## Previous Session Summary\nTalked about childhood.")
	assert.Contains(t, prompt, "- ["+strconv.FormatUint(task.ID, 10)+"] expand the barn scene")
}
