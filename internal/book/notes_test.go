package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetNote_ReplacesValue(t *testing.T) {
	s := testService(t)
	b := seedBook(t, s)
	ctx := context.TODO()

	_, err := s.Note(ctx, b.ID, KeyUserInstructions)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.SetNote(ctx, b.ID, KeyUserInstructions, "first")
	require.NoError(t, err)
	n, err := s.SetNote(ctx, b.ID, KeyUserInstructions, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", n.Value)

	var count int64
	require.NoError(t, s.DB.Model(&ProjectNote{}).
		Where("book_id = ? AND key = ?", b.ID, KeyUserInstructions).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAppendNote_JoinsWithNewlines(t *testing.T) {
	s := testService(t)
	b := seedBook(t, s)
	ctx := context.TODO()

	n, err := s.AppendNote(ctx, b.ID, KeyAIInstructions, "remember the dog's name")
	require.NoError(t, err)
	assert.Equal(t, "remember the dog's name", n.Value)

	n, err = s.AppendNote(ctx, b.ID, KeyAIInstructions, "author prefers short chapters")
	require.NoError(t, err)
	assert.Equal(t, "remember the dog's name\nauthor prefers short chapters", n.Value)

	var count int64
	require.NoError(t, s.DB.Model(&ProjectNote{}).
		Where("book_id = ? AND key = ?", b.ID, KeyAIInstructions).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestNotes_ScopedPerBook(t *testing.T) {
	s := testService(t)
	b1 := seedBook(t, s)
	ctx := context.TODO()

	b2, err := s.CreateBook(ctx, 2, "Other Book")
	require.NoError(t, err)

	_, err = s.SetNote(ctx, b1.ID, KeyUserInstructions, "mine")
	require.NoError(t, err)

	_, err = s.Note(ctx, b2.ID, KeyUserInstructions)
	assert.ErrorIs(t, err, ErrNotFound)
}
