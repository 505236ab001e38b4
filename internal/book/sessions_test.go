package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentSession_MostRecentWins(t *testing.T) {
	s := testService(t)
	b := seedBook(t, s)
	ctx := context.TODO()

	_, err := s.CurrentSession(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	s1, err := s.CreateSession(ctx, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "conversation", s1.Mode)

	s2, err := s.CreateSession(ctx, b.ID, "dictation")
	require.NoError(t, err)

	cur, err := s.CurrentSession(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, s2.ID, cur.ID)
	assert.Equal(t, "dictation", cur.Mode)
}

func TestPreviousSessionSummary_SecondMostRecent(t *testing.T) {
	s := testService(t)
	b := seedBook(t, s)
	ctx := context.TODO()

	// no sessions at all
	sum, err := s.PreviousSessionSummary(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, sum)

	s1, err := s.CreateSession(ctx, b.ID, "")
	require.NoError(t, err)

	// one session: still nothing previous
	sum, err = s.PreviousSessionSummary(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, sum)

	require.NoError(t, s.SetSummary(ctx, s1.ID, "We outlined chapter one."))
	_, err = s.CreateSession(ctx, b.ID, "")
	require.NoError(t, err)

	sum, err = s.PreviousSessionSummary(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "We outlined chapter one.", sum)
}

func TestPreviousSessionSummary_UnwrappedSessionReadsEmpty(t *testing.T) {
	s := testService(t)
	b := seedBook(t, s)
	ctx := context.TODO()

	_, err := s.CreateSession(ctx, b.ID, "")
	require.NoError(t, err)
	_, err = s.CreateSession(ctx, b.ID, "")
	require.NoError(t, err)

	sum, err := s.PreviousSessionSummary(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, sum)
}

func TestSetSummary_UnknownSession(t *testing.T) {
	s := testService(t)

	err := s.SetSummary(context.TODO(), 12345, "orphan summary")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionMessages_AppendOnlyOrder(t *testing.T) {
	s := testService(t)
	b := seedBook(t, s)
	ctx := context.TODO()

	sess, err := s.CreateSession(ctx, b.ID, "")
	require.NoError(t, err)

	_, err = s.AppendMessage(ctx, sess.ID, "user", "hello")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, sess.ID, "assistant", "hi there")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, sess.ID, "action", "Added a paragraph")
	require.NoError(t, err)

	msgs, err := s.SessionMessages(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "action", msgs[2].Role)
}
