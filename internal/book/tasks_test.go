package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenTasks_ResolvesChapterPositions(t *testing.T) {
	s := testService(t)
	b := seedBook(t, s)
	ctx := context.TODO()

	ch, err := s.CreateChapter(ctx, b.ID, "One")
	require.NoError(t, err)

	_, err = s.CreateTask(ctx, b.ID, "fix the intro", &ch.ID, SourceAI)
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, b.ID, "think of a title", nil, "")
	require.NoError(t, err)

	tasks, err := s.OpenTasks(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "fix the intro", tasks[0].Content)
	assert.Equal(t, SourceAI, tasks[0].Source)
	require.NotNil(t, tasks[0].ChapterPosition)
	assert.Equal(t, 1, *tasks[0].ChapterPosition)

	assert.Equal(t, SourceUser, tasks[1].Source)
	assert.Nil(t, tasks[1].ChapterPosition)
}

func TestSetTaskStatus_DoneDropsFromOpenList(t *testing.T) {
	s := testService(t)
	b := seedBook(t, s)
	ctx := context.TODO()

	task, err := s.CreateTask(ctx, b.ID, "write more", nil, "")
	require.NoError(t, err)

	done, err := s.SetTaskStatus(ctx, task.ID, TaskDone)
	require.NoError(t, err)
	assert.Equal(t, TaskDone, done.Status)

	tasks, err := s.OpenTasks(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = s.SetTaskStatus(ctx, 999, TaskDone)
	assert.ErrorIs(t, err, ErrNotFound)
}
