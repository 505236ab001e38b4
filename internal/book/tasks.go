package book

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// TaskView annotates a task with the position of its chapter, when it has one.
type TaskView struct {
	BookTask
	ChapterPosition *int `json:"chapter_position"`
}

// OpenTasks returns open tasks in creation order, chapter positions resolved.
func (s *Service) OpenTasks(ctx context.Context, bookID uint64) ([]TaskView, error) {
	var tasks []BookTask
	err := s.DB.WithContext(ctx).
		Where("book_id = ? AND status = ?", bookID, TaskOpen).
		Order("created_at asc, id asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := TaskView{BookTask: t}
		if t.ChapterID != nil {
			var ch Chapter
			if err := s.DB.WithContext(ctx).First(&ch, *t.ChapterID).Error; err == nil {
				pos := ch.Position
				v.ChapterPosition = &pos
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) CreateTask(ctx context.Context, bookID uint64, content string, chapterID *uint64, source string) (BookTask, error) {
	if source == "" {
		source = SourceUser
	}
	t := BookTask{BookID: bookID, ChapterID: chapterID, Content: content, Status: TaskOpen, Source: source}
	err := s.DB.WithContext(ctx).Create(&t).Error
	return t, err
}

func (s *Service) SetTaskStatus(ctx context.Context, id uint64, status string) (BookTask, error) {
	var t BookTask
	if err := s.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t, ErrNotFound
		}
		return t, err
	}
	if err := s.DB.WithContext(ctx).Model(&BookTask{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return t, err
	}
	t.Status = status
	return t, nil
}
