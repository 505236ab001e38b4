package book

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")
var ErrNothingToUndo = errors.New("nothing to undo")

type Service struct {
	DB *gorm.DB
}

// ChapterDetail is a chapter with its paragraphs in position order.
type ChapterDetail struct {
	Chapter
	Paragraphs []Paragraph `json:"paragraphs"`
}

func (s *Service) CreateBook(ctx context.Context, userID uint64, title string) (Book, error) {
	b := Book{UserID: userID, Title: title}
	err := s.DB.WithContext(ctx).Create(&b).Error
	return b, err
}

func (s *Service) BookForUser(ctx context.Context, userID uint64) (Book, error) {
	var b Book
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return b, ErrNotFound
	}
	return b, err
}

func (s *Service) GetBook(ctx context.Context, id uint64) (Book, error) {
	var b Book
	err := s.DB.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return b, ErrNotFound
	}
	return b, err
}

// Chapters returns the book's chapters in position order.
func (s *Service) Chapters(ctx context.Context, bookID uint64) ([]Chapter, error) {
	var out []Chapter
	err := s.DB.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("position asc").
		Find(&out).Error
	return out, err
}

// CreateChapter appends at position max+1.
func (s *Service) CreateChapter(ctx context.Context, bookID uint64, title string) (Chapter, error) {
	var ch Chapter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		if err := tx.Model(&Chapter{}).
			Where("book_id = ?", bookID).
			Select("coalesce(max(position), 0)").
			Scan(&maxPos).Error; err != nil {
			return err
		}
		ch = Chapter{BookID: bookID, Title: title, Position: maxPos + 1}
		return tx.Create(&ch).Error
	})
	return ch, err
}

// ChapterDetail loads one chapter, its ordered paragraphs, and the word count
// of the whole book the chapter belongs to.
func (s *Service) ChapterDetail(ctx context.Context, chapterID uint64) (ChapterDetail, int, error) {
	var ch Chapter
	if err := s.DB.WithContext(ctx).First(&ch, chapterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ChapterDetail{}, 0, ErrNotFound
		}
		return ChapterDetail{}, 0, err
	}

	var paras []Paragraph
	if err := s.DB.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("position asc").
		Find(&paras).Error; err != nil {
		return ChapterDetail{}, 0, err
	}

	wc, err := s.BookWordCount(ctx, ch.BookID)
	if err != nil {
		return ChapterDetail{}, 0, err
	}

	return ChapterDetail{Chapter: ch, Paragraphs: paras}, wc, nil
}

type ChapterPatch struct {
	Title   *string `json:"title"`
	Outline *string `json:"outline"`
}

// UpdateChapter patches title/outline and logs an edit_chapter audit event.
func (s *Service) UpdateChapter(ctx context.Context, id uint64, patch ChapterPatch) (Chapter, error) {
	var before Chapter
	if err := s.DB.WithContext(ctx).First(&before, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Chapter{}, ErrNotFound
		}
		return Chapter{}, err
	}

	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Outline != nil {
		updates["outline"] = *patch.Outline
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&Chapter{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return Chapter{}, err
		}
	}

	var after Chapter
	if err := s.DB.WithContext(ctx).First(&after, id).Error; err != nil {
		return Chapter{}, err
	}

	_ = s.LogEvent(ctx, EventInput{
		BookID:     after.BookID,
		Action:     "edit_chapter",
		EntityType: "chapter",
		EntityID:   &id,
		Before:     before,
		After:      after,
	})
	return after, nil
}

// AddParagraph appends at position max+1 within the chapter.
func (s *Service) AddParagraph(ctx context.Context, chapterID uint64, content string) (Paragraph, error) {
	var p Paragraph
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch Chapter
		if err := tx.First(&ch, chapterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var maxPos int
		if err := tx.Model(&Paragraph{}).
			Where("chapter_id = ?", chapterID).
			Select("coalesce(max(position), 0)").
			Scan(&maxPos).Error; err != nil {
			return err
		}
		p = Paragraph{ChapterID: chapterID, Content: content, Position: maxPos + 1}
		return tx.Create(&p).Error
	})
	return p, err
}

// EditParagraph replaces content, logs an edit_paragraph event with
// before/after snapshots, and returns the fresh book word count.
func (s *Service) EditParagraph(ctx context.Context, id uint64, content string) (Paragraph, int, error) {
	var before Paragraph
	if err := s.DB.WithContext(ctx).First(&before, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Paragraph{}, 0, ErrNotFound
		}
		return Paragraph{}, 0, err
	}

	if err := s.DB.WithContext(ctx).Model(&Paragraph{}).
		Where("id = ?", id).
		Update("content", content).Error; err != nil {
		return Paragraph{}, 0, err
	}

	var after Paragraph
	if err := s.DB.WithContext(ctx).First(&after, id).Error; err != nil {
		return Paragraph{}, 0, err
	}

	var ch Chapter
	if err := s.DB.WithContext(ctx).First(&ch, after.ChapterID).Error; err != nil {
		return Paragraph{}, 0, err
	}

	_ = s.LogEvent(ctx, EventInput{
		BookID:     ch.BookID,
		Action:     "edit_paragraph",
		EntityType: "paragraph",
		EntityID:   &id,
		Before:     before,
		After:      after,
	})

	wc, err := s.BookWordCount(ctx, ch.BookID)
	return after, wc, err
}

// MoveParagraph moves a paragraph to newPos within its chapter and renumbers
// so positions stay a dense 1..n sequence. newPos is clamped to the valid
// range.
func (s *Service) MoveParagraph(ctx context.Context, id uint64, newPos int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Paragraph
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var all []Paragraph
		if err := tx.Where("chapter_id = ?", p.ChapterID).
			Order("position asc").
			Find(&all).Error; err != nil {
			return err
		}

		ordered := make([]Paragraph, 0, len(all))
		for _, q := range all {
			if q.ID != p.ID {
				ordered = append(ordered, q)
			}
		}
		if newPos < 1 {
			newPos = 1
		}
		if newPos > len(all) {
			newPos = len(all)
		}
		idx := newPos - 1
		ordered = append(ordered[:idx], append([]Paragraph{p}, ordered[idx:]...)...)

		for i, q := range ordered {
			if q.Position == i+1 {
				continue
			}
			if err := tx.Model(&Paragraph{}).
				Where("id = ?", q.ID).
				Update("position", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// BookWordCount recomputes from scratch across every paragraph in the book.
func (s *Service) BookWordCount(ctx context.Context, bookID uint64) (int, error) {
	var contents []string
	err := s.DB.WithContext(ctx).Model(&Paragraph{}).
		Joins("JOIN chapters ON chapters.id = paragraphs.chapter_id").
		Where("chapters.book_id = ?", bookID).
		Pluck("paragraphs.content", &contents).Error
	if err != nil {
		return 0, err
	}
	return CountWords(contents), nil
}

// UndoParagraphEdit restores the before-state of the latest edit_paragraph
// event for the paragraph and deletes that event, so the next undo reaches one
// revision further back. Single level, destructive.
func (s *Service) UndoParagraphEdit(ctx context.Context, id uint64) (Paragraph, int, error) {
	var ev Event
	err := s.DB.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND action = ?", "paragraph", id, "edit_paragraph").
		Order("created_at desc, id desc").
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(ev.BeforeState) == 0) {
		return Paragraph{}, 0, ErrNothingToUndo
	}
	if err != nil {
		return Paragraph{}, 0, err
	}

	var before Paragraph
	if err := json.Unmarshal(ev.BeforeState, &before); err != nil {
		return Paragraph{}, 0, ErrNothingToUndo
	}

	var current Paragraph
	if err := s.DB.WithContext(ctx).First(&current, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Paragraph{}, 0, ErrNotFound
		}
		return Paragraph{}, 0, err
	}

	if err := s.DB.WithContext(ctx).Model(&Paragraph{}).
		Where("id = ?", id).
		Update("content", before.Content).Error; err != nil {
		return Paragraph{}, 0, err
	}
	if err := s.DB.WithContext(ctx).Delete(&Event{}, ev.ID).Error; err != nil {
		return Paragraph{}, 0, err
	}

	var restored Paragraph
	if err := s.DB.WithContext(ctx).First(&restored, id).Error; err != nil {
		return Paragraph{}, 0, err
	}
	var ch Chapter
	if err := s.DB.WithContext(ctx).First(&ch, restored.ChapterID).Error; err != nil {
		return Paragraph{}, 0, err
	}

	_ = s.LogEvent(ctx, EventInput{
		BookID:     ch.BookID,
		Action:     "undo_edit_paragraph",
		EntityType: "paragraph",
		EntityID:   &id,
		Before:     current,
		After:      restored,
	})

	wc, err := s.BookWordCount(ctx, ch.BookID)
	return restored, wc, err
}
