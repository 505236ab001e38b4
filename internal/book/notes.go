package book

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Note returns the project note for (bookID, key), or ErrNotFound.
func (s *Service) Note(ctx context.Context, bookID uint64, key string) (ProjectNote, error) {
	var n ProjectNote
	err := s.DB.WithContext(ctx).
		Where("book_id = ? AND key = ?", bookID, key).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return n, ErrNotFound
	}
	return n, err
}

// SetNote replaces the value for (bookID, key), inserting when absent. The
// unique (book_id, key) index keeps this one row per key.
func (s *Service) SetNote(ctx context.Context, bookID uint64, key, value string) (ProjectNote, error) {
	var n ProjectNote
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("book_id = ? AND key = ?", bookID, key).First(&n).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			n = ProjectNote{BookID: bookID, Key: key, Value: value}
			return tx.Create(&n).Error
		}
		if err != nil {
			return err
		}
		n.Value = value
		return tx.Model(&ProjectNote{}).Where("id = ?", n.ID).Update("value", value).Error
	})
	return n, err
}

// AppendNote joins value onto any existing value with a newline. Used for the
// AI's private ai_instructions note, which is never replaced. The
// read-modify-write is not guarded against concurrent turns; last write wins.
func (s *Service) AppendNote(ctx context.Context, bookID uint64, key, value string) (ProjectNote, error) {
	var n ProjectNote
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("book_id = ? AND key = ?", bookID, key).First(&n).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			n = ProjectNote{BookID: bookID, Key: key, Value: value}
			return tx.Create(&n).Error
		}
		if err != nil {
			return err
		}
		if n.Value != "" {
			n.Value = n.Value + "\n" + value
		} else {
			n.Value = value
		}
		return tx.Model(&ProjectNote{}).Where("id = ?", n.ID).Update("value", n.Value).Error
	})
	return n, err
}
