package book

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

func (s *Service) CreateSession(ctx context.Context, bookID uint64, mode string) (Session, error) {
	if mode == "" {
		mode = "conversation"
	}
	sess := Session{BookID: bookID, Mode: mode}
	err := s.DB.WithContext(ctx).Create(&sess).Error
	return sess, err
}

// CurrentSession is the most recently created session for the book.
func (s *Service) CurrentSession(ctx context.Context, bookID uint64) (Session, error) {
	var sess Session
	err := s.DB.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at desc, id desc").
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sess, ErrNotFound
	}
	return sess, err
}

// SetSummary writes the wrap summary onto a session.
func (s *Service) SetSummary(ctx context.Context, sessionID uint64, summary string) error {
	res := s.DB.WithContext(ctx).Model(&Session{}).
		Where("id = ?", sessionID).
		Update("summary", summary)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) UpdateSession(ctx context.Context, sessionID uint64, updates map[string]any) (Session, error) {
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&Session{}).
			Where("id = ?", sessionID).
			Updates(updates).Error; err != nil {
			return Session{}, err
		}
	}
	var sess Session
	err := s.DB.WithContext(ctx).First(&sess, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sess, ErrNotFound
	}
	return sess, err
}

// PreviousSessionSummary returns the summary of the session immediately
// preceding the current one. Empty when fewer than two sessions exist or the
// preceding session was never wrapped.
func (s *Service) PreviousSessionSummary(ctx context.Context, bookID uint64) (string, error) {
	var rows []Session
	err := s.DB.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at desc, id desc").
		Limit(2).
		Find(&rows).Error
	if err != nil {
		return "", err
	}
	if len(rows) < 2 || rows[1].Summary == nil {
		return "", nil
	}
	return *rows[1].Summary, nil
}

func (s *Service) AppendMessage(ctx context.Context, sessionID uint64, role, content string) (Message, error) {
	m := Message{SessionID: sessionID, Role: role, Content: content}
	err := s.DB.WithContext(ctx).Create(&m).Error
	return m, err
}

func (s *Service) SessionMessages(ctx context.Context, sessionID uint64) ([]Message, error) {
	var out []Message
	err := s.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}
