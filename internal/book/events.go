package book

import (
	"context"
	"encoding/json"
)

// EventInput carries one audit record. Before/After/ChatSnapshot are
// serialized to JSON; nil values stay null.
type EventInput struct {
	BookID       uint64
	SessionID    *uint64
	Action       string
	EntityType   string
	EntityID     *uint64
	Before       any
	After        any
	ChatSnapshot any
	Source       string
}

func (s *Service) LogEvent(ctx context.Context, in EventInput) error {
	ev := Event{
		BookID:     in.BookID,
		SessionID:  in.SessionID,
		Action:     in.Action,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		Source:     in.Source,
	}
	if ev.Source == "" {
		ev.Source = SourceUser
	}
	if in.Before != nil {
		b, err := json.Marshal(in.Before)
		if err != nil {
			return err
		}
		ev.BeforeState = b
	}
	if in.After != nil {
		b, err := json.Marshal(in.After)
		if err != nil {
			return err
		}
		ev.AfterState = b
	}
	if in.ChatSnapshot != nil {
		b, err := json.Marshal(in.ChatSnapshot)
		if err != nil {
			return err
		}
		ev.ChatSnapshot = b
	}
	return s.DB.WithContext(ctx).Create(&ev).Error
}
