package book

import (
	"encoding/json"
	"time"
)

// Book is the root aggregate. One active book per user.
type Book struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Chapter position is 1-based and dense per book. The position, not the id,
// is the address the AI action protocol uses.
type Chapter struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	BookID    uint64    `gorm:"index;not null" json:"book_id"`
	Title     string    `gorm:"not null" json:"title"`
	Position  int       `gorm:"not null" json:"position"`
	Outline   string    `gorm:"type:text" json:"outline"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Paragraph positions are 1-based and dense per chapter. Paragraphs are never
// hard-deleted by the action flows; moves renumber the whole chapter.
type Paragraph struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	ChapterID uint64    `gorm:"index;not null" json:"chapter_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

const (
	TaskOpen = "open"
	TaskDone = "done"

	SourceUser = "user"
	SourceAI   = "ai"
)

// BookTask lifecycle is open -> done, no reopen.
type BookTask struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	BookID    uint64    `gorm:"index;not null" json:"book_id"`
	ChapterID *uint64   `gorm:"index" json:"chapter_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Status    string    `gorm:"not null;default:'open'" json:"status"`
	Source    string    `gorm:"not null;default:'user'" json:"source"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Reserved project note keys.
const (
	KeyUserInstructions     = "user_instructions"
	KeyAIInstructions       = "ai_instructions"
	KeyLastFeedbackReminder = "last_feedback_reminder"
)

// ProjectNote is a book-scoped key/value pair, unique per (book_id, key).
// user_instructions is replaced on write; ai_instructions is append-only.
type ProjectNote struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	BookID    uint64    `gorm:"index;not null" json:"book_id"`
	Key       string    `gorm:"not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Session rows without a summary were never wrapped; only summarized sessions
// surface as "previous session summary" for future turns.
type Session struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	BookID     uint64    `gorm:"index;not null" json:"book_id"`
	Mode       string    `gorm:"not null;default:'conversation'" json:"mode"`
	Summary    *string   `gorm:"type:text" json:"summary"`
	Transcript *string   `gorm:"type:text" json:"transcript"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// Message is the append-only conversation log of a session.
type Message struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	SessionID uint64    `gorm:"index;not null" json:"session_id"`
	Role      string    `gorm:"not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// Event is the append-only audit log. The most recent edit_paragraph event per
// paragraph is consumed (and deleted) by the single-level undo flow.
type Event struct {
	ID           uint64          `gorm:"primaryKey" json:"id"`
	BookID       uint64          `gorm:"index;not null" json:"book_id"`
	SessionID    *uint64         `gorm:"index" json:"session_id"`
	Action       string          `gorm:"not null" json:"action"`
	EntityType   string          `gorm:"not null" json:"entity_type"`
	EntityID     *uint64         `gorm:"index" json:"entity_id"`
	BeforeState  json.RawMessage `gorm:"type:text" json:"before_state"`
	AfterState   json.RawMessage `gorm:"type:text" json:"after_state"`
	ChatSnapshot json.RawMessage `gorm:"type:text" json:"chat_snapshot"`
	Source       string          `gorm:"not null;default:'user'" json:"source"`
	CreatedAt    time.Time       `gorm:"index;not null" json:"created_at"`
}
