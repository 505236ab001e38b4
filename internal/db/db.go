package db

import (
	"fmt"

	"quill/internal/auth"
	"quill/internal/book"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&book.Book{},
		&book.Chapter{},
		&book.Paragraph{},
		&book.BookTask{},
		&book.ProjectNote{},
		&book.Session{},
		&book.Message{},
		&book.Event{},
	); err != nil {
		return err
	}

	// One note row per (book, key) — the append flow depends on this.
	if err := gdb.Exec(`create unique index if not exists uq_project_notes_book_key on project_notes(book_id, key);`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_chapters_book_position on chapters(book_id, position);`,
		`create index if not exists idx_paragraphs_chapter_position on paragraphs(chapter_id, position);`,
		`create index if not exists idx_tasks_book_status on book_tasks(book_id, status);`,
		`create index if not exists idx_sessions_book_created on sessions(book_id, created_at desc);`,
		`create index if not exists idx_messages_session_created on messages(session_id, created_at);`,
		`create index if not exists idx_events_entity on events(entity_type, entity_id, action, created_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
