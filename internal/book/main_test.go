package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&Book{}, &Chapter{}, &Paragraph{}, &BookTask{},
		&ProjectNote{}, &Session{}, &Message{}, &Event{},
	))
	return &Service{DB: db}
}

func seedBook(t *testing.T, s *Service) Book {
	t.Helper()
	b, err := s.CreateBook(context.TODO(), 1, "Test Book")
	require.NoError(t, err)
	return b
}
