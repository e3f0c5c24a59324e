package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/duochat/database"
	"github.com/akinalp/duochat/models"
)

// newTestDB, t.TempDir altında migration'ları uygulanmış bir SQLite açar.
// ":memory:" her pool bağlantısına ayrı DB verdiği için dosya kullanılır.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, repo UserRepository, email, name string) *models.User {
	t.Helper()

	u := &models.User{
		Email:        email,
		FullName:     name,
		PasswordHash: "hash",
		Bio:          "hi",
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func sendMessage(t *testing.T, repo MessageRepository, from, to, text string) *models.Message {
	t.Helper()

	m := &models.Message{SenderID: from, ReceiverID: to, Text: text}
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}
