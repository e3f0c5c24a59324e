package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akinalp/duochat/database"
	"github.com/akinalp/duochat/models"
	"github.com/akinalp/duochat/pkg"
)

// newTestMongo, MONGO_TEST_URI ayarlı değilse testi atlar.
// Transaction testi için URI bir replica set'i göstermelidir.
func newTestMongo(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	m, err := database.NewMongo(ctx, uri, fmt.Sprintf("duochat_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	require.NoError(t, EnsureMongoIndexes(ctx, m.DB))

	t.Cleanup(func() {
		ctx := context.Background()
		_ = m.DB.Drop(ctx)
		_ = m.Close(ctx)
	})
	return m.DB
}

func TestMongoUserRepo(t *testing.T) {
	db := newTestMongo(t)
	repo := NewMongoUserRepo(db)
	ctx := context.Background()

	a := seedUser(t, repo, "a@example.com", "A")
	b := seedUser(t, repo, "b@example.com", "B")

	got, err := repo.GetByEmail(ctx, "A@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	err = repo.Create(ctx, &models.User{Email: "a@example.com", FullName: "dup", PasswordHash: "x", Bio: "b"})
	assert.ErrorIs(t, err, pkg.ErrConflict)

	users, err := repo.ListExcept(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, b.ID, users[0].ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pkg.ErrUserNotFound)
}

func TestMongoMessageRepo(t *testing.T) {
	db := newTestMongo(t)
	repo := NewMongoMessageRepo(db)
	ctx := context.Background()

	sendMessage(t, repo, "a", "b", "one")
	sendMessage(t, repo, "b", "a", "two")
	m := sendMessage(t, repo, "c", "b", "from c")

	counts, err := repo.CountUnseenBySender(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, models.UnseenCounts{"a": 1, "c": 1}, counts)

	msgs, err := repo.GetConversation(ctx, "b", "a")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Text)
	assert.True(t, msgs[0].Seen)
	assert.False(t, msgs[1].Seen)

	require.NoError(t, repo.MarkSeen(ctx, m.ID))
	require.NoError(t, repo.MarkSeen(ctx, m.ID))

	counts, err = repo.CountUnseenBySender(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, counts)

	assert.ErrorIs(t, repo.MarkSeen(ctx, "missing"), pkg.ErrNotFound)
}
