package handlers

import (
	"context"

	"github.com/akinalp/duochat/models"
)

// contextKey, context.Value çakışmalarını önlemek için özel tip.
type contextKey string

// UserContextKey, auth middleware'ın doğruladığı kullanıcıyı taşır.
const UserContextKey contextKey = "user"

// UserFromContext, auth middleware'ın eklediği kullanıcıyı döner.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// WithUser, kullanıcıyı context'e ekler.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
