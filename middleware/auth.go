// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware bir fonksiyondur: func(next http.Handler) http.Handler.
// Kendi işini yapar, hata varsa next'i çağırmadan yanıt döner.
package middleware

import (
	"net/http"
	"strings"

	"github.com/akinalp/duochat/handlers"
	"github.com/akinalp/duochat/pkg"
	"github.com/akinalp/duochat/ws"
)

// AuthMiddleware, token doğrulama middleware'ı.
// ws.Authenticator ile aynı interface'i kullanır, HTTP ve WebSocket
// aynı kimlik kuralına tabidir.
type AuthMiddleware struct {
	auth ws.Authenticator
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(auth ws.Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Require, "Authorization: Bearer <token>" zorunlu kılar.
//   - header yok / format yanlış / token geçersiz → 401
//   - token geçerli ama kullanıcı silinmiş → 404
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}

		user, err := m.auth.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			pkg.Error(w, err)
			return
		}

		// Password hash context'te taşınmaz.
		user.PasswordHash = ""

		next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
	})
}
