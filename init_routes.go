// Package main: HTTP route registration.
package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/akinalp/duochat/middleware"
	"github.com/akinalp/duochat/services"
	"github.com/akinalp/duochat/ws"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Literal path'ler parametrik path'lerden önce tanımlanır:
// "/api/messages/users" → "/api/messages/{id}" öncesinde.
func initRoutes(mux *http.ServeMux, h *Handlers, auth ws.Authenticator, uploadDir string) {
	authMw := middleware.NewAuthMiddleware(auth)
	protected := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","service":"duochat"}`)
	})

	// Auth
	mux.HandleFunc("POST /api/auth/signup", h.Auth.Signup)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.Handle("GET /api/auth/check", protected(h.Auth.Check))
	mux.Handle("PUT /api/auth/update-profile", protected(h.Auth.UpdateProfile))

	// Messages
	mux.Handle("GET /api/messages/users", protected(h.Message.ListUsers))
	mux.Handle("PUT /api/messages/mark/{id}", protected(h.Message.MarkSeen))
	mux.Handle("POST /api/messages/send/{id}", protected(h.Message.Send))
	mux.Handle("GET /api/messages/{id}", protected(h.Message.GetConversation))

	// Yüklenen görseller: GET /api/uploads/abc.png → <uploadDir>/abc.png
	mux.Handle("GET "+services.UploadURLPrefix, uploadsHandler(uploadDir))

	// WebSocket: token query parameter ile doğrulanır.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}

// uploadsHandler, upload dizinindeki dosyaları servis eder.
// Sadece düz dosya isimleri kabul edilir, alt dizin ve traversal 404 döner.
func uploadsHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.StripPrefix(services.UploadURLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}))
}
