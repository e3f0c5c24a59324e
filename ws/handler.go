package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/akinalp/duochat/models"
	"github.com/akinalp/duochat/pkg"
)

// Authenticator, handshake'te token'ı kullanıcıya çözen interface.
// services.AuthService bunu implicit olarak karşılar. ws → services
// bağımlılığı olmadığı için döngü oluşmaz.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// upgrader, HTTP bağlantısını WebSocket'e yükseltir.
// Origin kontrolü CORS katmanına bırakılmıştır.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, /ws bağlantı isteklerini işler.
type Handler struct {
	hub  *Hub
	auth Authenticator
}

// NewHandler, yeni bir WebSocket handler oluşturur.
func NewHandler(hub *Hub, auth Authenticator) *Handler {
	return &Handler{hub: hub, auth: auth}
}

// HandleConnection, token'ı doğrular, bağlantıyı yükseltir ve client'ı kaydeder.
//
// Tarayıcılar upgrade isteğine header ekleyemediği için token query'den gelir:
//
//	ws://server/ws?token=JWT_TOKEN
//
// Doğrulama başarısızsa upgrade yapılmaz, kayıt ve broadcast olmaz.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Authenticate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", user.ID, err)
		return
	}

	client := newClient(h.hub, conn, user.ID)

	// writePump ayrı goroutine'de, readPump bu goroutine'de çalışır.
	// readPump bağlantı kapanana kadar bloklar.
	go client.writePump()
	h.hub.connect(client)
	client.readPump()
}
