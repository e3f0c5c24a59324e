package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akinalp/duochat/models"
	"github.com/akinalp/duochat/pkg"
	"github.com/akinalp/duochat/pkg/ratelimit"
	"github.com/akinalp/duochat/services"
)

// MessageHandler, sohbet endpoint'lerini yöneten struct.
type MessageHandler struct {
	messageService services.MessageService
	messageLimiter *ratelimit.MessageRateLimiter
	maxBodySize    int64
}

// NewMessageHandler, constructor.
// messageLimiter nil ise gönderim sınırı uygulanmaz.
func NewMessageHandler(
	messageService services.MessageService,
	messageLimiter *ratelimit.MessageRateLimiter,
	maxBodySize int64,
) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		messageLimiter: messageLimiter,
		maxBodySize:    maxBodySize,
	}
}

// ListUsers godoc
// GET /api/messages/users
// Sidebar: viewer hariç kullanıcılar + gönderene göre görülmemiş sayıları.
func (h *MessageHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	sidebar, err := h.messageService.ListSidebar(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, sidebar)
}

// GetConversation godoc
// GET /api/messages/{id}
// {id} karşı taraftır. Karşı taraftan gelen görülmemiş mesajlar seen olur.
func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	msgs, err := h.messageService.GetConversation(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, msgs)
}

// MarkSeen godoc
// PUT /api/messages/mark/{id}
func (h *MessageHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	if err := h.messageService.MarkSeen(r.Context(), r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "message marked as seen"})
}

// Send godoc
// POST /api/messages/send/{id}
// Body: { "text"?, "image"? }. image data URL veya base64.
//
// Kullanıcı bazlı spam koruması: limit aşılınca 429 + Retry-After.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	if h.messageLimiter != nil && !h.messageLimiter.Allow(user.ID) {
		retryAfter := h.messageLimiter.CooldownSeconds(user.ID)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			fmt.Sprintf("you are sending messages too fast, please wait %s",
				ratelimit.FormatRetryMessage(retryAfter)))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.messageService.SendMessage(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, msg)
}
