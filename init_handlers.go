// Package main: Handler katmanı başlatma.
package main

import (
	"github.com/akinalp/duochat/config"
	"github.com/akinalp/duochat/handlers"
	"github.com/akinalp/duochat/ws"
)

// Handlers, handler instance'larını tutan container struct.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Message *handlers.MessageHandler
	WS      *ws.Handler
}

// initHandlers, handler'ları service ve rate limiter dependency'leri ile oluşturur.
func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config) *Handlers {
	maxBody := bodyLimit(cfg.Upload.MaxSize)
	return &Handlers{
		Auth:    handlers.NewAuthHandler(svcs.Auth, limiters.Login, maxBody, cfg.Server.TrustProxy),
		Message: handlers.NewMessageHandler(svcs.Message, limiters.Message, maxBody),
		WS:      ws.NewHandler(hub, svcs.Auth),
	}
}

// bodyLimit, base64 kodlanmış maxSize'lık bir görseli ve JSON zarfını
// kabul edecek body boyutu.
func bodyLimit(maxSize int64) int64 {
	return maxSize*4/3 + 64*1024
}
