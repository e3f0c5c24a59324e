// Package main: Service katmanı başlatma.
package main

import (
	"github.com/akinalp/duochat/config"
	"github.com/akinalp/duochat/pkg/ratelimit"
	"github.com/akinalp/duochat/services"
	"github.com/akinalp/duochat/ws"
)

// Services, service instance'larını tutan container struct.
type Services struct {
	Auth    services.AuthService
	Message services.MessageService
}

// RateLimiters, rate limiter instance'larını tutan container.
type RateLimiters struct {
	Login   *ratelimit.LoginRateLimiter
	Message *ratelimit.MessageRateLimiter
}

// Stop, limiter'ların temizlik goroutine'lerini durdurur.
func (l *RateLimiters) Stop() {
	l.Login.Stop()
	l.Message.Stop()
}

// initServices, service'leri ve rate limiter'ları oluşturur.
// hub, MessageService'e ws.Pusher olarak geçer.
func initServices(repos *Repositories, hub *ws.Hub, cfg *config.Config) (*Services, *RateLimiters, error) {
	media, err := services.NewDiskMediaStore(cfg.Upload.Dir, cfg.Upload.MaxSize)
	if err != nil {
		return nil, nil, err
	}

	svcs := &Services{
		Auth:    services.NewAuthService(repos.User, media, cfg.JWT.Secret, cfg.JWT.Expiry),
		Message: services.NewMessageService(repos.User, repos.Message, media, hub),
	}

	limiters := &RateLimiters{
		Login: ratelimit.NewLoginRateLimiter(cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow),
		Message: ratelimit.NewMessageRateLimiter(
			cfg.RateLimit.MessageCount, cfg.RateLimit.MessageWindow, cfg.RateLimit.MessageCooldown,
		),
	}

	return svcs, limiters, nil
}
