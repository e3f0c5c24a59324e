// Package main, duochat backend uygulamasının giriş noktasıdır.
//
// Wire-up sırası:
//  1. Config'i yükle
//  2. Store'a bağlan, repository'leri oluştur (SQLite veya MongoDB)
//  3. Presence registry + WebSocket Hub
//  4. Service'ler ve rate limiter'lar
//  5. Handler'lar, middleware, route'lar
//  6. CORS
//  7. HTTP Server + graceful shutdown
//
// Global değişken yok, her şey burada oluşturulup birbirine bağlanır.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/duochat/config"
	"github.com/akinalp/duochat/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] duochat server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d, store=%s)", cfg.Server.Port, cfg.Store.Driver)

	// ─── 2. Store + Repository Layer ───
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	repos, err := initRepositories(startCtx, cfg.Store)
	cancelStart()
	if err != nil {
		log.Fatalf("[main] failed to initialize store: %v", err)
	}

	// ─── 3. Presence + Hub ───
	hub := ws.NewHub(ws.NewRegistry())

	// ─── 4. Service Layer ───
	svcs, limiters, err := initServices(repos, hub, cfg)
	if err != nil {
		log.Fatalf("[main] failed to initialize services: %v", err)
	}

	// ─── 5. Handlers + Routes ───
	h := initHandlers(svcs, limiters, hub, cfg)
	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth, cfg.Upload.Dir)

	// ─── 6. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
	})

	// ─── 7. HTTP Server ───
	// WriteTimeout yok: WebSocket bağlantıları kendi write deadline'ını yönetir.
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           corsHandler.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce canlı bağlantılar, sonra HTTP server (5sn), en son store.
	log.Printf("[main] closing connections of %d online users", hub.Registry().Len())
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] forced shutdown: %v", err)
	}

	limiters.Stop()

	if err := repos.Close(ctx); err != nil {
		log.Printf("[main] failed to close store: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
