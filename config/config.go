// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store driver değerleri.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	JWT       JWTConfig
	Upload    UploadConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int

	// TrustProxy, X-Forwarded-For / X-Real-IP header'larına güvenilip
	// güvenilmeyeceği. Sadece reverse proxy arkasında açılmalı.
	TrustProxy bool
}

// StoreConfig, kalıcı depolama ayarları.
// Driver "sqlite" ise Path, "mongo" ise MongoURI + MongoDatabase kullanılır.
type StoreConfig struct {
	Driver        string
	Path          string // SQLite dosya yolu (ör: ./data/duochat.db)
	MongoURI      string // Transaction için replica set gerekir
	MongoDatabase string
}

// JWTConfig, JWT token ayarları.
type JWTConfig struct {
	Secret string        // Token imzalama anahtarı, gizli tutulmalı
	Expiry time.Duration // Varsayılan: 7 gün
}

// UploadConfig, görsel yükleme ayarları.
type UploadConfig struct {
	Dir     string // Dosyaların kaydedileceği dizin
	MaxSize int64  // Byte cinsinden max görsel/body boyutu (varsayılan: 4MB)
}

// CORSConfig, izin verilen origin listesi.
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig, login ve mesaj spam koruması ayarları.
type RateLimitConfig struct {
	LoginAttempts   int
	LoginWindow     time.Duration
	MessageCount    int
	MessageWindow   time.Duration
	MessageCooldown time.Duration
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env dosyası yoksa hata vermez, sessizce devam eder.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	trustProxy, err := strconv.ParseBool(getEnv("TRUST_PROXY", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRUST_PROXY: %w", err)
	}

	expiryHours, err := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "168"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	maxSize, err := strconv.ParseInt(getEnv("UPLOAD_MAX_SIZE", "4194304"), 10, 64) // 4MB
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_SIZE: %w", err)
	}

	loginAttempts, err := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}

	messageCount, err := strconv.Atoi(getEnv("MESSAGE_RATE_LIMIT", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid MESSAGE_RATE_LIMIT: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	driver := strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite))
	if driver != StoreSQLite && driver != StoreMongo {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (use %q or %q)", driver, StoreSQLite, StoreMongo)
	}

	mongoURI := getEnv("MONGO_URI", "")
	if driver == StoreMongo && mongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required when STORE_DRIVER=mongo")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:       getEnv("SERVER_HOST", "0.0.0.0"),
			Port:       port,
			TrustProxy: trustProxy,
		},
		Store: StoreConfig{
			Driver:        driver,
			Path:          getEnv("DATABASE_PATH", "./data/duochat.db"),
			MongoURI:      mongoURI,
			MongoDatabase: getEnv("MONGO_DATABASE", "duochat"),
		},
		JWT: JWTConfig{
			Secret: jwtSecret,
			Expiry: time.Duration(expiryHours) * time.Hour,
		},
		Upload: UploadConfig{
			Dir:     getEnv("UPLOAD_DIR", "./data/uploads"),
			MaxSize: maxSize,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		RateLimit: RateLimitConfig{
			LoginAttempts:   loginAttempts,
			LoginWindow:     2 * time.Minute,
			MessageCount:    messageCount,
			MessageWindow:   5 * time.Second,
			MessageCooldown: 15 * time.Second,
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:3000").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// splitList, virgülle ayrılmış listeyi boşlukları kırparak böler.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
