// Package ratelimit, in-memory sabit pencereli istek sınırlayıcıları sağlar.
//
//   - LoginRateLimiter: IP başına login denemesi (brute-force koruması)
//   - MessageRateLimiter: kullanıcı başına mesaj gönderimi, aşımda cooldown
//
// Proje içi hiçbir pakete bağımlı değildir, handlers ve middleware
// import cycle'a girmeden kullanabilir. Tek instance deploy varsayılır.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket, tek bir anahtar (IP veya userID) için pencere durumu.
type bucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = cooldown yok
}

// janitor, süresi dolmuş bucket'ları periyodik olarak silen ortak goroutine.
type janitor struct {
	stop     chan struct{}
	stopOnce sync.Once
}

func startJanitor(every time.Duration, sweep func()) *janitor {
	j := &janitor{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweep()
			case <-j.stop:
				return
			}
		}
	}()
	return j
}

func (j *janitor) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// LoginRateLimiter, IP bazlı login sınırlayıcı.
//
//	limiter := NewLoginRateLimiter(10, 2*time.Minute)
//	if !limiter.Allow(ip) { return 429 }
//	// başarılı login:
//	limiter.Reset(ip)
type LoginRateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	maxAttempts int
	window      time.Duration
	now         func() time.Time
	*janitor
}

// NewLoginRateLimiter, limiter'ı oluşturur ve dakikada bir temizlik yapan
// goroutine'i başlatır. Kapatırken Stop çağrılmalıdır.
func NewLoginRateLimiter(maxAttempts int, window time.Duration) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		buckets:     make(map[string]*bucket),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
	rl.janitor = startJanitor(time.Minute, rl.cleanup)
	return rl
}

// Allow, her çağrıda sayacı artırır, pencere içinde maxAttempts aşıldıysa false döner.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok || now.Sub(b.windowStart) > rl.window {
		rl.buckets[ip] = &bucket{count: 1, windowStart: now}
		return true
	}

	b.count++
	return b.count <= rl.maxAttempts
}

// Reset, başarılı login sonrası IP'nin sayacını siler.
func (rl *LoginRateLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, ip)
}

// RetryAfterSeconds, pencerenin bitmesine kalan süre (Retry-After değeri).
func (rl *LoginRateLimiter) RetryAfterSeconds(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		return 0
	}
	return ceilSeconds(rl.window - rl.now().Sub(b.windowStart))
}

func (rl *LoginRateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, b := range rl.buckets {
		if now.Sub(b.windowStart) > rl.window {
			delete(rl.buckets, ip)
		}
	}
}

// ExtractIP, client IP'sini döner.
//
// trustProxy false ise sadece RemoteAddr kullanılır: X-Forwarded-For ve
// X-Real-IP client tarafından serbestçe yazılabilir, login limiter'ı bu
// header'ları döndürerek atlatılamaz. Sunucu bir reverse proxy arkasındaysa
// trustProxy true verilir, öncelik X-Forwarded-For (ilk değer), X-Real-IP, RemoteAddr.
func ExtractIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}

		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage, saniyeyi okunabilir hale getirir: 120 → "2 minute(s)".
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}

// ceilSeconds, client tam süreyi beklesin diye yukarı yuvarlar.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds()) + 1
}
