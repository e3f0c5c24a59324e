package ws

import (
	"sort"
	"sync"
)

// Registry, hangi kullanıcının hangi bağlantı üzerinden ulaşılabilir olduğunu tutar.
//
// Kullanıcı başına en fazla bir Client vardır, son kayıt kazanır.
// Tek bir RWMutex tüm map'i korur. Map dışarıya hiçbir zaman açılmaz,
// okuyucular kopyalanmış snapshot alır.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry, boş bir Registry oluşturur.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register, userID için c'yi kaydeder. Önceden kayıtlı başka bir bağlantı varsa
// onu döner. Eski bağlantı kapatılmaz, kendi transport'u kapanana kadar açık kalır.
func (r *Registry) Register(userID string, c *Client) (previous *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous = r.clients[userID]
	if previous == c {
		previous = nil
	}
	r.clients[userID] = c
	return previous
}

// Unregister, userID'nin kaydı tam olarak c ise siler ve true döner.
// Kayıt başka bir (daha yeni) bağlantıya aitse dokunmaz.
func (r *Registry) Unregister(userID string, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.clients[userID]; ok && cur == c {
		delete(r.clients, userID)
		return true
	}
	return false
}

// Lookup, userID'nin aktif bağlantısını döner.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[userID]
	return c, ok
}

// OnlineUserIDs, kayıtlı kullanıcı ID'lerinin sıralı kopyasını döner.
func (r *Registry) OnlineUserIDs() []string {
	ids, _ := r.snapshot()
	return ids
}

// Len, kayıtlı kullanıcı sayısı.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// snapshot, ID listesini ve client listesini aynı kilit altında alır.
// İki liste aynı sırada ve birbiriyle tutarlıdır.
func (r *Registry) snapshot() ([]string, []*Client) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	clients := make([]*Client, len(ids))
	for i, id := range ids {
		clients[i] = r.clients[id]
	}
	r.mu.RUnlock()

	return ids, clients
}
