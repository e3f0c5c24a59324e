package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"
)

// Pusher, service katmanının canlı bağlantılara event göndermek için
// kullandığı interface. Service'ler Hub'a değil buna bağımlıdır.
type Pusher interface {
	PushToUser(userID string, event Event) bool
}

// Hub, Registry üzerinden hedefli push ve online listesi broadcast'i yapar.
//
// Push bloklamaz: alıcının buffer'ı doluysa push false döner ve o client
// arka planda düşürülür, diğer alıcılar etkilenmez.
type Hub struct {
	registry *Registry

	// seq: her outbound event'e verilen artan sayaç.
	seq atomic.Int64

	// rosterMu: online_users broadcast'lerini sıraya koyar. Snapshot alma ve
	// kuyruğa koyma aynı kilit altında olduğu için bir client eski bir listeyi
	// yenisinden sonra alamaz.
	rosterMu sync.Mutex
}

// NewHub, verilen Registry ile Hub oluşturur.
func NewHub(registry *Registry) *Hub {
	return &Hub{registry: registry}
}

// Registry, Hub'ın kullandığı presence kaydını döner.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// OnlineUserIDs, online kullanıcı ID'lerinin sıralı snapshot'ı.
func (h *Hub) OnlineUserIDs() []string {
	return h.registry.OnlineUserIDs()
}

// PushToUser, event'i userID'nin aktif bağlantısına kuyruklar.
// Kullanıcı offline ise, client kapanmışsa veya buffer doluysa false döner.
// Kuyruğa alma veya yeniden deneme yoktur.
func (h *Hub) PushToUser(userID string, event Event) bool {
	c, ok := h.registry.Lookup(userID)
	if !ok {
		return false
	}

	data, err := h.marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal %s event: %v", event.Op, err)
		return false
	}

	return h.deliver(c, data)
}

// BroadcastRoster, online_users event'ini tüm kayıtlı client'lara gönderir.
// Her başarılı kayıt ve her etkili kayıt silme sonrası çağrılır.
func (h *Hub) BroadcastRoster() {
	h.rosterMu.Lock()
	defer h.rosterMu.Unlock()

	ids, clients := h.registry.snapshot()

	data, err := h.marshal(Event{Op: OpOnlineUsers, Data: OnlineUsersData{UserIDs: ids}})
	if err != nil {
		log.Printf("[ws] failed to marshal roster: %v", err)
		return
	}

	for _, c := range clients {
		h.deliver(c, data)
	}
}

// Shutdown, tüm kayıtlı bağlantıları kapatır. Graceful shutdown sırasında çağrılır.
func (h *Hub) Shutdown() {
	_, clients := h.registry.snapshot()
	for _, c := range clients {
		h.registry.Unregister(c.UserID, c)
		c.Close()
	}
	log.Printf("[ws] hub shut down, %d connections closed", len(clients))
}

// connect, handshake'i geçmiş client'ı kaydeder ve roster'ı yayınlar.
// Aynı kullanıcının önceki bağlantısı kapatılmaz, sadece artık push almaz.
func (h *Hub) connect(c *Client) {
	if prev := h.registry.Register(c.UserID, c); prev != nil {
		log.Printf("[ws] user %s: connection %s superseded by %s", c.UserID, prev.ID, c.ID)
	} else {
		log.Printf("[ws] client connected: user=%s conn=%s", c.UserID, c.ID)
	}
	h.BroadcastRoster()
}

// disconnect, idempotent'tir. Kayıt gerçekten bu client'a aitse siler ve
// roster'ı yayınlar. Her durumda client'ı kapatır.
func (h *Hub) disconnect(c *Client) {
	if h.registry.Unregister(c.UserID, c) {
		log.Printf("[ws] client disconnected: user=%s conn=%s", c.UserID, c.ID)
		h.BroadcastRoster()
	}
	c.Close()
}

// deliver, bloklamadan kuyruklar. Buffer doluysa client'ı asenkron düşürür.
func (h *Hub) deliver(c *Client, data []byte) bool {
	err := c.enqueue(data)
	if err == nil {
		return true
	}
	if errors.Is(err, errSendFull) {
		log.Printf("[ws] send buffer full for user %s, dropping connection %s", c.UserID, c.ID)
		go h.disconnect(c)
	}
	return false
}

func (h *Hub) marshal(event Event) ([]byte, error) {
	event.Seq = h.seq.Add(1)
	return json.Marshal(event)
}
