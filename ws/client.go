package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: tek bir frame yazmak için maksimum süre.
	writeWait = 10 * time.Second

	// pongWait: 3 heartbeat kaçırma = 30s × 3. Bu sürede hiçbir şey
	// okunmazsa bağlantı kopmuş sayılır.
	pongWait = 90 * time.Second

	// maxMessageSize: client'ın gönderebileceği maksimum frame boyutu.
	// Mesaj ve görseller HTTP ile gelir, WS'ten sadece küçük kontrol event'leri gelir.
	maxMessageSize = 4096

	// sendBufferSize: Buffer dolarsa client yavaş sayılır ve düşürülür.
	sendBufferSize = 256
)

var (
	errClientClosed = errors.New("client closed")
	errSendFull     = errors.New("send buffer full")
)

// Client, tek bir canlı bağlantı.
//
// Yaşam döngüsü: Opening (handshake) → Registered (Hub.connect) → Closed.
// send channel'ı hiç kapatılmaz. Kapanış done channel'ı ile bildirilir,
// böylece kapanmış bir client'a push panic'e yol açmaz.
type Client struct {
	ID       string
	UserID   string
	OpenedAt time.Time

	hub  *Hub
	conn *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex // conn yazmalarını korur
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		UserID:   userID,
		OpenedAt: time.Now(),
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// enqueue, veriyi bloklamadan send buffer'a koyar.
func (c *Client) enqueue(data []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		return errSendFull
	}
}

// Close, client'ı kapalı işaretler. WritePump close frame'i yazıp
// bağlantıyı kapatır, bu da ReadPump'ı sonlandırır. Birden fazla çağrı güvenlidir.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Closed, Close çağrılmış mı.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// readPump, bağlantıdan gelen event'leri okur. Handler goroutine'inde çalışır,
// bağlantı kapanana kadar bloklar. Çıkışta Hub'dan ayrılır.
func (c *Client) readPump() {
	defer func() {
		c.hub.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for user %s: %v", c.UserID, err)
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for user %s: %v", c.UserID, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("[ws] invalid message from user %s: %v", c.UserID, err)
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for user %s: %v", c.UserID, err)
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	case OpTyping:
		c.handleTyping(event)

	default:
		log.Printf("[ws] unknown op from user %s: %s", c.UserID, event.Op)
	}
}

// handleTyping, typing durumunu sadece alıcıya iletir. Saklanmaz, alıcı
// offline ise düşer.
func (c *Client) handleTyping(event Event) {
	// event.Data tipi any, TypingRequest'e JSON üzerinden çevrilir.
	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return
	}

	var req TypingRequest
	if err := json.Unmarshal(dataBytes, &req); err != nil {
		return
	}
	if req.ReceiverID == "" || req.ReceiverID == c.UserID {
		return
	}

	c.hub.PushToUser(req.ReceiverID, Event{
		Op:   OpTyping,
		Data: TypingData{UserID: c.UserID, IsTyping: req.IsTyping},
	})
}

// sendEvent, bu client'a doğrudan event gönderir (registry'den bağımsız).
func (c *Client) sendEvent(event Event) {
	data, err := c.hub.marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for user %s: %v", c.UserID, err)
		return
	}

	if err := c.enqueue(data); errors.Is(err, errSendFull) {
		log.Printf("[ws] send buffer full for user %s, dropping connection", c.UserID)
		go c.hub.disconnect(c)
	}
}

// writePump, send buffer'daki mesajları bağlantıya yazar.
// Close çağrılınca close frame yazıp bağlantıyı kapatır.
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case message := <-c.send:
			if err := c.writeMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.done:
			_ = c.writeMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// writeMessage, gorilla/websocket aynı anda tek yazıcıya izin verdiği için mutex altında yazar.
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
