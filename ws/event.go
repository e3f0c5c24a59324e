// Package ws, canlı bağlantıların (WebSocket) yönetimini, presence kaydını
// ve gerçek zamanlı event dağıtımını sağlar.
//
//   - Registry: userID → aktif Client eşlemesi (kullanıcı başına tek bağlantı)
//   - Hub: Registry üzerinden hedefli push ve online listesi broadcast'i
//   - Client: tek bir WebSocket bağlantısı, read/write pump'ları
//   - Handler: token doğrulama + HTTP → WebSocket upgrade
package ws

import "github.com/akinalp/duochat/models"

// Event, WebSocket üzerinden iletilen mesaj zarfı.
//
// Seq her outbound event'te artar, frontend eksik event tespiti için kullanabilir.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client ~30sn'de bir gönderir
	OpTyping    = "typing"    // Yazıyor / yazmayı bıraktı
)

// Server → Client operasyonları
const (
	OpHeartbeatAck = "heartbeat_ack"
	OpOnlineUsers  = "online_users" // Online kullanıcı ID listesi
	OpNewMessage   = "new_message"  // Alıcıya yeni mesaj
	// OpTyping aynı isimle alıcıya relay edilir (payload: TypingData).
)

// OnlineUsersData, online_users event'inin payload'ı.
type OnlineUsersData struct {
	UserIDs []string `json:"user_ids"`
}

// NewMessageData, new_message event'inin payload'ı.
type NewMessageData struct {
	Message *models.Message `json:"message"`
}

// TypingRequest, client'tan gelen typing payload'ı.
type TypingRequest struct {
	ReceiverID string `json:"receiver_id"`
	IsTyping   bool   `json:"is_typing"`
}

// TypingData, alıcıya iletilen typing payload'ı.
type TypingData struct {
	UserID   string `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}
