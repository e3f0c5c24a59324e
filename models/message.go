package models

import (
	"strings"
	"time"
)

// Message, iki kullanıcı arasındaki tek bir mesaj.
// Text ve Image'den en az biri doludur. Seen yalnızca false→true değişir.
type Message struct {
	ID         string    `json:"id" bson:"_id"`
	SenderID   string    `json:"sender_id" bson:"sender_id"`
	ReceiverID string    `json:"receiver_id" bson:"receiver_id"`
	Text       string    `json:"text,omitempty" bson:"text"`
	Image      string    `json:"image,omitempty" bson:"image"` // MediaStore URL'i
	Seen       bool      `json:"seen" bson:"seen"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// IsEmpty, mesajın ne metin ne görsel taşıdığını bildirir.
func (m *Message) IsEmpty() bool {
	return strings.TrimSpace(m.Text) == "" && strings.TrimSpace(m.Image) == ""
}

// SendMessageRequest, POST /api/messages/send/{id} body'si.
// Image, data URL ("data:image/png;base64,...") veya ham base64'tür.
type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// UnseenCounts, gönderen ID → görülmemiş mesaj sayısı.
// Sadece > 0 olan girdiler bulunur.
type UnseenCounts map[string]int

// SidebarData, GET /api/messages/users yanıtı.
type SidebarData struct {
	Users          []User       `json:"users"`
	UnseenMessages UnseenCounts `json:"unseen_messages"`
}
