package repository

import (
	"context"

	"github.com/akinalp/duochat/models"
)

// MessageRepository, iki kişilik sohbet mesajları için interface.
type MessageRepository interface {
	// Create, ID ve zaman damgalarını atar, Seen=false yazar.
	Create(ctx context.Context, msg *models.Message) error

	// GetConversation, other→viewer yönündeki görülmemiş mesajları seen yapar
	// ve iki yönlü sohbetin tamamını created_at artan sırayla döner.
	// İkisi tek bir transaction'dır: eşzamanlı bir okuyucu ya eski ya da
	// tamamen güncellenmiş seti görür.
	GetConversation(ctx context.Context, viewerID, otherID string) ([]models.Message, error)

	// MarkSeen, tek bir mesajı seen yapar. Idempotent. Bilinmeyen ID → pkg.ErrNotFound.
	MarkSeen(ctx context.Context, messageID string) error

	// CountUnseenBySender, receiver=viewer ∧ seen=false mesajlarını gönderene göre sayar.
	// Sadece > 0 olan gönderenler map'te bulunur.
	CountUnseenBySender(ctx context.Context, viewerID string) (models.UnseenCounts, error)
}
