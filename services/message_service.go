package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/akinalp/duochat/models"
	"github.com/akinalp/duochat/pkg"
	"github.com/akinalp/duochat/repository"
	"github.com/akinalp/duochat/ws"
)

// MessageService, sohbet iş mantığı ve mesaj teslim orkestrasyonu.
type MessageService interface {
	// ListSidebar, viewer hariç kullanıcı listesi + gönderene göre görülmemiş sayıları.
	ListSidebar(ctx context.Context, viewerID string) (*models.SidebarData, error)

	// GetConversation, other→viewer görülmemiş mesajlarını seen yapar ve
	// iki yönlü sohbeti created_at sırasıyla döner (tek transaction).
	GetConversation(ctx context.Context, viewerID, otherID string) ([]models.Message, error)

	// MarkSeen, tek mesajı seen yapar. Idempotent.
	MarkSeen(ctx context.Context, messageID string) error

	// CreateMessage, mesajı kalıcı hale getirir. Text ve Image ikisi de boşsa
	// pkg.ErrBadRequest döner ve hiçbir şey yazılmaz.
	CreateMessage(ctx context.Context, msg *models.Message) error

	// SendMessage, görseli yükler, mesajı kaydeder ve alıcıya canlı iletir.
	// Kayıt push'tan önce gelir. Push sonucu sadece loglanır.
	SendMessage(ctx context.Context, senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error)
}

type messageService struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	media       MediaStore
	pusher      ws.Pusher
}

// NewMessageService, constructor.
func NewMessageService(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	media MediaStore,
	pusher ws.Pusher,
) MessageService {
	return &messageService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		media:       media,
		pusher:      pusher,
	}
}

func (s *messageService) ListSidebar(ctx context.Context, viewerID string) (*models.SidebarData, error) {
	users, err := s.userRepo.ListExcept(ctx, viewerID)
	if err != nil {
		return nil, storeErr(err)
	}

	unseen, err := s.messageRepo.CountUnseenBySender(ctx, viewerID)
	if err != nil {
		return nil, storeErr(err)
	}

	return &models.SidebarData{Users: users, UnseenMessages: unseen}, nil
}

func (s *messageService) GetConversation(ctx context.Context, viewerID, otherID string) ([]models.Message, error) {
	if strings.TrimSpace(otherID) == "" {
		return nil, fmt.Errorf("%w: user id is required", pkg.ErrBadRequest)
	}

	msgs, err := s.messageRepo.GetConversation(ctx, viewerID, otherID)
	if err != nil {
		return nil, storeErr(err)
	}
	return msgs, nil
}

func (s *messageService) MarkSeen(ctx context.Context, messageID string) error {
	if strings.TrimSpace(messageID) == "" {
		return fmt.Errorf("%w: message id is required", pkg.ErrBadRequest)
	}
	if err := s.messageRepo.MarkSeen(ctx, messageID); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *messageService) CreateMessage(ctx context.Context, msg *models.Message) error {
	msg.Text = strings.TrimSpace(msg.Text)
	msg.Image = strings.TrimSpace(msg.Image)
	if msg.IsEmpty() {
		return fmt.Errorf("%w: message must have text or image", pkg.ErrBadRequest)
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *messageService) SendMessage(ctx context.Context, senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error) {
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return nil, fmt.Errorf("%w: receiver id is required", pkg.ErrBadRequest)
	}

	text := strings.TrimSpace(req.Text)
	image := strings.TrimSpace(req.Image)
	if text == "" && image == "" {
		return nil, fmt.Errorf("%w: message must have text or image", pkg.ErrBadRequest)
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, storeErr(err)
	}

	// 1. Görsel yükleme: başarısızsa hiçbir şey kaydedilmez.
	var imageURL string
	if image != "" {
		url, err := s.media.Upload(ctx, image)
		if err != nil {
			log.Printf("[message] media upload failed for sender %s: %v", senderID, err)
			return nil, mediaErr(err)
		}
		imageURL = url
	}

	// 2. Kalıcılık noktası.
	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      imageURL,
	}
	if err := s.CreateMessage(ctx, msg); err != nil {
		log.Printf("[message] failed to persist message %s→%s: %v", senderID, receiverID, err)
		return nil, err
	}

	// 3. Canlı iletim. Alıcı offline ise mesaj bir sonraki fetch'te gelir.
	if !s.pusher.PushToUser(receiverID, ws.Event{
		Op:   ws.OpNewMessage,
		Data: ws.NewMessageData{Message: msg},
	}) {
		log.Printf("[message] receiver %s offline, message %s stored only", receiverID, msg.ID)
	}

	return msg, nil
}
