package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/akinalp/duochat/models"
	"github.com/akinalp/duochat/pkg"
	"github.com/akinalp/duochat/ws"
)

// memUserRepo, testler için in-memory UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users []*models.User
	seq   int
}

func (r *memUserRepo) add(id, email string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := &models.User{ID: id, Email: email, FullName: id, Bio: "bio"}
	r.users = append(r.users, u)
	return u
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email already in use", pkg.ErrConflict)
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	cp := *user
	r.users = append(r.users, &cp)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pkg.ErrUserNotFound
}

func (r *memUserRepo) ListExcept(_ context.Context, viewerID string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.User, 0)
	for _, u := range r.users {
		if u.ID != viewerID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, u := range r.users {
		if u.ID == user.ID {
			cp := *user
			r.users[i] = &cp
			return nil
		}
	}
	return pkg.ErrUserNotFound
}

// memMessageRepo, testler için in-memory MessageRepository.
// Tek mutex altında çalıştığı için GetConversation doğal olarak atomiktir.
type memMessageRepo struct {
	mu        sync.Mutex
	messages  []*models.Message
	seq       int
	createErr error
}

func (r *memMessageRepo) Create(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	msg.ID = fmt.Sprintf("msg-%d", r.seq)
	msg.Seen = false
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt
	cp := *msg
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *memMessageRepo) GetConversation(_ context.Context, viewerID, otherID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Message, 0)
	for _, m := range r.messages {
		if m.SenderID == otherID && m.ReceiverID == viewerID {
			m.Seen = true
		}
		if (m.SenderID == viewerID && m.ReceiverID == otherID) ||
			(m.SenderID == otherID && m.ReceiverID == viewerID) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) MarkSeen(_ context.Context, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.messages {
		if m.ID == messageID {
			m.Seen = true
			return nil
		}
	}
	return fmt.Errorf("%w: message not found", pkg.ErrNotFound)
}

func (r *memMessageRepo) CountUnseenBySender(_ context.Context, viewerID string) (models.UnseenCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(models.UnseenCounts)
	for _, m := range r.messages {
		if m.ReceiverID == viewerID && !m.Seen {
			counts[m.SenderID]++
		}
	}
	return counts, nil
}

func (r *memMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

// fakeMedia, Upload çağrılarını sayar, err ayarlıysa onu döner.
type fakeMedia struct {
	calls int
	err   error
}

func (m *fakeMedia) Upload(_ context.Context, payload string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("/api/uploads/img-%d.png", m.calls), nil
}

// fakePusher, online kullanıcılara gelen event'leri kaydeder.
type fakePusher struct {
	mu     sync.Mutex
	online map[string]bool
	events map[string][]ws.Event
}

func newFakePusher(online ...string) *fakePusher {
	p := &fakePusher{online: map[string]bool{}, events: map[string][]ws.Event{}}
	for _, id := range online {
		p.online[id] = true
	}
	return p
}

func (p *fakePusher) PushToUser(userID string, event ws.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.online[userID] {
		return false
	}
	p.events[userID] = append(p.events[userID], event)
	return true
}

func (p *fakePusher) received(userID string) []ws.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ws.Event(nil), p.events[userID]...)
}

func (p *fakePusher) recipients() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var ids []string
	for id := range p.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var errStoreDown = errors.New("store unavailable")
