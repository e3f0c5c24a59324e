package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/duochat/models"
	"github.com/akinalp/duochat/pkg"
	"github.com/akinalp/duochat/pkg/ratelimit"
)

// stubAuth, services.AuthService'in test stub'ı.
type stubAuth struct {
	loginErr  error
	signupErr error
	updated   *models.UpdateProfileRequest
}

func (s *stubAuth) Signup(_ context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	return &models.AuthResponse{User: &models.User{ID: "u1", Email: req.Email}, Token: "tok"}, nil
}

func (s *stubAuth) Login(_ context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &models.AuthResponse{User: &models.User{ID: "u1", Email: req.Email}, Token: "tok"}, nil
}

func (s *stubAuth) Authenticate(context.Context, string) (*models.User, error) {
	return nil, pkg.ErrUnauthenticated
}

func (s *stubAuth) ValidateToken(string) (*models.TokenClaims, error) {
	return nil, pkg.ErrUnauthenticated
}

func (s *stubAuth) UpdateProfile(_ context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	s.updated = req
	return &models.User{ID: userID, FullName: *req.FullName}, nil
}

// stubMessages, services.MessageService'in test stub'ı.
type stubMessages struct {
	sendErr    error
	sent       []string
	viewer     string
	other      string
	markedSeen string
}

func (s *stubMessages) ListSidebar(_ context.Context, viewerID string) (*models.SidebarData, error) {
	return &models.SidebarData{
		Users:          []models.User{{ID: "b1"}},
		UnseenMessages: models.UnseenCounts{"b1": 2},
	}, nil
}

func (s *stubMessages) GetConversation(_ context.Context, viewerID, otherID string) ([]models.Message, error) {
	s.viewer, s.other = viewerID, otherID
	return []models.Message{{ID: "m1", SenderID: otherID, ReceiverID: viewerID, Text: "hi", Seen: true}}, nil
}

func (s *stubMessages) MarkSeen(_ context.Context, messageID string) error {
	if messageID == "missing" {
		return fmt.Errorf("%w: message not found", pkg.ErrNotFound)
	}
	s.markedSeen = messageID
	return nil
}

func (s *stubMessages) CreateMessage(context.Context, *models.Message) error { return nil }

func (s *stubMessages) SendMessage(_ context.Context, senderID, receiverID string, req *models.SendMessageRequest) (*models.Message, error) {
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.sent = append(s.sent, req.Text)
	return &models.Message{ID: "m1", SenderID: senderID, ReceiverID: receiverID, Text: req.Text}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func asUser(r *http.Request, id string) *http.Request {
	return r.WithContext(WithUser(r.Context(), &models.User{ID: id}))
}

func TestAuthHandlerSignup(t *testing.T) {
	h := NewAuthHandler(&stubAuth{}, nil, 1<<20, false)

	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		jsonBody(t, map[string]string{"email": "a@example.com"})))
	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "tok", resp.Token)

	rec = httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewAuthHandler(&stubAuth{signupErr: fmt.Errorf("%w: email already in use", pkg.ErrConflict)}, nil, 1<<20, false)
	rec = httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		jsonBody(t, map[string]string{"email": "a@example.com"})))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandlerLoginRateLimit(t *testing.T) {
	limiter := ratelimit.NewLoginRateLimiter(2, time.Minute)
	defer limiter.Stop()

	h := NewAuthHandler(&stubAuth{loginErr: pkg.ErrUnauthenticated}, limiter, 1<<20, false)
	login := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, map[string]string{"email": "a@example.com", "password": "nope"}))
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.Login(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, login().Code)
	assert.Equal(t, http.StatusUnauthorized, login().Code)

	rec := login()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestAuthHandlerLoginRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := ratelimit.NewLoginRateLimiter(2, time.Minute)
	defer limiter.Stop()

	h := NewAuthHandler(&stubAuth{loginErr: pkg.ErrUnauthenticated}, limiter, 1<<20, false)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, map[string]string{"email": "a@example.com", "password": "nope"}))
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		h.Login(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestAuthHandlerCredentialsBodyLimit(t *testing.T) {
	// maxBodySize yüksek olsa bile signup/login küçük bir sınırla okunur.
	h := NewAuthHandler(&stubAuth{}, nil, 1<<20, false)
	huge := strings.Repeat("a", 20<<10)

	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		jsonBody(t, map[string]string{"email": "a@example.com", "full_name": "A", "password": huge})))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		jsonBody(t, map[string]string{"email": "a@example.com", "password": huge})))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerLoginResetsLimiter(t *testing.T) {
	limiter := ratelimit.NewLoginRateLimiter(1, time.Minute)
	defer limiter.Stop()

	h := NewAuthHandler(&stubAuth{}, limiter, 1<<20, false)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, map[string]string{"email": "a@example.com", "password": "secret123"}))
		rec := httptest.NewRecorder()
		h.Login(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAuthHandlerCheckAndUpdate(t *testing.T) {
	auth := &stubAuth{}
	h := NewAuthHandler(auth, nil, 1<<20, false)

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/api/auth/check", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.Check(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/auth/check", nil), "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateProfile(rec, asUser(httptest.NewRequest(http.MethodPut, "/api/auth/update-profile",
		jsonBody(t, map[string]string{"full_name": "New Name"})), "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, auth.updated)
	assert.Equal(t, "New Name", *auth.updated.FullName)
}

func TestAuthHandlerUpdateProfileBodyLimit(t *testing.T) {
	h := NewAuthHandler(&stubAuth{}, nil, 16, false)

	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, asUser(httptest.NewRequest(http.MethodPut, "/api/auth/update-profile",
		jsonBody(t, map[string]string{"full_name": "a name that is longer than sixteen bytes"})), "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessageHandlerListAndConversation(t *testing.T) {
	svc := &stubMessages{}
	h := NewMessageHandler(svc, nil, 1<<20)

	rec := httptest.NewRecorder()
	h.ListUsers(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/messages/users", nil), "a1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var sidebar models.SidebarData
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &sidebar))
	assert.Equal(t, models.UnseenCounts{"b1": 2}, sidebar.UnseenMessages)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/messages/b1", nil), "a1")
	req.SetPathValue("id", "b1")
	rec = httptest.NewRecorder()
	h.GetConversation(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1", svc.viewer)
	assert.Equal(t, "b1", svc.other)
}

func TestMessageHandlerMarkSeen(t *testing.T) {
	svc := &stubMessages{}
	h := NewMessageHandler(svc, nil, 1<<20)

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/messages/mark/m1", nil), "a1")
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	h.MarkSeen(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "m1", svc.markedSeen)

	req = asUser(httptest.NewRequest(http.MethodPut, "/api/messages/mark/missing", nil), "a1")
	req.SetPathValue("id", "missing")
	rec = httptest.NewRecorder()
	h.MarkSeen(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageHandlerSend(t *testing.T) {
	svc := &stubMessages{}
	h := NewMessageHandler(svc, nil, 1<<20)

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/messages/send/b1",
		jsonBody(t, models.SendMessageRequest{Text: "hi"})), "a1")
	req.SetPathValue("id", "b1")
	rec := httptest.NewRecorder()
	h.Send(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg models.Message
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &msg))
	assert.Equal(t, "a1", msg.SenderID)
	assert.Equal(t, "b1", msg.ReceiverID)
	assert.False(t, msg.Seen)
}

func TestMessageHandlerSendErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: message must have text or image", pkg.ErrBadRequest), http.StatusBadRequest},
		{fmt.Errorf("%w: receiver", pkg.ErrUserNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: media upload failed", pkg.ErrUpstream), http.StatusBadGateway},
	}
	for _, tc := range cases {
		h := NewMessageHandler(&stubMessages{sendErr: tc.err}, nil, 1<<20)
		req := asUser(httptest.NewRequest(http.MethodPost, "/api/messages/send/b1",
			jsonBody(t, models.SendMessageRequest{})), "a1")
		req.SetPathValue("id", "b1")
		rec := httptest.NewRecorder()
		h.Send(rec, req)
		assert.Equal(t, tc.code, rec.Code)
		assert.False(t, decodeEnvelope(t, rec).Success)
	}
}

func TestMessageHandlerSendRateLimit(t *testing.T) {
	limiter := ratelimit.NewMessageRateLimiter(2, time.Minute, time.Minute)
	defer limiter.Stop()

	svc := &stubMessages{}
	h := NewMessageHandler(svc, limiter, 1<<20)
	send := func() *httptest.ResponseRecorder {
		req := asUser(httptest.NewRequest(http.MethodPost, "/api/messages/send/b1",
			jsonBody(t, models.SendMessageRequest{Text: "spam"})), "a1")
		req.SetPathValue("id", "b1")
		rec := httptest.NewRecorder()
		h.Send(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusCreated, send().Code)
	assert.Equal(t, http.StatusCreated, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Len(t, svc.sent, 2)
}
