// Package services, iş mantığı katmanını barındırır.
//
// Handler (HTTP) ile Repository (DB) arasında oturur. Service hiçbir zaman
// http.Request/Response bilmez ve doğrudan SQL çalıştırmaz.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/duochat/models"
	"github.com/akinalp/duochat/pkg"
	"github.com/akinalp/duochat/repository"
)

const (
	bcryptCost  = 12
	tokenIssuer = "duochat"
)

// AuthService, kimlik doğrulama ve profil işlemleri.
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)

	// Authenticate, token'ı kullanıcıya çözer. Yan etkisi yoktur.
	//   - eksik / bozuk / süresi dolmuş / imzası geçersiz → pkg.ErrUnauthenticated
	//   - token geçerli ama kullanıcı yok → pkg.ErrUserNotFound
	Authenticate(ctx context.Context, token string) (*models.User, error)

	// ValidateToken, sadece imza ve süre kontrolü yapar (DB'ye gitmez).
	ValidateToken(token string) (*models.TokenClaims, error)

	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	media     MediaStore
	jwtSecret []byte
	expiry    time.Duration
}

// NewAuthService, constructor.
func NewAuthService(
	userRepo repository.UserRepository,
	media MediaStore,
	jwtSecret string,
	expiry time.Duration,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		media:     media,
		jwtSecret: []byte(jwtSecret),
		expiry:    expiry,
	}
}

func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		FullName:     req.FullName,
		Bio:          req.Bio,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storeErr(err)
	}

	log.Printf("[auth] user signed up: %s", user.ID)
	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, pkg.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthenticated)
	}
	if err != nil {
		return nil, storeErr(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", pkg.ErrUnauthenticated)
	}

	return s.respond(user)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", pkg.ErrUnauthenticated)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

func (s *authService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthenticated)
	}
	return claims, nil
}

// UpdateProfile, gönderilen alanları uygular. ProfilePic önce MediaStore'a
// yüklenir, yükleme başarısızsa profil değişmez.
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}

	if req.ProfilePic != nil {
		url, err := s.media.Upload(ctx, *req.ProfilePic)
		if err != nil {
			return nil, mediaErr(err)
		}
		user.ProfilePic = url
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

// issueToken, userID için HS256 access token imzalar.
func (s *authService) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user, Token: token}, nil
}

// storeErr, domain error'larını olduğu gibi bırakır, geri kalan store
// hatalarını pkg.ErrUpstream ile sarar.
func storeErr(err error) error {
	if isDomainErr(err) {
		return err
	}
	return fmt.Errorf("%w: %w", pkg.ErrUpstream, err)
}

// mediaErr, MediaStore hatalarını sınıflandırır. Context iptali dahil
// tanınmayan hatalar upstream sayılır.
func mediaErr(err error) error {
	if errors.Is(err, pkg.ErrBadRequest) || errors.Is(err, pkg.ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: media upload failed: %w", pkg.ErrUpstream, err)
}

func isDomainErr(err error) bool {
	for _, target := range []error{
		pkg.ErrUnauthenticated, pkg.ErrUserNotFound, pkg.ErrNotFound,
		pkg.ErrBadRequest, pkg.ErrConflict, pkg.ErrUpstream,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
