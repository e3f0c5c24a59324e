// Package models, uygulamanın domain modellerini ve request DTO'larını tanımlar.
//
// json tag'leri API response/request şeklini, bson tag'leri MongoDB
// dokümanlarının alan adlarını belirler.
package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// User, bir kullanıcıyı temsil eder.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	FullName     string    `json:"full_name" bson:"full_name"`
	PasswordHash string    `json:"-" bson:"password_hash"` // API response'a asla dahil edilmez
	ProfilePic   string    `json:"profile_pic" bson:"profile_pic"`
	Bio          string    `json:"bio" bson:"bio"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// SignupRequest, kayıt olurken frontend'den gelen veri.
// Tüm alanlar zorunludur.
type SignupRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
}

// Validate, alanları trim'ler ve kuralları kontrol eder:
//   - FullName: 1-64 karakter
//   - Email: geçerli adres, küçük harfe çevrilir
//   - Password: minimum 6 karakter
//   - Bio: boş olamaz, max 500 karakter
func (r *SignupRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Bio = strings.TrimSpace(r.Bio)

	if r.FullName == "" || r.Email == "" || r.Password == "" || r.Bio == "" {
		return fmt.Errorf("full_name, email, password and bio are required")
	}
	if utf8.RuneCountInString(r.FullName) > 64 {
		return fmt.Errorf("full name must be at most 64 characters")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("invalid email address")
	}
	if utf8.RuneCountInString(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if utf8.RuneCountInString(r.Bio) > 500 {
		return fmt.Errorf("bio must be at most 500 characters")
	}
	return nil
}

// LoginRequest, email + şifre ile giriş.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in boş alan içermediğini kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// UpdateProfileRequest, profil güncellemesi.
// nil alanlar değişmez. ProfilePic bir data URL (veya ham base64) görseldir,
// MediaStore'a yüklenip dönen URL kaydedilir.
type UpdateProfileRequest struct {
	FullName   *string `json:"full_name"`
	Bio        *string `json:"bio"`
	ProfilePic *string `json:"profile_pic"`
}

// Validate, gönderilen alanları trim'ler ve kontrol eder.
func (r *UpdateProfileRequest) Validate() error {
	if r.FullName == nil && r.Bio == nil && r.ProfilePic == nil {
		return fmt.Errorf("nothing to update")
	}
	if r.FullName != nil {
		v := strings.TrimSpace(*r.FullName)
		if v == "" || utf8.RuneCountInString(v) > 64 {
			return fmt.Errorf("full name must be between 1 and 64 characters")
		}
		r.FullName = &v
	}
	if r.Bio != nil {
		v := strings.TrimSpace(*r.Bio)
		if utf8.RuneCountInString(v) > 500 {
			return fmt.Errorf("bio must be at most 500 characters")
		}
		r.Bio = &v
	}
	if r.ProfilePic != nil && strings.TrimSpace(*r.ProfilePic) == "" {
		return fmt.Errorf("profile_pic must not be empty")
	}
	return nil
}

// AuthResponse, signup/login yanıtı: kullanıcı + access token.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
