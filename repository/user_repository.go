// Package repository, veritabanı erişim katmanını tanımlar.
//
// Service katmanı doğrudan SQL veya Mongo sorgusu yazmaz, bu interface'ler
// üzerinden çalışır. Her interface'in SQLite (sqlite_*.go) ve MongoDB
// (mongo_*.go) implementasyonu vardır, hangisinin kullanılacağını
// config.StoreConfig.Driver belirler.
package repository

import (
	"context"

	"github.com/akinalp/duochat/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
type UserRepository interface {
	// Create, ID ve zaman damgalarını atar. Email çakışmasında pkg.ErrConflict.
	Create(ctx context.Context, user *models.User) error
	// GetByID, bulunamazsa pkg.ErrUserNotFound döner.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail, bulunamazsa pkg.ErrUserNotFound döner.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// ListExcept, viewer hariç tüm kullanıcıları kayıt sırasıyla döner.
	ListExcept(ctx context.Context, viewerID string) ([]models.User, error)
	// Update, full_name, bio ve profile_pic alanlarını yazar, updated_at'i yeniler.
	Update(ctx context.Context, user *models.User) error
}
