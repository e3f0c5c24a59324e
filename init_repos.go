// Package main: Repository katmanı başlatma.
//
// initRepositories, STORE_DRIVER'a göre SQLite veya MongoDB repository'lerini
// oluşturur. Service katmanı yalnızca interface'leri görür.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/akinalp/duochat/config"
	"github.com/akinalp/duochat/database"
	"github.com/akinalp/duochat/repository"
)

// Repositories, repository instance'larını ve store kapatma fonksiyonunu taşır.
type Repositories struct {
	User    repository.UserRepository
	Message repository.MessageRepository

	close func(ctx context.Context) error
}

// Close, altta yatan store bağlantısını kapatır.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// initRepositories, seçili store'a bağlanır ve repository'leri oluşturur.
func initRepositories(ctx context.Context, cfg config.StoreConfig) (*Repositories, error) {
	switch cfg.Driver {
	case config.StoreMongo:
		mdb, err := database.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureMongoIndexes(ctx, mdb.DB); err != nil {
			_ = mdb.Close(ctx)
			return nil, err
		}
		log.Printf("[main] store: mongodb (%s)", cfg.MongoDatabase)
		return &Repositories{
			User:    repository.NewMongoUserRepo(mdb.DB),
			Message: repository.NewMongoMessageRepo(mdb.DB),
			close:   mdb.Close,
		}, nil

	case config.StoreSQLite:
		db, err := database.New(cfg.Path, database.Migrations())
		if err != nil {
			return nil, err
		}
		log.Printf("[main] store: sqlite (%s)", cfg.Path)
		return newSQLiteRepositories(db), nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// newSQLiteRepositories, açık bir SQLite bağlantısından repository'leri kurar.
// *sql.DB thread-safe connection pool'dur, paylaşılması güvenlidir.
func newSQLiteRepositories(db *database.DB) *Repositories {
	return &Repositories{
		User:    repository.NewSQLiteUserRepo(db.Conn),
		Message: repository.NewSQLiteMessageRepo(db.Conn),
		close:   func(context.Context) error { return db.Close() },
	}
}
