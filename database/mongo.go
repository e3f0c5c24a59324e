package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo, MongoDB client'ını ve seçili veritabanını taşır.
// GetConversation multi-document transaction kullandığı için sunucu
// replica set (veya sharded cluster) olmalıdır.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongo, uri'ye bağlanır, primary'ye ping atar ve dbName veritabanını seçer.
func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second).
		SetAppName("duochat")

	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := cli.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Printf("[database] mongodb connected (db=%s)", dbName)
	return &Mongo{Client: cli, DB: cli.Database(dbName)}, nil
}

// Close, client bağlantılarını kapatır.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
