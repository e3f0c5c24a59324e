package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akinalp/duochat/models"
	"github.com/akinalp/duochat/pkg"
)

// mongoMessageRepo, MessageRepository interface'inin MongoDB implementasyonu.
type mongoMessageRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoMessageRepo, constructor, interface döner.
func NewMongoMessageRepo(db *mongo.Database) MessageRepository {
	return &mongoMessageRepo{
		client: db.Client(),
		coll:   db.Collection(messagesCollection),
	}
}

func (r *mongoMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	now := time.Now().UTC()
	msg.ID = primitive.NewObjectID().Hex()
	msg.Seen = false
	msg.CreatedAt = now
	msg.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetConversation, UpdateMany + Find tek session transaction'ı içinde çalışır.
func (r *mongoMessageRepo) GetConversation(ctx context.Context, viewerID, otherID string) ([]models.Message, error) {
	sess, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	messages := make([]models.Message, 0)
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		// WithTransaction geçici hatalarda callback'i tekrar çağırabilir.
		messages = messages[:0]

		if _, err := r.coll.UpdateMany(sc,
			bson.M{"sender_id": otherID, "receiver_id": viewerID, "seen": false},
			bson.M{"$set": bson.M{"seen": true, "updated_at": time.Now().UTC()}},
		); err != nil {
			return nil, fmt.Errorf("failed to mark conversation seen: %w", err)
		}

		cur, err := r.coll.Find(sc,
			bson.M{"$or": bson.A{
				bson.M{"sender_id": viewerID, "receiver_id": otherID},
				bson.M{"sender_id": otherID, "receiver_id": viewerID},
			}},
			options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query conversation: %w", err)
		}
		if err := cur.All(sc, &messages); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *mongoMessageRepo) MarkSeen(ctx context.Context, messageID string) error {
	var current struct {
		Seen bool `bson:"seen"`
	}
	err := r.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: message not found", pkg.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get message: %w", err)
	}
	if current.Seen {
		return nil
	}

	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": messageID, "seen": false},
		bson.M{"$set": bson.M{"seen": true, "updated_at": time.Now().UTC()}},
	); err != nil {
		return fmt.Errorf("failed to mark message seen: %w", err)
	}
	return nil
}

func (r *mongoMessageRepo) CountUnseenBySender(ctx context.Context, viewerID string) (models.UnseenCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"receiver_id": viewerID, "seen": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$sender_id", "count": bson.M{"$sum": 1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count unseen messages: %w", err)
	}

	var rows []struct {
		SenderID string `bson:"_id"`
		Count    int    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode unseen counts: %w", err)
	}

	counts := make(models.UnseenCounts, len(rows))
	for _, row := range rows {
		if row.Count > 0 {
			counts[row.SenderID] = row.Count
		}
	}
	return counts, nil
}
