package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/duochat/database"
	"github.com/akinalp/duochat/models"
	"github.com/akinalp/duochat/pkg"
)

// sqliteMessageRepo, MessageRepository interface'inin SQLite implementasyonu.
//
// GetConversation transaction açtığı için TxQuerier değil *sql.DB tutar.
type sqliteMessageRepo struct {
	db *sql.DB
}

// NewSQLiteMessageRepo, constructor, interface döner.
func NewSQLiteMessageRepo(db *sql.DB) MessageRepository {
	return &sqliteMessageRepo{db: db}
}

// conversationTxOptions, seen güncellemesi ile okumanın tek anlık görüntüde olmasını ister.
var conversationTxOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}

const messageColumns = `id, sender_id, receiver_id, text, image, seen, created_at, updated_at`

func (r *sqliteMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	now := time.Now().UTC()
	msg.ID = uuid.NewString()
	msg.Seen = false
	msg.CreatedAt = now
	msg.UpdatedAt = now

	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Text, msg.Image, msg.CreatedAt, msg.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetConversation, UPDATE ve SELECT aynı serializable transaction'da çalışır:
// eşzamanlı bir okuyucu ya eski seti ya da tamamen güncellenmiş seti görür.
// Eşit created_at değerlerinde rowid ekleme sırasını korur.
func (r *sqliteMessageRepo) GetConversation(ctx context.Context, viewerID, otherID string) ([]models.Message, error) {
	messages := make([]models.Message, 0)

	err := database.WithTx(ctx, r.db, conversationTxOptions, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE messages SET seen = 1, updated_at = ?
			WHERE sender_id = ? AND receiver_id = ? AND seen = 0`,
			time.Now().UTC(), otherID, viewerID,
		); err != nil {
			return fmt.Errorf("failed to mark conversation seen: %w", err)
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT `+messageColumns+` FROM messages
			WHERE (sender_id = ? AND receiver_id = ?)
			   OR (sender_id = ? AND receiver_id = ?)
			ORDER BY created_at ASC, rowid ASC`,
			viewerID, otherID, otherID, viewerID,
		)
		if err != nil {
			return fmt.Errorf("failed to query conversation: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var m models.Message
			if err := rows.Scan(
				&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image,
				&m.Seen, &m.CreatedAt, &m.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan message row: %w", err)
			}
			messages = append(messages, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkSeen, zaten seen olan mesajda updated_at'e dokunmaz.
func (r *sqliteMessageRepo) MarkSeen(ctx context.Context, messageID string) error {
	var seen bool
	err := r.db.QueryRowContext(ctx,
		`SELECT seen FROM messages WHERE id = ?`, messageID,
	).Scan(&seen)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: message not found", pkg.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get message: %w", err)
	}
	if seen {
		return nil
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE messages SET seen = 1, updated_at = ? WHERE id = ? AND seen = 0`,
		time.Now().UTC(), messageID,
	); err != nil {
		return fmt.Errorf("failed to mark message seen: %w", err)
	}
	return nil
}

func (r *sqliteMessageRepo) CountUnseenBySender(ctx context.Context, viewerID string) (models.UnseenCounts, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sender_id, COUNT(*) FROM messages
		WHERE receiver_id = ? AND seen = 0
		GROUP BY sender_id`,
		viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count unseen messages: %w", err)
	}
	defer rows.Close()

	counts := make(models.UnseenCounts)
	for rows.Next() {
		var senderID string
		var n int
		if err := rows.Scan(&senderID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan unseen count: %w", err)
		}
		if n > 0 {
			counts[senderID] = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unseen counts: %w", err)
	}
	return counts, nil
}
