package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"minichat-backend/internal/models"
	"minichat-backend/internal/store"
)

// --- Message Methods ---

// createMessage inserts only when the chat exists; no row back means no chat.
const createMessage = `-- name: CreateMessage :one
INSERT INTO messages (chat_id, text, created_at)
SELECT id, $2, $3
FROM chats
WHERE id = $1
RETURNING id, chat_id, text, created_at;
`

// CreateMessage inserts a message into an existing chat.
// Returns store.ErrNotFound if the chat does not exist.
func (s *PostgresStore) CreateMessage(ctx context.Context, arg store.CreateMessageParams) (*models.Message, error) {
	var m models.Message
	err := s.db.QueryRow(ctx, createMessage, arg.ChatID, arg.Text, arg.CreatedAt).Scan(
		&m.ID,
		&m.ChatID,
		&m.Text,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		var pgErr *pgconn.PgError
		// 23503: the chat was deleted between the SELECT and the INSERT.
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, store.ErrNotFound
		}
		s.log.WithError(err).WithField("chat_id", arg.ChatID).Error("CreateMessage: failed to insert message")
		return nil, fmt.Errorf("database error creating message: %w", err)
	}

	s.log.WithFields(logrus.Fields{"chat_id": m.ChatID, "message_id": m.ID}).Debug("CreateMessage: inserted message")
	return &m, nil
}
