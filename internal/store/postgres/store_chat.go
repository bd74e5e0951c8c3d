package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"minichat-backend/internal/models"
	"minichat-backend/internal/store"
)

// --- Chat Methods ---

const createChat = `-- name: CreateChat :one
INSERT INTO chats (title, created_at)
VALUES ($1, $2)
RETURNING id, title, created_at;
`

// CreateChat inserts a new chat record into the database.
func (s *PostgresStore) CreateChat(ctx context.Context, arg store.CreateChatParams) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.QueryRow(ctx, createChat, arg.Title, arg.CreatedAt).Scan(
		&chat.ID,
		&chat.Title,
		&chat.CreatedAt,
	)
	if err != nil {
		s.log.WithError(err).Error("CreateChat: failed to insert chat")
		return nil, fmt.Errorf("database error creating chat: %w", err)
	}

	s.log.WithField("chat_id", chat.ID).Debug("CreateChat: inserted chat")
	return &chat, nil
}

const deleteChat = `-- name: DeleteChat :exec
DELETE FROM chats
WHERE id = $1;
`

// DeleteChat removes a chat; messages.chat_id ON DELETE CASCADE removes its
// messages within the same statement.
func (s *PostgresStore) DeleteChat(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, deleteChat, id)
	if err != nil {
		return fmt.Errorf("error executing delete chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	s.log.WithField("chat_id", id).Debug("DeleteChat: deleted chat and its messages")
	return nil
}

const listChats = `-- name: ListChats :many
SELECT id, title, created_at
FROM chats
ORDER BY id;
`

const listChatsByIDs = `-- name: ListChatsByIDs :many
SELECT id, title, created_at
FROM chats
WHERE id = ANY($1)
ORDER BY id;
`

// listLatestMessages ranks messages inside each chat partition and keeps the
// first $2 of every partition.
const listLatestMessages = `-- name: ListLatestMessages :many
SELECT id, chat_id, text, created_at
FROM (
    SELECT id, chat_id, text, created_at,
           ROW_NUMBER() OVER (PARTITION BY chat_id ORDER BY created_at DESC, id DESC) AS rn
    FROM messages
    WHERE chat_id = ANY($1)
) ranked
WHERE rn <= $2
ORDER BY chat_id, created_at DESC, id DESC;
`

// ListChatsWithLatestMessages loads the chats in scope and their latest
// messages inside one read-only repeatable-read transaction, so both reads
// see the same snapshot.
func (s *PostgresStore) ListChatsWithLatestMessages(ctx context.Context, scope store.ChatScope, limit int) ([]models.ChatWithMessages, error) {
	if !scope.All() && len(scope.ChatIDs) == 0 {
		return []models.ChatWithMessages{}, nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("error beginning read transaction: %w", err)
	}

	chats, err := s.queryChats(ctx, tx, scope)
	if err != nil {
		s.rollback(ctx, tx)
		return nil, err
	}

	var msgs []models.Message
	if len(chats) > 0 {
		ids := make([]int64, len(chats))
		for i, c := range chats {
			ids[i] = c.ID
		}
		msgs, err = s.queryLatestMessages(ctx, tx, ids, limit)
		if err != nil {
			s.rollback(ctx, tx)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing read transaction: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"chats":    len(chats),
		"messages": len(msgs),
		"limit":    limit,
	}).Debug("ListChatsWithLatestMessages: loaded")
	return store.AttachLatestMessages(chats, msgs, limit), nil
}

func (s *PostgresStore) queryChats(ctx context.Context, tx pgx.Tx, scope store.ChatScope) ([]models.Chat, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if scope.All() {
		rows, err = tx.Query(ctx, listChats)
	} else {
		rows, err = tx.Query(ctx, listChatsByIDs, scope.ChatIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying chats: %w", err)
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		if err := rows.Scan(&chat.ID, &chat.Title, &chat.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning chat row: %w", err)
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat rows: %w", err)
	}
	return chats, nil
}

func (s *PostgresStore) queryLatestMessages(ctx context.Context, tx pgx.Tx, chatIDs []int64, limit int) ([]models.Message, error) {
	rows, err := tx.Query(ctx, listLatestMessages, chatIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying latest messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return msgs, nil
}

func (s *PostgresStore) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.log.WithError(err).Warn("rollback failed")
	}
}
