package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minichat-backend/internal/logging"
	"minichat-backend/internal/store"
)

var readTx = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock, logging.Discard()), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestCreateChat(t *testing.T) {
	s, mock := newMockStore(t)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("INSERT INTO chats (title, created_at)")).
		WithArgs("Чат 1", ts).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "created_at"}).AddRow(int64(1), "Чат 1", ts))

	chat, err := s.CreateChat(context.Background(), store.CreateChatParams{Title: "Чат 1", CreatedAt: ts})
	require.NoError(t, err)
	assert.Equal(t, int64(1), chat.ID)
	assert.Equal(t, "Чат 1", chat.Title)
	assert.Equal(t, ts, chat.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteChat(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(q("DELETE FROM chats")).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, s.DeleteChat(context.Background(), 1))

	mock.ExpectExec(q("DELETE FROM chats")).WithArgs(int64(999)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, s.DeleteChat(context.Background(), 999), store.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMessage(t *testing.T) {
	s, mock := newMockStore(t)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("INSERT INTO messages (chat_id, text, created_at)")).
		WithArgs(int64(1), "Сообщение 1", ts).
		WillReturnRows(pgxmock.NewRows([]string{"id", "chat_id", "text", "created_at"}).AddRow(int64(10), int64(1), "Сообщение 1", ts))

	msg, err := s.CreateMessage(context.Background(), store.CreateMessageParams{ChatID: 1, Text: "Сообщение 1", CreatedAt: ts})
	require.NoError(t, err)
	assert.Equal(t, int64(10), msg.ID)
	assert.Equal(t, int64(1), msg.ChatID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMessageUnknownChat(t *testing.T) {
	s, mock := newMockStore(t)
	ts := time.Now().UTC()

	mock.ExpectQuery(q("INSERT INTO messages")).
		WithArgs(int64(999), "hi", ts).
		WillReturnRows(pgxmock.NewRows([]string{"id", "chat_id", "text", "created_at"}))

	_, err := s.CreateMessage(context.Background(), store.CreateMessageParams{ChatID: 999, Text: "hi", CreatedAt: ts})
	assert.ErrorIs(t, err, store.ErrNotFound)

	mock.ExpectQuery(q("INSERT INTO messages")).
		WithArgs(int64(5), "hi", ts).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err = s.CreateMessage(context.Background(), store.CreateMessageParams{ChatID: 5, Text: "hi", CreatedAt: ts})
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListChatsWithLatestMessagesByID(t *testing.T) {
	s, mock := newMockStore(t)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(readTx)
	mock.ExpectQuery(q("WHERE id = ANY($1)")).
		WithArgs([]int64{1}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "created_at"}).AddRow(int64(1), "Чат 1", ts))
	mock.ExpectQuery(q("ROW_NUMBER() OVER (PARTITION BY chat_id ORDER BY created_at DESC, id DESC)")).
		WithArgs([]int64{1}, 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "chat_id", "text", "created_at"}).
			AddRow(int64(3), int64(1), "Сообщение 3", ts).
			AddRow(int64(2), int64(1), "Сообщение 2", ts))
	mock.ExpectCommit()

	got, err := s.ListChatsWithLatestMessages(context.Background(), store.ChatsByID(1), 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].LatestMessages, 2)
	assert.Equal(t, int64(3), got[0].LatestMessages[0].ID)
	assert.Equal(t, int64(2), got[0].LatestMessages[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListChatsWithLatestMessagesAllChats(t *testing.T) {
	s, mock := newMockStore(t)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(readTx)
	mock.ExpectQuery(q("ORDER BY id;")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "created_at"}).
			AddRow(int64(1), "a", ts).
			AddRow(int64(2), "b", ts))
	mock.ExpectQuery(q("FROM messages")).
		WithArgs([]int64{1, 2}, 20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "chat_id", "text", "created_at"}).
			AddRow(int64(5), int64(2), "x", ts))
	mock.ExpectCommit()

	got, err := s.ListChatsWithLatestMessages(context.Background(), store.AllChats(), 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].LatestMessages)
	assert.Len(t, got[1].LatestMessages, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListChatsWithLatestMessagesNoChatsSkipsMessageQuery(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBeginTx(readTx)
	mock.ExpectQuery(q("WHERE id = ANY($1)")).
		WithArgs([]int64{42}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "created_at"}))
	mock.ExpectCommit()

	got, err := s.ListChatsWithLatestMessages(context.Background(), store.ChatsByID(42), 20)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListChatsWithLatestMessagesEmptyScopeHitsNothing(t *testing.T) {
	s, mock := newMockStore(t)

	got, err := s.ListChatsWithLatestMessages(context.Background(), store.ChatsByID(), 20)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListChatsWithLatestMessagesRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBeginTx(readTx)
	mock.ExpectQuery(q("WHERE id = ANY($1)")).WithArgs([]int64{1}).WillReturnError(boom)
	mock.ExpectRollback()

	_, err := s.ListChatsWithLatestMessages(context.Background(), store.ChatsByID(1), 20)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectPing()
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
