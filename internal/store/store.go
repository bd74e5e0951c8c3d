package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"minichat-backend/internal/models"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// CreateChatParams contains parameters for creating a chat.
type CreateChatParams struct {
	Title     string
	CreatedAt time.Time
}

// CreateMessageParams contains parameters for creating a message.
type CreateMessageParams struct {
	ChatID    int64
	Text      string
	CreatedAt time.Time
}

// ChatScope selects the chats a latest-messages query covers.
// A nil ChatIDs slice means every chat; an empty non-nil slice means none.
type ChatScope struct {
	ChatIDs []int64
}

// AllChats returns a scope covering every chat.
func AllChats() ChatScope { return ChatScope{} }

// ChatsByID returns a scope limited to the given chat ids.
func ChatsByID(ids ...int64) ChatScope {
	return ChatScope{ChatIDs: append(make([]int64, 0, len(ids)), ids...)}
}

// All reports whether the scope covers every chat.
func (s ChatScope) All() bool { return s.ChatIDs == nil }

// Store defines the interface for database operations.
// Implementations: store/postgres (pgx) and store/gormstore (gorm).
type Store interface {
	// CreateChat inserts a chat and returns it with its generated id.
	CreateChat(ctx context.Context, arg CreateChatParams) (*models.Chat, error)
	// DeleteChat removes a chat and all of its messages atomically.
	// Returns ErrNotFound if the chat does not exist.
	DeleteChat(ctx context.Context, id int64) error

	// CreateMessage inserts a message into an existing chat.
	// Returns ErrNotFound, persisting nothing, if the chat does not exist.
	CreateMessage(ctx context.Context, arg CreateMessageParams) (*models.Message, error)

	// ListChatsWithLatestMessages returns the chats in scope ordered by id,
	// each carrying at most limit messages ordered by created_at DESC, id DESC.
	// Never fetches more than limit messages per chat.
	ListChatsWithLatestMessages(ctx context.Context, scope ChatScope, limit int) ([]models.ChatWithMessages, error)

	Ping(ctx context.Context) error
}

// CompareNewestFirst orders messages by created_at descending, then id
// descending.
func CompareNewestFirst(a, b models.Message) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// AttachLatestMessages groups msgs onto their chats. Messages of chats not in
// chats are dropped. Each group is sorted newest first and cut to limit, so the
// result does not depend on the order rows arrived in.
func AttachLatestMessages(chats []models.Chat, msgs []models.Message, limit int) []models.ChatWithMessages {
	byChat := make(map[int64][]models.Message, len(chats))
	for _, m := range msgs {
		byChat[m.ChatID] = append(byChat[m.ChatID], m)
	}

	out := make([]models.ChatWithMessages, 0, len(chats))
	for _, c := range chats {
		group := byChat[c.ID]
		slices.SortFunc(group, CompareNewestFirst)
		if len(group) > limit {
			group = group[:limit]
		}
		if group == nil {
			group = []models.Message{}
		}
		out = append(out, models.ChatWithMessages{Chat: c, LatestMessages: group})
	}
	return out
}
