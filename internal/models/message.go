package models

import (
	"time"
)

// Message represents a single message belonging to exactly one chat.
// Messages are never updated; they disappear only when their chat is deleted.
type Message struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}
