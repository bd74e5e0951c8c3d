package models

import (
	"time"
)

// Chat represents a chat row in the database.
type Chat struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

// ChatWithMessages is a chat together with its most recent messages,
// newest first.
type ChatWithMessages struct {
	Chat
	LatestMessages []Message
}
