package models

import (
	"strings"
	"time"
)

// --- Request Structs ---

// CreateChatRequest defines the expected body for POST /chats/.
type CreateChatRequest struct {
	Title string `json:"title" validate:"required,max=200,nonul"`
}

// Normalize trims surrounding whitespace before validation.
func (r *CreateChatRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

// CreateMessageRequest defines the expected body for POST /chats/{id}/messages/.
type CreateMessageRequest struct {
	Text string `json:"text" validate:"required,max=5000,nonul"`
}

func (r *CreateMessageRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
}

// --- Response Structs ---

// ErrorResponse defines the standard structure for API errors.
// Field names the offending body field or query parameter, if any.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// MessageResponse is the API view of a message.
type MessageResponse struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatResponse is the API view of a chat and its latest messages.
// Messages is always a JSON array, never null.
type ChatResponse struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []MessageResponse `json:"messages"`
}

// ListChatsResponse wraps the chats returned by GET /chats/.
type ListChatsResponse struct {
	Chats []ChatResponse `json:"chats"`
}

// NewMessageResponse maps a DB message to its API view.
func NewMessageResponse(m Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

// NewChatResponse maps a chat and its latest messages to the API view.
func NewChatResponse(c ChatWithMessages) ChatResponse {
	msgs := make([]MessageResponse, 0, len(c.LatestMessages))
	for _, m := range c.LatestMessages {
		msgs = append(msgs, NewMessageResponse(m))
	}
	return ChatResponse{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		Messages:  msgs,
	}
}
