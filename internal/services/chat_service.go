package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"minichat-backend/internal/errs"
	"minichat-backend/internal/models"
	"minichat-backend/internal/store"
	"minichat-backend/internal/validation"
)

// ChatService handles chat-related business logic.
type ChatService struct {
	store    store.Store
	validate *validation.Validator
	now      func() time.Time
	log      logrus.FieldLogger
}

// Option customizes a ChatService.
type Option func(*ChatService)

// WithClock replaces the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(s *ChatService) { s.now = now }
}

// NewChatService creates a new ChatService.
func NewChatService(store store.Store, log logrus.FieldLogger, opts ...Option) *ChatService {
	s := &ChatService{
		store:    store,
		validate: validation.New(),
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.WithField("component", "chat_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp reads the clock at the microsecond precision TIMESTAMPTZ keeps,
// so the created_at echoed on create matches the one read back later.
func (s *ChatService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// GetChatsWithLimitedMessages is the single entry point for reading chats
// together with their latest messages. Each returned chat carries at most
// limit messages, newest first.
func (s *ChatService) GetChatsWithLimitedMessages(ctx context.Context, scope store.ChatScope, limit int) ([]models.ChatWithMessages, error) {
	if err := validation.CheckLimit(limit); err != nil {
		return nil, err
	}
	chats, err := s.store.ListChatsWithLatestMessages(ctx, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chats with latest messages: %w", err)
	}
	return chats, nil
}

// CreateChat validates and persists a new chat.
func (s *ChatService) CreateChat(ctx context.Context, req models.CreateChatRequest) (*models.ChatResponse, error) {
	if err := s.validate.Struct(&req); err != nil {
		return nil, err
	}

	chat, err := s.store.CreateChat(ctx, store.CreateChatParams{
		Title:     req.Title,
		CreatedAt: s.timestamp(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat in store: %w", err)
	}

	s.log.WithField("chat_id", chat.ID).Info("chat created")
	resp := models.NewChatResponse(models.ChatWithMessages{Chat: *chat})
	return &resp, nil
}

// CreateMessage validates text and appends it to an existing chat.
func (s *ChatService) CreateMessage(ctx context.Context, chatID int64, req models.CreateMessageRequest) (*models.MessageResponse, error) {
	if err := s.validate.Struct(&req); err != nil {
		return nil, err
	}

	msg, err := s.store.CreateMessage(ctx, store.CreateMessageParams{
		ChatID:    chatID,
		Text:      req.Text,
		CreatedAt: s.timestamp(),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.NotFound("chat", chatID)
		}
		return nil, fmt.Errorf("failed to add message to chat: %w", err)
	}

	resp := models.NewMessageResponse(*msg)
	return &resp, nil
}

// GetChat returns one chat with at most limit of its latest messages.
func (s *ChatService) GetChat(ctx context.Context, chatID int64, limit int) (*models.ChatResponse, error) {
	chats, err := s.GetChatsWithLimitedMessages(ctx, store.ChatsByID(chatID), limit)
	if err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return nil, errs.NotFound("chat", chatID)
	}
	resp := models.NewChatResponse(chats[0])
	return &resp, nil
}

// ListChats returns every chat, each with at most limit latest messages.
func (s *ChatService) ListChats(ctx context.Context, limit int) (*models.ListChatsResponse, error) {
	chats, err := s.GetChatsWithLimitedMessages(ctx, store.AllChats(), limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatResponse, 0, len(chats))
	for _, c := range chats {
		out = append(out, models.NewChatResponse(c))
	}
	return &models.ListChatsResponse{Chats: out}, nil
}

// DeleteChat removes a chat and, with it, all of its messages.
func (s *ChatService) DeleteChat(ctx context.Context, chatID int64) error {
	if err := s.store.DeleteChat(ctx, chatID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errs.NotFound("chat", chatID)
		}
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	s.log.WithField("chat_id", chatID).Info("chat deleted")
	return nil
}

// Ping reports whether the backing store is reachable.
func (s *ChatService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
