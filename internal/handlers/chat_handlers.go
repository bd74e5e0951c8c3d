package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"minichat-backend/internal/models"
	"minichat-backend/internal/services"
	"minichat-backend/internal/validation"
	"minichat-backend/pkg/httputil"
)

// ChatHandlers handles HTTP requests related to chats and their messages.
type ChatHandlers struct {
	chatService *services.ChatService
	log         logrus.FieldLogger
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService *services.ChatService, log logrus.FieldLogger) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
		log:         log.WithField("component", "chat_handlers"),
	}
}

// HandleCreateChat handles POST /chats/.
func (h *ChatHandlers) HandleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	chat, err := h.chatService.CreateChat(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	httputil.RespondJSON(w, h.log, http.StatusCreated, chat)
}

// HandleListChats handles GET /chats/?limit=N.
func (h *ChatHandlers) HandleListChats(w http.ResponseWriter, r *http.Request) {
	limit, err := limitFromQuery(r)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	chats, err := h.chatService.ListChats(r.Context(), limit)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	httputil.RespondJSON(w, h.log, http.StatusOK, chats)
}

// HandleGetChatByID handles GET /chats/{chatID}/?limit=N.
func (h *ChatHandlers) HandleGetChatByID(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDFromURL(r)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	limit, err := limitFromQuery(r)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	chat, err := h.chatService.GetChat(r.Context(), chatID, limit)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	httputil.RespondJSON(w, h.log, http.StatusOK, chat)
}

// HandleDeleteChat handles DELETE /chats/{chatID}/.
func (h *ChatHandlers) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDFromURL(r)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	if err := h.chatService.DeleteChat(r.Context(), chatID); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	httputil.RespondJSON(w, h.log, http.StatusNoContent, nil)
}

// HandleCreateMessage handles POST /chats/{chatID}/messages/.
func (h *ChatHandlers) HandleCreateMessage(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDFromURL(r)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	var req models.CreateMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	msg, err := h.chatService.CreateMessage(r.Context(), chatID, req)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	httputil.RespondJSON(w, h.log, http.StatusCreated, msg)
}

// HandleHealth reports whether the store is reachable.
func (h *ChatHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.Ping(r.Context()); err != nil {
		h.log.WithError(err).Warn("health check: store unreachable")
		httputil.RespondJSON(w, h.log, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httputil.RespondJSON(w, h.log, http.StatusOK, map[string]string{"status": "ok"})
}

func limitFromQuery(r *http.Request) (int, error) {
	values, present := r.URL.Query()["limit"]
	raw := ""
	if present {
		// Repeated parameters resolve to the last occurrence.
		raw = values[len(values)-1]
	}
	return validation.ParseLimit(raw, present)
}
