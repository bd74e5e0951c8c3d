package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"minichat-backend/internal/handlers"
)

// RouterDependencies holds all the dependencies required by the router setup.
type RouterDependencies struct {
	ChatHandler        *handlers.ChatHandlers
	Logger             logrus.FieldLogger
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	if deps.ChatHandler == nil {
		panic("ChatHandler dependency is nil in router setup")
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(deps.Logger.WithField("component", "http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.StripSlashes) // /chats/1/ and /chats/1 are the same resource

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID},
		MaxAge:         300,
	}))

	r.Get("/health", deps.ChatHandler.HandleHealth)

	r.Route("/chats", func(r chi.Router) {
		r.Post("/", deps.ChatHandler.HandleCreateChat)
		r.Get("/", deps.ChatHandler.HandleListChats)

		r.Route("/{chatID}", func(r chi.Router) {
			r.Get("/", deps.ChatHandler.HandleGetChatByID)
			r.Delete("/", deps.ChatHandler.HandleDeleteChat)
			r.Post("/messages", deps.ChatHandler.HandleCreateMessage)
		})
	})

	return r
}
