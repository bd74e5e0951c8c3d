package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"minichat-backend/internal/api"
	"minichat-backend/internal/config"
	"minichat-backend/internal/handlers"
	"minichat-backend/internal/logging"
	"minichat-backend/internal/services"
	"minichat-backend/internal/store"
	"minichat-backend/internal/store/gormstore"
	"minichat-backend/internal/store/postgres"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}
	log.WithFields(logrus.Fields{
		"backend": cfg.StoreBackend,
		"port":    cfg.HTTPPort,
	}).Info("starting minichat backend")

	// 2. Initialize the store backend
	chatStore, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize store")
	}
	defer closeStore()

	// 3. Services, handlers, router
	chatService := services.NewChatService(chatStore, log)
	chatHandler := handlers.NewChatHandlers(chatService, log)

	router := api.NewRouter(api.RouterDependencies{
		ChatHandler:        chatHandler,
		Logger:             log,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout:     cfg.RequestTimeout,
	})

	// 4. Configure and Start HTTP Server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatalf("could not listen on %s", cfg.HTTPPort)
		}
	}()

	<-stopChan
	log.Info("shutdown signal received, draining connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
		return
	}
	log.Info("server shutdown complete")
}

// openStore builds the store selected by STORE_BACKEND, applying migrations
// when enabled. The returned func releases the underlying connections.
func openStore(cfg *config.Config, log logrus.FieldLogger) (store.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.StoreBackend {
	case config.BackendGORM:
		db, err := gormstore.Open(cfg.GormDialect, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		s := gormstore.NewGormStore(db, log)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		if cfg.RunMigrations {
			if err := s.Migrate(ctx); err != nil {
				_ = s.Close()
				return nil, nil, err
			}
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.WithError(err).Warn("closing gorm store")
			}
		}, nil

	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		if cfg.RunMigrations {
			if err := postgres.Migrate(pool, log); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return postgres.NewPostgresStore(pool, log), pool.Close, nil
	}
}
