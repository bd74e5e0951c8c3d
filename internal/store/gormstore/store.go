// Package gormstore implements store.Store on top of gorm, so the service can
// run against postgres, mysql (8.0+) or sqlite without the pgx pool.
package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"minichat-backend/internal/models"
	"minichat-backend/internal/store"
)

var _ store.Store = (*GormStore)(nil)

type chatRow struct {
	ID        int64        `gorm:"primaryKey;autoIncrement"`
	Title     string       `gorm:"size:200;not null"`
	CreatedAt time.Time    `gorm:"not null"`
	Messages  []messageRow `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
}

func (chatRow) TableName() string { return "chats" }

type messageRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;index:idx_messages_chat_latest,priority:3,sort:desc"`
	ChatID    int64     `gorm:"not null;index:idx_messages_chat_latest,priority:1"`
	Text      string    `gorm:"size:5000;not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_messages_chat_latest,priority:2,sort:desc"`
}

func (messageRow) TableName() string { return "messages" }

func (r chatRow) model() models.Chat {
	return models.Chat{ID: r.ID, Title: r.Title, CreatedAt: r.CreatedAt}
}

func (r messageRow) model() models.Message {
	return models.Message{ID: r.ID, ChatID: r.ChatID, Text: r.Text, CreatedAt: r.CreatedAt}
}

// Open connects to dsn with the given dialect (postgres, mysql or sqlite).
func Open(dialect, dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	var d gorm.Dialector
	switch dialect {
	case "postgres":
		d = postgres.Open(dsn)
	case "mysql":
		d = mysql.Open(dsn)
	case "sqlite":
		d = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm dialect %q", dialect)
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: gormlogger.New(log.WithField("component", "gorm"), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if dialect == "sqlite" {
		// An in-memory sqlite database lives only as long as its connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	return db, nil
}

type GormStore struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewGormStore(db *gorm.DB, log logrus.FieldLogger) *GormStore {
	return &GormStore{db: db, log: log.WithField("component", "gorm_store")}
}

// Migrate creates or updates the chats and messages tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&chatRow{}, &messageRow{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) CreateChat(ctx context.Context, arg store.CreateChatParams) (*models.Chat, error) {
	row := chatRow{Title: arg.Title, CreatedAt: arg.CreatedAt}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("database error creating chat: %w", err)
		}
		// Read back what the column kept; dialects differ in time precision.
		if err := tx.First(&row, row.ID).Error; err != nil {
			return fmt.Errorf("error reading created chat: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	chat := row.model()
	return &chat, nil
}

// DeleteChat deletes the chat's messages and then the chat in one
// transaction, so it does not depend on the dialect enforcing the FK cascade.
func (s *GormStore) DeleteChat(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", id).Delete(&messageRow{}).Error; err != nil {
			return fmt.Errorf("error deleting chat messages: %w", err)
		}
		res := tx.Delete(&chatRow{}, id)
		if res.Error != nil {
			return fmt.Errorf("error deleting chat: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *GormStore) CreateMessage(ctx context.Context, arg store.CreateMessageParams) (*models.Message, error) {
	row := messageRow{ChatID: arg.ChatID, Text: arg.Text, CreatedAt: arg.CreatedAt}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chat chatRow
		if err := tx.Select("id").First(&chat, arg.ChatID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNotFound
			}
			return fmt.Errorf("error checking chat: %w", err)
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("database error creating message: %w", err)
		}
		if err := tx.First(&row, row.ID).Error; err != nil {
			return fmt.Errorf("error reading created message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	msg := row.model()
	return &msg, nil
}

const latestMessagesSQL = `
SELECT id, chat_id, text, created_at
FROM (
    SELECT id, chat_id, text, created_at,
           ROW_NUMBER() OVER (PARTITION BY chat_id ORDER BY created_at DESC, id DESC) AS rn
    FROM messages
    WHERE chat_id IN ?
) ranked
WHERE rn <= ?
ORDER BY chat_id, created_at DESC, id DESC`

func (s *GormStore) ListChatsWithLatestMessages(ctx context.Context, scope store.ChatScope, limit int) ([]models.ChatWithMessages, error) {
	if !scope.All() && len(scope.ChatIDs) == 0 {
		return []models.ChatWithMessages{}, nil
	}

	var (
		chatRows []chatRow
		msgRows  []messageRow
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&chatRow{}).Order("id")
		if !scope.All() {
			q = q.Where("id IN ?", scope.ChatIDs)
		}
		if err := q.Find(&chatRows).Error; err != nil {
			return fmt.Errorf("error querying chats: %w", err)
		}
		if len(chatRows) == 0 {
			return nil
		}

		ids := make([]int64, len(chatRows))
		for i, c := range chatRows {
			ids[i] = c.ID
		}
		if err := tx.Raw(latestMessagesSQL, ids, limit).Scan(&msgRows).Error; err != nil {
			return fmt.Errorf("error querying latest messages: %w", err)
		}
		return nil
	}, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}

	chats := make([]models.Chat, len(chatRows))
	for i, r := range chatRows {
		chats[i] = r.model()
	}
	msgs := make([]models.Message, len(msgRows))
	for i, r := range msgRows {
		msgs[i] = r.model()
	}

	s.log.WithFields(logrus.Fields{"chats": len(chats), "messages": len(msgs), "limit": limit}).
		Debug("ListChatsWithLatestMessages: loaded")
	return store.AttachLatestMessages(chats, msgs, limit), nil
}
