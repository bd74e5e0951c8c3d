package postgres

import (
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies all pending goose migrations using a database/sql handle
// borrowed from the pool.
func Migrate(pool *pgxpool.Pool, log logrus.FieldLogger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	goose.SetTableName("goose_migrations")
	goose.SetLogger(gooseLogger{log.WithField("component", "migrations")})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	log.WithField("version", version).Info("database migrated")
	return nil
}

// gooseLogger adapts logrus to goose.Logger.
type gooseLogger struct {
	log logrus.FieldLogger
}

func (l gooseLogger) Fatalf(format string, v ...any) { l.log.Fatalf(format, v...) }
func (l gooseLogger) Printf(format string, v ...any) { l.log.Infof(format, v...) }
