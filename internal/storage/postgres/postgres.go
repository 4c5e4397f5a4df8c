package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pribylovaa/sqlchat/internal/storage"
	"github.com/pribylovaa/sqlchat/migrations"
)

// Команды миграций.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

type Storage struct {
	db *pgxpool.Pool
}

// New создает новое подключение к PostgreSQL.
func New(ctx context.Context, dbURL string) (*Storage, error) {
	const op = "storage.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.db.Close()
}

// Ping проверяет доступность БД (используется в /healthz).
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Migrate применяет команду миграций к БД, на которую смотрит пул.
func (s *Storage) Migrate(ctx context.Context, command string) error {
	const op = "storage.postgres.Migrate"

	db := stdlib.OpenDBFromPool(s.db)
	defer db.Close()

	if err := runMigrations(ctx, db, command); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func runMigrations(ctx context.Context, db *sql.DB, command string) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	switch command {
	case MigrateUp:
		return goose.UpContext(ctx, db, ".")
	case MigrateDown:
		return goose.DownContext(ctx, db, ".")
	case MigrateStatus:
		return goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
