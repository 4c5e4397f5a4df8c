package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pribylovaa/sqlchat/internal/models"
	"github.com/pribylovaa/sqlchat/internal/storage"
)

// SaveConnection сохраняет параметры подключения к внешней БД.
func (s *Storage) SaveConnection(ctx context.Context, conn *models.Connection) error {
	const op = "storage.postgres.SaveConnection"

	query := `
		INSERT INTO connections(id, user_id, db_type, host, port, db_name, username, encrypted_password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.Exec(ctx, query,
		conn.ID,
		conn.UserID,
		conn.DBType,
		conn.Host,
		conn.Port,
		conn.DBName,
		conn.Username,
		conn.EncryptedPassword,
		conn.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
			case pgerrcode.ForeignKeyViolation:
				return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
			}
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ConnectionsByUser возвращает подключения пользователя, новые первыми.
func (s *Storage) ConnectionsByUser(ctx context.Context, userID uuid.UUID) ([]models.Connection, error) {
	const op = "storage.postgres.ConnectionsByUser"

	query := `
		SELECT id, user_id, db_type, host, port, db_name, username, encrypted_password, created_at
		FROM connections
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Connection, error) {
		var c models.Connection
		err := row.Scan(
			&c.ID,
			&c.UserID,
			&c.DBType,
			&c.Host,
			&c.Port,
			&c.DBName,
			&c.Username,
			&c.EncryptedPassword,
			&c.CreatedAt,
		)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return conns, nil
}
