package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/sqlchat/internal/models"
	"github.com/pribylovaa/sqlchat/internal/pkg/log"
	"github.com/pribylovaa/sqlchat/internal/pkg/redact"
	"github.com/pribylovaa/sqlchat/internal/storage"
)

// Поддерживаемые типы внешних БД (канонические имена).
const (
	DBTypeMySQL      = "mysql"
	DBTypePostgreSQL = "postgresql"
	DBTypeMSSQL      = "mssql"
)

var dbTypeAliases = map[string]string{
	"mysql":      DBTypeMySQL,
	"postgresql": DBTypePostgreSQL,
	"postgres":   DBTypePostgreSQL,
	"mssql":      DBTypeMSSQL,
	"sqlserver":  DBTypeMSSQL,
}

// Prober пытается подключиться к внешней БД.
type Prober interface {
	Ping(ctx context.Context, params models.ConnectionParams) error
}

// ProbeResult — итог проверки подключения в виде, пригодном для ответа клиенту.
type ProbeResult struct {
	OK      bool
	Message string
}

// Connections управляет подключениями пользователей к внешним БД.
type Connections struct {
	store   storage.ConnectionStorage
	prober  Prober
	sealer  *Sealer
	timeout time.Duration
}

// NewConnections создаёт сервис подключений.
func NewConnections(store storage.ConnectionStorage, prober Prober, sealer *Sealer, timeout time.Duration) *Connections {
	return &Connections{
		store:   store,
		prober:  prober,
		sealer:  sealer,
		timeout: timeout,
	}
}

// Test пробует подключиться к внешней БД с ограничением по времени.
// Неподдерживаемый тип и сбой подключения возвращаются как ProbeResult с OK=false;
// ошибка возвращается только для некорректных параметров.
func (c *Connections) Test(ctx context.Context, params models.ConnectionParams) (*ProbeResult, error) {
	const op = "service.connections.Test"

	lg := log.From(ctx)

	norm, err := normalizeParams(params)
	if err != nil {
		if errors.Is(err, ErrUnsupportedDB) {
			return &ProbeResult{Message: "Unsupported database type: " + params.DBType}, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.prober.Ping(pctx, norm); err != nil {
		reason := redact.Secret(err.Error(), norm.Password)
		lg.Info("db_probe_failed",
			slog.String("db_type", norm.DBType),
			slog.String("host", norm.Host),
			slog.String("err", reason),
		)
		return &ProbeResult{Message: "Connection failed: " + reason}, nil
	}

	return &ProbeResult{OK: true, Message: "Connection successful!"}, nil
}

// Save сохраняет параметры подключения с зашифрованным паролем.
func (c *Connections) Save(ctx context.Context, userID uuid.UUID, params models.ConnectionParams) (*models.Connection, error) {
	const op = "service.connections.Save"

	lg := log.From(ctx)

	norm, err := normalizeParams(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sealed, err := c.sealer.Seal([]byte(norm.Password))
	if err != nil {
		lg.Error("credentials_seal_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn := &models.Connection{
		ID:                uuid.New(),
		UserID:            userID,
		DBType:            norm.DBType,
		Host:              norm.Host,
		Port:              norm.Port,
		DBName:            norm.DBName,
		Username:          norm.Username,
		EncryptedPassword: sealed,
		CreatedAt:         time.Now().UTC(),
	}

	if err := c.store.SaveConnection(ctx, conn); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("connection_saved",
		slog.String("connection_id", conn.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("db_type", conn.DBType),
	)

	return conn, nil
}

// List возвращает подключения пользователя, новые первыми.
func (c *Connections) List(ctx context.Context, userID uuid.UUID) ([]models.Connection, error) {
	const op = "service.connections.List"

	conns, err := c.store.ConnectionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return conns, nil
}

// TestSaved повторно проверяет сохранённое подключение пользователя.
func (c *Connections) TestSaved(ctx context.Context, userID, connID uuid.UUID) (*ProbeResult, error) {
	const op = "service.connections.TestSaved"

	conns, err := c.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range conns {
		if conns[i].ID != connID {
			continue
		}

		params, err := c.Reveal(&conns[i])
		if err != nil {
			log.From(ctx).Error("credentials_open_failed",
				slog.String("op", op),
				slog.String("connection_id", connID.String()),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return c.Test(ctx, params)
	}

	return nil, fmt.Errorf("%s: %w", op, ErrConnectionNotFound)
}

// Reveal расшифровывает пароль сохранённого подключения.
func (c *Connections) Reveal(conn *models.Connection) (models.ConnectionParams, error) {
	const op = "service.connections.Reveal"

	plain, err := c.sealer.Open(conn.EncryptedPassword)
	if err != nil {
		return models.ConnectionParams{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.ConnectionParams{
		DBType:   conn.DBType,
		Host:     conn.Host,
		Port:     conn.Port,
		DBName:   conn.DBName,
		Username: conn.Username,
		Password: string(plain),
	}, nil
}

// NormalizeDBType приводит тип БД к каноническому имени.
func NormalizeDBType(raw string) (string, bool) {
	t, ok := dbTypeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return t, ok
}

func normalizeParams(p models.ConnectionParams) (models.ConnectionParams, error) {
	const op = "service.connections.normalizeParams"

	dbType, ok := NormalizeDBType(p.DBType)
	if !ok {
		return p, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedDB, p.DBType)
	}

	p.DBType = dbType
	p.Host = strings.TrimSpace(p.Host)
	p.DBName = strings.TrimSpace(p.DBName)
	p.Username = strings.TrimSpace(p.Username)

	switch {
	case p.Host == "":
		return p, fmt.Errorf("%s: %w: host is required", op, ErrInvalidInput)
	case p.Port < 1 || p.Port > 65535:
		return p, fmt.Errorf("%s: %w: port must be in 1..65535", op, ErrInvalidInput)
	case p.DBName == "":
		return p, fmt.Errorf("%s: %w: db_name is required", op, ErrInvalidInput)
	case p.Username == "":
		return p, fmt.Errorf("%s: %w: username is required", op, ErrInvalidInput)
	}

	return p, nil
}
