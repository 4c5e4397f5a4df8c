package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pribylovaa/sqlchat/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email (без учёта регистра).
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdatePasswordHash заменяет хэш пароля пользователя.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// ConnectionStorage выполняет операции над подключениями к внешним БД.
type ConnectionStorage interface {
	// SaveConnection сохраняет параметры подключения.
	SaveConnection(ctx context.Context, conn *models.Connection) error
	// ConnectionsByUser возвращает подключения пользователя, новые первыми.
	ConnectionsByUser(ctx context.Context, userID uuid.UUID) ([]models.Connection, error)
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	ConnectionStorage
	Close()
}
