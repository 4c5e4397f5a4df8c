// Package memory — хранилище в памяти процесса для локального запуска и тестов.
// Повторяет семантику postgres-реализации: email уникален без учёта регистра,
// наружу отдаются копии записей.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/sqlchat/internal/models"
	"github.com/pribylovaa/sqlchat/internal/storage"
)

type Storage struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]models.User
	emails      map[string]uuid.UUID
	connections map[uuid.UUID][]models.Connection
	connIDs     map[uuid.UUID]struct{}
}

// New создает пустое хранилище.
func New() *Storage {
	return &Storage{
		users:       make(map[uuid.UUID]models.User),
		emails:      make(map[string]uuid.UUID),
		connections: make(map[uuid.UUID][]models.Connection),
		connIDs:     make(map[uuid.UUID]struct{}),
	}
}

// Close ничего не освобождает и нужен для соответствия storage.Storage.
func (s *Storage) Close() {}

// SaveUser создает нового пользователя.
func (s *Storage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage.memory.SaveUser"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	key := emailKey(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}
	if _, ok := s.emails[key]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	s.users[user.ID] = *user
	s.emails[key] = user.ID

	return nil
}

// UserByEmail находит пользователя по email без учёта регистра.
func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.memory.UserByEmail"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[emailKey(email)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	u := s.users[id]
	return &u, nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.memory.UserByID"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return &u, nil
}

// UpdatePasswordHash заменяет хэш пароля пользователя.
func (s *Storage) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	const op = "storage.memory.UpdatePasswordHash"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u

	return nil
}

// SaveConnection сохраняет подключение; владелец должен существовать.
func (s *Storage) SaveConnection(ctx context.Context, conn *models.Connection) error {
	const op = "storage.memory.SaveConnection"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[conn.UserID]; !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if _, ok := s.connIDs[conn.ID]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	c := *conn
	c.EncryptedPassword = append([]byte(nil), conn.EncryptedPassword...)

	s.connections[conn.UserID] = append(s.connections[conn.UserID], c)
	s.connIDs[conn.ID] = struct{}{}

	return nil
}

// ConnectionsByUser возвращает подключения пользователя, новые первыми.
func (s *Storage) ConnectionsByUser(ctx context.Context, userID uuid.UUID) ([]models.Connection, error) {
	const op = "storage.memory.ConnectionsByUser"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	src := s.connections[userID]
	out := make([]models.Connection, len(src))
	for i, c := range src {
		c.EncryptedPassword = append([]byte(nil), c.EncryptedPassword...)
		out[i] = c
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
