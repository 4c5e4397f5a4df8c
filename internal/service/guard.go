package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pribylovaa/sqlchat/internal/models"
	"github.com/pribylovaa/sqlchat/internal/pkg/log"
	"github.com/pribylovaa/sqlchat/internal/storage"
)

// TokenDecoder проверяет токен ожидаемого типа и возвращает subject.
type TokenDecoder interface {
	Decode(token string, want models.TokenType) (string, error)
}

// Guard связывает access-токен запроса с пользователем.
type Guard struct {
	users  storage.UserStorage
	tokens TokenDecoder
}

// NewGuard создаёт Guard.
func NewGuard(users storage.UserStorage, tokens TokenDecoder) *Guard {
	return &Guard{
		users:  users,
		tokens: tokens,
	}
}

// Authenticate возвращает пользователя, которому выдан access-токен.
// Любая проблема с токеном или отсутствие пользователя дают ErrUnauthenticated;
// прочие ошибки хранилища возвращаются как есть.
func (g *Guard) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "service.guard.Authenticate"

	lg := log.From(ctx)

	if accessToken == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	sub, err := g.tokens.Decode(accessToken, models.TokenTypeAccess)
	if err != nil {
		lg.Debug("access_token_rejected",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		lg.Debug("access_token_bad_subject",
			slog.String("op", op),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	user, err := g.users.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Debug("access_token_unknown_user",
				slog.String("op", op),
				slog.String("user_id", id.String()),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}

		lg.Error("user_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
