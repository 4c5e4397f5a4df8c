package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/pribylovaa/sqlchat/internal/http/errors"
	"github.com/pribylovaa/sqlchat/internal/models"
	logctx "github.com/pribylovaa/sqlchat/internal/pkg/log"
	"github.com/pribylovaa/sqlchat/internal/service"
)

// Authenticator связывает access-токен с пользователем (service.Guard).
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// RequireUser пропускает запрос дальше только с действительной access-cookie.
// Пользователь кладётся в контекст (UserFrom), его id — в request-scoped логгер.
// Без cookie Authenticator не вызывается.
func RequireUser(auth Authenticator, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := ResolveUser(r, auth, cookieName)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := WithUser(r.Context(), user)
			ctx = logctx.With(ctx, slog.String("user_id", user.ID.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveUser извлекает access-токен из cookie запроса и возвращает пользователя.
// Ошибка всегда оборачивает service.ErrUnauthenticated, кроме сбоев хранилища.
func ResolveUser(r *http.Request, auth Authenticator, cookieName string) (*models.User, error) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, service.ErrUnauthenticated
		}
		return nil, err
	}

	if c.Value == "" {
		return nil, service.ErrUnauthenticated
	}

	return auth.Authenticate(r.Context(), c.Value)
}

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

// UserFrom возвращает пользователя, положенного RequireUser.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ctxKeyUser).(*models.User)
	return user, ok && user != nil
}
