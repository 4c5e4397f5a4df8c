package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/sqlchat/internal/http/errors"
)

// Timeout ограничивает время обработки запроса.
// Более ранний deadline родителя сохраняется (context.WithTimeout берёт минимум).
// Если обработчик упёрся в deadline и ничего не ответил, клиент получает 504.
// d <= 0 отключает мидлвар.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			rt := track(w)
			next.ServeHTTP(rt, r.WithContext(ctx))

			if !rt.Started() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				apierrors.WriteError(rt, r, ctx.Err())
			}
		})
	}
}
