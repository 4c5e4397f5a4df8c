package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	apierrors "github.com/pribylovaa/sqlchat/internal/http/errors"
	logctx "github.com/pribylovaa/sqlchat/internal/pkg/log"
)

var errPanic = errors.New("panic in handler")

// Recover превращает panic обработчика в 500 с единым JSON-конвертом.
// Причина и стек пишутся в лог, клиенту не уходят. Если ответ уже начат,
// дописывать нечего: соединение просто завершается.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rt := track(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logctx.From(r.Context()).Error("handler_panic",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("reason", rec),
					slog.String("stack", string(debug.Stack())),
				)

				if !rt.Started() {
					apierrors.WriteError(rt, r, errPanic)
				}
			}()

			next.ServeHTTP(rt, r)
		})
	}
}
