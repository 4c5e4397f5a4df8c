package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	logctx "github.com/pribylovaa/sqlchat/internal/pkg/log"
)

// Logging выдаёт обработчикам request-scoped логгер (с request_id, если его
// проставил RequestID) и по завершении пишет событие http_request.
// Ответы 5xx пишутся с уровнем error, 4xx с уровнем warn.
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := l
			if rid := RequestIDFrom(r.Context()); rid != "" {
				reqLog = l.With(slog.String("request_id", rid))
			}
			r = r.WithContext(logctx.Into(r.Context(), reqLog))

			rt := track(w)
			start := time.Now()
			next.ServeHTTP(rt, r)

			status := rt.Status()
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", rt.bytes),
				slog.Duration("dur", time.Since(start)),
				slog.String("remote", r.RemoteAddr),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				attrs = append(attrs, slog.String("route", rc.RoutePattern()))
			}

			reqLog.LogAttrs(r.Context(), level, "http_request", attrs...)
		})
	}
}
