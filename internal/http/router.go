package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/pribylovaa/sqlchat/internal/http/handlers"
	"github.com/pribylovaa/sqlchat/internal/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger         *slog.Logger
	Timeout        time.Duration
	Auth           middleware.Authenticator
	AccessCookie   string
	Metrics        *middleware.Metrics  // nil — без метрик.
	TracerProvider trace.TracerProvider // nil — глобальный провайдер otel.
	StaticDir      string               // пустой — /static не обслуживается.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Tracing(opts.TracerProvider),
	)
	if opts.Metrics != nil {
		root.Use(opts.Metrics.Middleware())
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	registerRoutes(root, h, opts)

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		root.Handle("/static/*", fs)
	}

	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, opts Options) {
	// auth
	r.Post("/signup", h.SignUp)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
	r.Get("/logout", h.Logout)

	// всё ниже требует действительной access-cookie
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(opts.Auth, opts.AccessCookie))

		r.Get("/me", h.Me)

		// connections
		r.Post("/test-database-connection", h.TestConnection)
		r.Post("/database-connection", h.SaveConnection)
		r.Get("/database-connection", h.ListConnections)
		r.Post("/database-connection/{id}/test", h.TestSavedConnection)
	})
}
