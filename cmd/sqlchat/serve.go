package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pribylovaa/sqlchat/internal/config"
	"github.com/pribylovaa/sqlchat/internal/dbprobe"
	apphttp "github.com/pribylovaa/sqlchat/internal/http"
	"github.com/pribylovaa/sqlchat/internal/http/handlers"
	"github.com/pribylovaa/sqlchat/internal/http/middleware"
	"github.com/pribylovaa/sqlchat/internal/pkg/redact"
	"github.com/pribylovaa/sqlchat/internal/service"
	"github.com/pribylovaa/sqlchat/internal/session"
	"github.com/pribylovaa/sqlchat/internal/storage"
	"github.com/pribylovaa/sqlchat/internal/storage/memory"
	"github.com/pribylovaa/sqlchat/internal/storage/postgres"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			return serve(cmd.Context(), cfg)
		},
	}
}

// pinger — хранилище, которое умеет проверять доступность (postgres).
type pinger interface {
	Ping(ctx context.Context) error
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting sqlchat", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	st, err := openStorage(rootCtx, cfg, log)
	if err != nil {
		log.Error("storage_init_failed", slog.String("err", err.Error()))
		return err
	}
	defer st.Close()

	hasher, err := service.NewHasher(cfg.Auth)
	if err != nil {
		log.Error("hasher_init_failed", slog.String("err", err.Error()))
		return err
	}

	sealer, err := service.NewSealer(cfg.Credentials.Key)
	if err != nil {
		log.Error("sealer_init_failed", slog.String("err", err.Error()))
		return err
	}

	codec := service.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer)

	h := handlers.New(
		service.New(st, hasher),
		session.NewManager(codec, cfg.Cookie),
		service.NewConnections(st, dbprobe.New(), sealer, cfg.Probe.Timeout),
		metrics,
	)

	apiHandler := apphttp.NewRouter(h, apphttp.Options{
		Logger:       log,
		Timeout:      cfg.Timeouts.Service,
		Auth:         service.NewGuard(st, codec),
		AccessCookie: cfg.Cookie.AccessName,
		Metrics:      metrics,
		StaticDir:    cfg.HTTP.StaticDir,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&ready) != 1 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		if p, ok := st.(pinger); ok {
			pctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := p.Ping(pctx); err != nil {
				log.Warn("healthz_db_ping_failed", slog.String("err", err.Error()))
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		return err
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("server_ready")

	var serveErr error
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		if serveErr != nil {
			log.Error("http_serve_failed", slog.String("err", serveErr.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
	return serveErr
}

// openStorage выбирает хранилище: PostgreSQL по DATABASE_URL
// или in-memory, если URL пуст (Validate не пускает такое в prod).
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	if cfg.DB.DatabaseURL == "" {
		log.Warn("storage_in_memory", slog.String("reason", "db url is empty, data will be lost on restart"))
		return memory.New(), nil
	}

	st, err := postgres.New(ctx, cfg.DB.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", redact.DSN(cfg.DB.DatabaseURL), err)
	}

	if cfg.DB.AutoMigrate {
		if err := st.Migrate(ctx, postgres.MigrateUp); err != nil {
			st.Close()
			return nil, err
		}
		log.Info("migrations_applied")
	}

	log.Info("storage_postgres_ready", slog.String("db", redact.DSN(cfg.DB.DatabaseURL)))
	return st, nil
}
