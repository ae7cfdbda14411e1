package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-library-cms/internal/config"
	"github.com/go-library-cms/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-library-cms/internal/infrastructure/jwt"
	redisinfra "github.com/go-library-cms/internal/infrastructure/redis"
	"github.com/go-library-cms/internal/infrastructure/smtp"
	"github.com/go-library-cms/internal/pkg/clock"
	"github.com/go-library-cms/internal/pkg/password"
	transporthttp "github.com/go-library-cms/internal/transport/http"
	"github.com/go-library-cms/internal/transport/http/handler"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	if cfg.AppEnv == "development" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	clk := clock.System{}

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("dynamodb client: %w", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	rdb, err := redisinfra.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	tokens, err := jwtinfra.NewProvider(cfg, clk)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	svcs := transporthttp.BuildServices(&transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ArticleRepo: dynamo.NewArticleRepo(dynamoClient, cfg.DynamoTables.Articles),
		AuditRepo:   dynamo.NewAuditRepo(dynamoClient, cfg.DynamoTables.AuditLogs),
		Cache:       redisinfra.NewListCache(rdb, cfg.CacheTTL),
		Counters:    redisinfra.NewCounterStore(rdb),
		Mailer:      smtp.NewMailer(cfg),
		Tokens:      tokens,
		Passwords:   password.Bcrypt{},
		Clock:       clk,
		HealthChecks: map[string]handler.HealthCheck{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"dynamodb": func(ctx context.Context) error {
				return dynamo.Ping(ctx, dynamoClient, cfg.DynamoTables.Users)
			},
		},
	})

	if cfg.InitSuperAdmin {
		created, err := svcs.User.SeedSuperAdmin(ctx, cfg.SuperAdmin)
		switch {
		case err != nil:
			slog.Warn("super admin not seeded", "err", err)
		case created:
			slog.Info("super admin seeded", "username", cfg.SuperAdmin.Username)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, svcs),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
