package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafe-storefront/api"
	"cafe-storefront/bot"
	"cafe-storefront/config"
	"cafe-storefront/db"
	"cafe-storefront/services"
	"cafe-storefront/storage"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "gen-admin-secret" {
		if err := genAdminSecret(); err != nil {
			fmt.Fprintln(os.Stderr, "gen-admin-secret:", err)
			os.Exit(1)
		}
		return
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg, logger); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func genAdminSecret() error {
	password, err := services.GenerateAdminPassword()
	if err != nil {
		return err
	}
	hash, err := services.HashAdminPassword(password)
	if err != nil {
		return err
	}
	fmt.Println("ADMIN_PASSWORD:     ", password)
	fmt.Println("ADMIN_PASSWORD_HASH:", hash)
	return nil
}

func runMigrate(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Init(ctx, cfg.DB); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()
	return applyMigrations(ctx, logger)
}

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		if err := db.Init(ctx, cfg.DB); err != nil {
			return nil, nil, fmt.Errorf("db: %w", err)
		}
		if cfg.Store.AutoMigrate {
			if err := applyMigrations(ctx, logger); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return storage.NewStore(storage.NewPostgresBackend(db.Pool), logger), db.Close, nil
	case config.BackendRedis:
		client, err := storage.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewStore(storage.NewRedisBackend(client), logger), func() { _ = client.Close() }, nil
	case config.BackendMongo:
		client, err := storage.ConnectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, err
		}
		release := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return storage.NewStore(storage.NewMongoBackend(client, cfg.Mongo.Database), logger), release, nil
	default:
		logger.Warn("using in-memory store; state is lost on restart")
		return storage.NewStore(storage.NewMemoryBackend(), logger), func() {}, nil
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, release, err := openStore(connectCtx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer release()

	cafe := services.NewCafe(ctx, store, services.Options{
		AdminPassword:     cfg.Admin.Password,
		AdminPasswordHash: cfg.Admin.PasswordHash,
		CheckoutDelay:     cfg.Shop.CheckoutDelay,
	}, logger)

	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token, cfg.Telegram.AdminID, cafe, cfg.Shop.ExportPrefix, logger)
		if err != nil {
			return err
		}
		go b.Start(ctx)
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set; bot disabled")
	}

	srv := api.NewServer(cafe, api.Options{
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		RateRPS:      cfg.HTTP.RateRPS,
		RateBurst:    cfg.HTTP.RateBurst,
		ExportPrefix: cfg.Shop.ExportPrefix,
	}, logger)
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Handler(),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTP.Addr), zap.String("store", cfg.Store.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
