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

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/lborres/quill"
	fiberadapter "github.com/lborres/quill/adapters/fiber"
	pgxadapter "github.com/lborres/quill/adapters/pgx"
	redisadapter "github.com/lborres/quill/adapters/redis"
	"github.com/lborres/quill/config"
	"github.com/lborres/quill/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM.

Examples:
  quill serve --config quill.yaml
  QUILL_ENV=production quill serve --listen :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.ListenAddr = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, newLogger(cfg.Log))
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on (default from config)")

	return cmd
}

// fiberConfig only reads the client address from ProxyHeader when the
// request comes from one of the trusted proxies; fingerprint anonymous
// sessions key on that address.
func fiberConfig(cfg *config.Config, log *slog.Logger) fiber.Config {
	fc := fiber.Config{
		AppName:      "quill " + version,
		ErrorHandler: fiberadapter.NewErrorHandler(log, cfg.IsProduction()),
	}
	if cfg.Server.ProxyHeader != "" {
		fc.ProxyHeader = cfg.Server.ProxyHeader
		fc.TrustProxy = true
		fc.TrustProxyConfig = fiber.TrustProxyConfig{Proxies: cfg.Server.TrustedProxies}
		fc.EnableIPValidation = true
	}
	return fc
}

func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, err := openPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	storage := pgxadapter.New(pool)
	if cfg.Database.Migrate {
		if err := storage.Migrate(ctx); err != nil {
			return err
		}
		log.Info("database schema applied")
	}

	var tokenStore quill.TokenStore
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		tokenStore = redisadapter.New(client, redisadapter.WithTTL(cfg.CSRF.TTL))
		log.Info("using redis csrf token store", slog.String("addr", cfg.Redis.Addr))
	}

	app := fiber.New(fiberConfig(cfg, log))
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     accessLogFormat(),
		TimeFormat: "2006/01/02 15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.FrontendURL},
		AllowCredentials: true,
		AllowMethods:     []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete, fiber.MethodPatch, fiber.MethodOptions},
		AllowHeaders:     []string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiberadapter.CSRFHeader},
		ExposeHeaders:    []string{fiberadapter.CSRFHeader},
	}))

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	httpAdapter, err := fiberadapter.New(app,
		fiberadapter.WithLogger(log),
		fiberadapter.WithProduction(cfg.IsProduction()),
		fiberadapter.WithAnonymousMode(cfg.Auth.AnonymousMode),
	)
	if err != nil {
		return err
	}

	if _, err := quill.New(quill.Config{
		Secret:        cfg.Auth.JWTSecret,
		Database:      storage,
		HTTP:          httpAdapter,
		TokenStore:    tokenStore,
		CacheConfig:   &quill.CacheConfig{TTL: cfg.CSRF.TTL, MaxSize: cfg.CSRF.MaxSize},
		CredentialTTL: cfg.Auth.CredentialTTL,
		BasePath:      cfg.Server.BasePath,
		Metrics:       m,
	}); err != nil {
		return fmt.Errorf("could not create quill instance: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			slog.String("addr", cfg.Server.ListenAddr),
			slog.String("environment", string(cfg.Environment)),
		)
		errCh <- app.Listen(cfg.Server.ListenAddr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app.Listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
