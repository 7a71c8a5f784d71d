package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/inventory-api/internal/config"
	"github.com/iliyamo/inventory-api/internal/database"
	"github.com/iliyamo/inventory-api/internal/handler"
	"github.com/iliyamo/inventory-api/internal/queue"
	"github.com/iliyamo/inventory-api/internal/repository"
	"github.com/iliyamo/inventory-api/internal/router"
	"github.com/iliyamo/inventory-api/internal/service"
	"github.com/iliyamo/inventory-api/internal/utils"
)

// tokenPurgeInterval is how often expired refresh rows are removed.
const tokenPurgeInterval = time.Hour

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("schema applied")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	audits := repository.NewAuditRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)
	movements := repository.NewMovementRepo(db)

	codec := utils.NewTokenCodec(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	auth := service.NewAuthService(users, tokens, codec, cfg.BcryptCost, log)

	if cfg.AdminEmail != "" {
		created, err := auth.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		log.Info("admin account checked", "email", cfg.AdminEmail, "created", created)
	}

	opts := service.AuditRecorderOptions{
		Workers:    cfg.AuditWorkers,
		QueueSize:  cfg.AuditQueueSize,
		MaxPending: cfg.AuditMaxPending,
		Logger:     log,
	}
	var publisher *service.AuditPublisher
	if cfg.RabbitMQURL != "" {
		publisher = service.NewAuditPublisher(cfg.RabbitMQURL)
		defer publisher.Close()
		opts.Publisher = publisher

		if cfg.AuditConsumer {
			consumer := &queue.AuditConsumer{URL: cfg.RabbitMQURL, LogDir: cfg.AuditLogDir, Log: log}
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("audit consumer stopped", "error", err)
				}
			}()
		}
	}
	recorder := service.NewAuditRecorder(audits, opts)

	go purgeTokens(ctx, auth, log)

	redisCfg := config.LoadRedisConfig()
	rdb := config.NewRedisClient(redisCfg)
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and response cache disabled", "addr", redisCfg.Addr)
	} else {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency_ms", v.Latency.Milliseconds(), "remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				log.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	}))

	deps := router.Deps{
		Auth:       handler.NewAuthHandler(auth),
		Audits:     handler.NewAuditHandler(service.NewAuditReader(audits, repository.NewNameRepo(db), log)),
		Categories: handler.NewCategoryHandler(categories),
		Products:   handler.NewProductHandler(products, categories),
		Inventory:  handler.NewInventoryHandler(service.NewInventoryService(movements, products)),
		Verifier:   codec,
		Recorder:   recorder,
		Redis:      rdb,
		RateLimit:  config.LoadRateLimitConfig(),
		Cache:      config.LoadCacheConfig(),
		Log:        log,
	}
	router.RegisterRoutes(e)
	router.RegisterAuth(e, deps)
	router.RegisterAudits(e, deps)
	router.RegisterCatalog(e, deps)

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	if err := recorder.Close(shutdownCtx); err != nil {
		log.Warn("audit recorder did not drain", "error", err)
	}
	return nil
}

func purgeTokens(ctx context.Context, auth *service.AuthService, log *slog.Logger) {
	t := time.NewTicker(tokenPurgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := auth.PurgeExpired(ctx)
			if err != nil {
				log.Warn("purge refresh tokens", "error", err)
				continue
			}
			if n > 0 {
				log.Info("purged refresh tokens", "count", n)
			}
		}
	}
}
