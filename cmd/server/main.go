package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	cfg.Validate()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	events := newPublisher(cfg)
	index := newProductIndex(cfg)
	limiter, redisClient := newLimiter(cfg)

	r := repo.New(db)
	authSvc := &service.AuthService{Repo: r, Events: events, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}
	catalogSvc := &service.CatalogService{Repo: r, Events: events}
	if index != nil {
		catalogSvc.Index = index
	}
	orderSvc := &service.OrderService{Repo: r, Events: events, Pay: service.SimulatePayment}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		UserHandler:    &httpserver.UserHTTP{Svc: &service.UserService{Repo: r, Events: events}},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: events}, Orders: orderSvc},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc},
		JWTSecret:      cfg.JWTSecret,
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
		Limiter:        limiter,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: cfg.AuthRateWindow,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	closeAll(logger, db, events, redisClient)
	logger.Info("stopped")
}

func newPublisher(cfg config.Config) mykafka.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		slog.Info("kafka disabled, events are dropped")
		return mykafka.NopPublisher{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mykafka.EnsureTopics(ctx, cfg.KafkaBrokers[0], mykafka.Topics...); err != nil {
		slog.Warn("kafka topics not ensured", "error", err)
	}
	return mykafka.NewProducer(cfg.KafkaBrokers)
}

// newProductIndex returns nil when search falls back to the database.
func newProductIndex(cfg config.Config) *es.ProductIndex {
	if cfg.ESURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
	if err != nil {
		slog.Warn("elasticsearch unavailable, search uses the database", "error", err)
		return nil
	}
	index := &es.ProductIndex{Client: client, Index: cfg.ESIndex}
	if err := index.EnsureIndex(ctx); err != nil {
		slog.Warn("elasticsearch index not ensured, search uses the database", "error", err)
		return nil
	}
	return index
}

func newLimiter(cfg config.Config) (ratelimit.Allower, *redis.Client) {
	if cfg.RedisAddr == "" {
		slog.Info("redis disabled, auth routes are not rate limited")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, auth routes are not rate limited", "error", err)
		_ = client.Close()
		return nil, nil
	}
	return ratelimit.NewLimiter(client, cfg.ServiceName+":ratelimit:"), client
}

func closeAll(l *slog.Logger, db *gorm.DB, events mykafka.Publisher, redisClient *redis.Client) {
	if err := events.Close(); err != nil {
		l.Error("close kafka producer", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			l.Error("close redis", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		l.Error("close db", "error", err)
	}
}
