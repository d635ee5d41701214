// @title                       YaMDb Review API
// @version                     1.0
// @description                 Catalog of works with user reviews, comments and derived ratings. Accounts sign up without a password: a confirmation code is mailed out and exchanged for a bearer token.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 "Bearer <token>" as returned by POST /v1/auth/token.
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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	_ "github.com/yamdb/review-api/docs"
	"github.com/yamdb/review-api/internal/api"
	"github.com/yamdb/review-api/internal/api/handler"
	"github.com/yamdb/review-api/internal/core/ports"
	"github.com/yamdb/review-api/internal/core/service"
	mongostore "github.com/yamdb/review-api/internal/infrastructure/db/mongo"
	"github.com/yamdb/review-api/internal/infrastructure/db/postgres"
	redisstore "github.com/yamdb/review-api/internal/infrastructure/db/redis"
	"github.com/yamdb/review-api/internal/infrastructure/notify"
	"github.com/yamdb/review-api/internal/infrastructure/queue"
	"github.com/yamdb/review-api/internal/pkg/config"
	"github.com/yamdb/review-api/internal/pkg/token"
	"github.com/yamdb/review-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "yamdb-review-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "yamdb-review-api",
	})

	// --- Relational store ---
	db, err := postgres.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = postgres.Close(db) }()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	// --- Audit trail ---
	mongoClient, mongoDB, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	audit := mongostore.NewAuditRepository(mongoDB)
	if err := audit.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("audit indexes not created")
	}

	// --- Rating cache (optional) ---
	var ratingCache ports.RatingCache
	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, ratings will be computed on every read")
	} else {
		defer func() { _ = rdb.Close() }()
		ratingCache = redisstore.NewRatingCache(rdb, cfg.Redis.RatingTTL)
	}

	// --- Notifications ---
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, newMailer(cfg.Mail, log), log)
	dispatcher.Start()

	// --- Core ---
	signer := token.NewSigner(cfg.JWTSecret, cfg.TokenTTL)
	users := postgres.NewUserRepository(db)
	titles := postgres.NewTitleRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	ratings := service.NewRatingAggregator(reviewRepo, ratingCache, logger.For("ratings"))

	authService := service.NewAuthService(users, signer, dispatcher, audit, service.AuthOptions{
		SingleUseCodes: cfg.Auth.CodeSingleUse,
		CodeHashCost:   cfg.Auth.CodeHashCost,
	}, logger.For("auth"))
	catalogService := service.NewCatalogService(
		postgres.NewCategoryRepository(db),
		postgres.NewGenreRepository(db),
		titles,
		ratings,
		logger.For("catalog"),
	)
	reviewService := service.NewReviewService(titles, reviewRepo, postgres.NewCommentRepository(db), ratings, logger.For("reviews"))
	userService := service.NewUserService(users, reviewRepo, ratings, audit, logger.For("users"))

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Catalog:  catalogService,
		Reviews:  reviewService,
		Comments: reviewService,
		Users:    userService,
		Tokens:   signer,
		Health:   healthChecks(db, mongoClient, rdb),
		Log:      log,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stopDispatcher(dispatcher, log)
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	stopDispatcher(dispatcher, log)
	return nil
}

// stopDispatcher delivers the codes still queued once no request can add more.
func stopDispatcher(d *queue.Dispatcher, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("notification queue not drained")
	}
}

func newMailer(cfg config.MailConfig, log zerolog.Logger) ports.Mailer {
	if cfg.Backend == "smtp" {
		return notify.NewSMTPMailer(notify.SMTPConfig{
			Addr:     cfg.SMTPAddr,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.From,
		})
	}
	return notify.NewLogMailer(log.With().Str("component", "mailer").Logger())
}

// healthChecks lists the readiness probes. Redis is probed only when it was
// reachable at startup.
func healthChecks(db *gorm.DB, mc *mongo.Client, rdb *redis.Client) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
		"mongodb":  func(ctx context.Context) error { return mc.Ping(ctx, nil) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}
