package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"psyscreen/internal/config"
	"psyscreen/internal/db"
	"psyscreen/internal/email"
	apihttp "psyscreen/internal/http"
	"psyscreen/internal/repository"
	"psyscreen/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	catalog, err := service.DefaultCatalog()
	if err != nil {
		logger.Fatal("catalog load", zap.Error(err))
	}

	var (
		userRepo   repository.UserRepository
		resultRepo repository.ResultRepository
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		userRepo = repository.NewPgUserRepository(pool)
		resultRepo = repository.NewPgResultRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, results are kept in memory")
		store := repository.NewMemoryStore()
		userRepo = store
		resultRepo = store
	}

	sessionStore := service.NewMemorySessionStore(cfg.SessionIdleTimeout)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, falling back to in-memory sessions", zap.Error(err))
		} else {
			sessionStore = service.NewRedisSessionStore(redisClient, cfg.SessionIdleTimeout)
		}
		cancel()
	}

	notifier := email.NewDisabledNotifier("escalation notifier not configured")
	if cfg.SMTPHost != "" && cfg.AlertEmail != "" {
		smtpNotifier, err := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.AlertEmail, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp notifier init failed", zap.Error(err))
		} else {
			notifier = smtpNotifier
		}
	}

	tokenSvc := service.NewChannelTokenService(cfg.ChannelTokenSecret, cfg.ChannelTokenTTL)
	if !tokenSvc.Enabled() {
		logger.Warn("channel token secret not configured, channel auth disabled")
	}

	resultStore := service.NewResultStore(logger, resultRepo, userRepo)
	manager := service.NewSessionManager(logger, catalog, sessionStore, resultStore, userRepo, notifier)

	assessmentHandler := apihttp.NewAssessmentHandler(logger, manager)
	instrumentHandler := apihttp.NewInstrumentHandler(logger, catalog)
	router := apihttp.NewRouter(logger, tokenSvc, assessmentHandler, instrumentHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
