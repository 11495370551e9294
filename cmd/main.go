package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnthoniusHendriyanto/ecommerce-auth/config"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/db"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/handler"
	repo "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/repository/postgres"
	redisrepo "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/repository/redis"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/service"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/notifier"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx := context.Background()

	if err := db.RunMigrations(cfg.DBURL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer dbPool.Close()

	redisClient := db.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	userRepo := repo.NewPostgresRepository(dbPool)
	ledger := redisrepo.NewLedger(redisClient)
	attempts := redisrepo.NewAttemptCounter(redisClient)
	sessions := redisrepo.NewSessionCache(redisClient)

	var mailer domain.Notifier = notifier.NewNoop()
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		mailer = notifier.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailSender, cfg.AppBaseURL)
	}

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenExpiry(), cfg.RefreshTokenExpiry())
	userService := service.NewUserService(userRepo, tokenService, ledger, attempts, sessions, mailer, cfg)

	verifyCache := service.NewVerificationCache(cfg.VerifyCacheSize, cfg.VerifyCacheTTL())
	gate := handler.NewAuthMiddleware(tokenService, ledger, verifyCache, userService)
	ipLimiter := handler.NewIPRateLimiter(cfg.IPRatePerMin, cfg.IPRateBurst)
	defer ipLimiter.Stop()

	authHandler := handler.NewAuthHandler(userService)

	app := fiber.New(fiber.Config{
		ErrorHandler: handler.NewErrorHandler(cfg.IsProduction()),
	})

	handler.RegisterRoutes(app, authHandler, gate, ipLimiter)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("auth service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
