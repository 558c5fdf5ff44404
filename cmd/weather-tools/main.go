package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	httpapi "github.com/wxagent/weather-tools/internal/api/http"
	"github.com/wxagent/weather-tools/internal/config"
	"github.com/wxagent/weather-tools/internal/openweather"
	"github.com/wxagent/weather-tools/internal/ratelimit"
	"github.com/wxagent/weather-tools/internal/scheduler"
	"github.com/wxagent/weather-tools/internal/secrets"
	"github.com/wxagent/weather-tools/internal/store"
	"github.com/wxagent/weather-tools/internal/tools"
	"github.com/wxagent/weather-tools/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	// One governor for the whole process; every operation shares its budget.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	governor := ratelimit.NewManager(cfg.GovernorCapacity, cfg.GovernorWindow, redisClient, cfg.RedisPrefix)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	client := openweather.NewClient(httpClient)
	svc := weather.NewService(governor, client, secrets.NewEnvStore())
	registry := tools.NewRegistry(svc)
	cache := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	prewarmer := scheduler.New(cfg.PrewarmLocations, cfg.PrewarmInterval, svc, cache)
	if err := prewarmer.Start(); err != nil {
		log.WithError(err).Fatal("failed to start prewarm scheduler")
	}
	defer prewarmer.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-tools",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-tools",
		})
	})

	httpapi.RegisterRoutes(app, svc, registry, cache)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Error("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
