package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/skywx/bluesky-weather-poster/internal/api/http"
	"github.com/skywx/bluesky-weather-poster/internal/bluesky"
	"github.com/skywx/bluesky-weather-poster/internal/clientraw"
	"github.com/skywx/bluesky-weather-poster/internal/config"
	"github.com/skywx/bluesky-weather-poster/internal/poster"
	"github.com/skywx/bluesky-weather-poster/internal/publish"
	"github.com/skywx/bluesky-weather-poster/internal/scheduler"
	"github.com/skywx/bluesky-weather-poster/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for all outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source := clientraw.NewSource(httpClient, cfg.ClientrawURL)

	images := bluesky.NewImagePreparer(httpClient)
	client := bluesky.NewClient(httpClient, cfg.BlueskyBaseURL, images)
	publisher := publish.NewMultiAccountPublisher(client)

	history := store.NewMemoryStore(cfg.HistoryMaxRuns, cfg.HistoryMaxAge)

	service := poster.NewService(source, publisher, history, cfg.Post, cfg.StationURL, cfg.Accounts, cfg.Schedule)

	sched := scheduler.New(service, cfg.Schedule, cfg.JobTimeout)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "bluesky-weather-poster",
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
			"service": "bluesky-weather-poster",
		})
	})

	httpapi.RegisterRoutes(app, service, cfg.Post)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
