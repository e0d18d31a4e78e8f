package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/kelvins/geocoder"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/location"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/search"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

type preferenceStore interface {
	weather.Preferences
	Close() error
}

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.OpenWeatherAPIKey == "" {
		log.Printf("WARN: OPENWEATHER_API_KEY is not set, every refresh will fail with API_KEY")
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	owm := providers.NewOpenWeatherClient(httpClient, providers.OpenWeatherConfig{
		APIKey:     cfg.OpenWeatherAPIKey,
		BaseURL:    cfg.OpenWeatherBaseURL,
		Lang:       cfg.Lang,
		MaxRetries: cfg.MaxRetries,
	})

	prefs, err := openPreferences(cfg.PreferencesDB)
	if err != nil {
		log.Fatalf("failed to open preference store: %v", err)
	}
	defer func() {
		if err := prefs.Close(); err != nil {
			log.Printf("ERROR: closing preference store: %v", err)
		}
	}()

	resolver := location.NewResolver(deviceLocator(cfg), cfg.Fallback, cfg.LocateTimeout)

	// Core service owning the dashboard state.
	service := weather.NewService(weather.Options{
		Client:      owm,
		Geocoder:    owm,
		Locator:     resolver,
		Preferences: prefs,
		SearchLimit: cfg.SearchLimit,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service.Init(ctx)
	go func() {
		if _, err := service.Start(ctx); err != nil {
			log.Printf("ERROR: initial refresh failed: %v", err)
		}
	}()

	suggestions := search.NewDebouncer(cfg.SearchDebounce, func(ctx context.Context, q string) ([]weather.Place, error) {
		return service.Search(ctx, q, cfg.SearchLimit)
	}, func(r search.Result) {
		if r.Err != nil {
			service.SetAdvisory(weather.AdvisoryFor(r.Err))
		}
	})
	defer suggestions.Stop()

	// Scheduler that flips the theme around sunrise and sunset.
	sched := scheduler.New(cfg.ThemeInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Refreshes wait on two upstream calls.
		WriteTimeout: cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
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

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, suggestions)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s", cfg.Port)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func openPreferences(path string) (preferenceStore, error) {
	if path == "" {
		log.Printf("INFO: PREFERENCES_DB not set, unit preference is kept in memory")
		return store.NewMemoryStore(), nil
	}
	s, err := store.NewSQLite(path)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: unit preference stored in %s", path)
	return s, nil
}

// deviceLocator picks the device position source: fixed coordinates, then a
// geocoded address, else none.
func deviceLocator(cfg *config.AppConfig) location.Locator {
	switch {
	case cfg.DeviceCoordinates != nil:
		return location.StaticLocator{Coordinates: *cfg.DeviceCoordinates}
	case cfg.DeviceCity != "" && cfg.GeocoderAPIKey != "":
		return location.NewAddressLocator(cfg.GeocoderAPIKey, geocoder.Address{
			City:    cfg.DeviceCity,
			State:   cfg.DeviceState,
			Country: cfg.DeviceCountry,
		})
	default:
		return nil
	}
}
