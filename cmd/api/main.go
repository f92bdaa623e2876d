package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pharmaeye/pharmaeye-backend/api/routes"
	"github.com/pharmaeye/pharmaeye-backend/internal/auth"
	"github.com/pharmaeye/pharmaeye-backend/internal/backup"
	"github.com/pharmaeye/pharmaeye-backend/internal/drugs"
	"github.com/pharmaeye/pharmaeye-backend/internal/importer"
	"github.com/pharmaeye/pharmaeye-backend/internal/notifications"
	"github.com/pharmaeye/pharmaeye-backend/internal/ocr"
	"github.com/pharmaeye/pharmaeye-backend/internal/store"
	"github.com/pharmaeye/pharmaeye-backend/internal/users"
	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
	"github.com/pharmaeye/pharmaeye-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	gateway, err := store.Open(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open storage backend", err)
		os.Exit(1)
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			logg.Error(context.Background(), "error closing storage backend", err)
		}
	}()

	if err := store.Seed(context.Background(), gateway, cfg, logg); err != nil {
		logg.Error(context.Background(), "failed to seed storage backend", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(gateway, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	drugsService, err := drugs.NewService(gateway)
	if err != nil {
		logg.Error(context.Background(), "failed to create drugs service", err)
		os.Exit(1)
	}
	usersService, err := users.NewService(gateway, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	notificationsService, err := notifications.NewService(gateway)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}
	backupService, err := backup.NewService(gateway)
	if err != nil {
		logg.Error(context.Background(), "failed to create backup service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": gateway.Backend(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:        cfg,
			Logger:        logg,
			Gateway:       gateway,
			HTTPMetrics:   httpMetrics,
			Registry:      registry,
			Auth:          authService,
			Drugs:         drugsService,
			Users:         usersService,
			Notifications: notificationsService,
			Backup:        backupService,
			Importer:      importer.NewService(gateway, logg),
			OCR:           ocr.NewService(cfg.Gemini, logg),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
