package main

import (
	"context"
	"errors"
	"immofds/server/config"
	"immofds/server/internal/api"
	"immofds/server/internal/auth"
	"immofds/server/internal/contact"
	"immofds/server/internal/database"
	"immofds/server/internal/metrics"
	"immofds/server/internal/telegram"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithError(err).Warn("Unknown log level, keeping info")
	}

	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	ctx := context.Background()
	if _, err := auth.NewUserService(db, logger).EnsureBootstrapAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword); err != nil {
		logger.WithError(err).Fatal("Failed to create bootstrap administrator")
	}

	m := metrics.NewManager()

	tg := telegram.NewService(telegram.Config{
		Enabled:  cfg.Telegram.Enabled,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		APIURL:   cfg.Telegram.APIURL,
	}, logger)

	var notifier contact.Notifier
	if tg.Enabled() {
		notifier = m.CountNotifications(tg)
		logger.Info("Telegram notifications enabled")
	}

	handler := api.NewHandler(db, cfg, logger, notifier, m)

	if _, err := handler.PurgeExpiredSessions(ctx); err != nil {
		logger.WithError(err).Warn("Failed to purge expired refresh tokens")
	}

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	api.SetupRoutes(router, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shut down")
	}
	logger.Info("Server stopped")
}
