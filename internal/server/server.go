// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// Package server wires the verification service together and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/esalama/gatecheck/internal/config"
	"github.com/esalama/gatecheck/internal/database"
	"github.com/esalama/gatecheck/internal/handlers"
	"github.com/esalama/gatecheck/internal/i18n"
	"github.com/esalama/gatecheck/internal/repository"
	"github.com/esalama/gatecheck/internal/services/mailer"
	"github.com/esalama/gatecheck/internal/sse"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// tokenSweepInterval is how often expired QR tokens are purged.
const tokenSweepInterval = 10 * time.Minute

// Run starts the verification service with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	SetupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Database (migrations run inside Open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	repo := repository.New(db)
	hub := sse.NewHub()

	// Mailer is optional; without SMTP config notifications stay in-app.
	var mail handlers.Mailer
	if cfg.SMTP.Host != "" {
		svc, mailErr := mailer.NewService(&cfg.SMTP)
		if mailErr != nil {
			return fmt.Errorf("failed to init mailer: %w", mailErr)
		}
		mail = svc
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, repo, hub, mail)

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	go sweepExpiredTokens(sweepCtx, repo)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(e *echo.Echo, repo *repository.Repository, hub *sse.Hub, mail handlers.Mailer) {
	h := handlers.New(repo, hub, mail)

	e.GET("/health", h.Health)

	e.POST("/qr/generate", h.GenerateQR)
	e.POST("/qr/validate", h.ValidateQR)

	e.POST("/attendance", h.CreateAttendance)
	e.GET("/attendance", h.ListAttendance)

	e.POST("/notifications", h.CreateNotification)
	e.GET("/notifications", h.ListNotifications)
	e.POST("/notifications/:id/read", h.MarkNotificationRead)

	e.GET("/events", h.Events)
}

// sweepExpiredTokens periodically deletes QR tokens past their expiry.
func sweepExpiredTokens(ctx context.Context, repo *repository.Repository) {
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpiredQRTokens(ctx, time.Now().UTC()); err != nil {
				slog.Warn("failed to sweep expired tokens", "error", err)
			}
		}
	}
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := cfg.Server.Addr()
	go func() {
		slog.Info("server running", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
