// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP handlers of the verification
// service.
package handlers

import (
	"context"
	"net/http"

	"github.com/esalama/gatecheck/internal/repository"
	"github.com/esalama/gatecheck/internal/sse"
	"github.com/labstack/echo/v4"
)

// Mailer sends notification emails. It is optional; a nil Mailer
// disables email fan-out.
type Mailer interface {
	SendNotification(ctx context.Context, toEmail, studentName, message string) error
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	repo   *repository.Repository
	hub    *sse.Hub
	mailer Mailer
}

// New creates a new Handlers instance. mailer may be nil.
func New(repo *repository.Repository, hub *sse.Hub, mailer Mailer) *Handlers {
	return &Handlers{repo: repo, hub: hub, mailer: mailer}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
