// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/esalama/gatecheck/internal/models"
	"github.com/labstack/echo/v4"
)

// tokenLength is the number of random bytes in a QR credential.
const tokenLength = 32

type generateQRRequest struct {
	StudentID string `json:"student_id"`
	Intent    string `json:"intent"`
}

type generateQRResponse struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GenerateQR issues a fresh single-use credential for a student. The
// previous credential stays valid until it expires or is consumed, so
// a display refreshing every minute never races its own scan.
func (h *Handlers) GenerateQR(c echo.Context) error {
	var req generateQRRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	intent, err := models.ParseIntent(req.Intent)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid intent")
	}

	ctx := c.Request().Context()

	student, err := h.repo.GetStudentByStudentID(ctx, req.StudentID)
	if errors.Is(err, sql.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown student")
	}
	if err != nil {
		return fmt.Errorf("looking up student: %w", err)
	}
	if !student.Active {
		return echo.NewHTTPError(http.StatusUnauthorized, "student not active")
	}

	credential, err := generateToken()
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	now := time.Now().UTC()
	token := &models.QRToken{
		Token:     credential,
		StudentID: student.ID,
		Intent:    intent,
		ExpiresAt: now.Add(models.TokenTTL),
	}
	if err := h.repo.CreateQRToken(ctx, token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	return c.JSON(http.StatusOK, generateQRResponse{
		Token:     credential,
		IssuedAt:  now,
		ExpiresAt: token.ExpiresAt,
	})
}

type validateQRRequest struct {
	Token     string `json:"token"`
	ScannerID string `json:"scanner_id"`
	Location  string `json:"location"`
}

type validateQRResponse struct {
	Valid       bool      `json:"valid"`
	StudentID   string    `json:"student_id,omitempty"`
	StudentName string    `json:"student_name,omitempty"`
	ClassName   string    `json:"class_name,omitempty"`
	Intent      string    `json:"intent,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

// ValidateQR checks a scanned credential and consumes it. A rejected
// credential is still a 200 with valid=false; non-200 statuses are
// reserved for requests the service could not judge at all.
func (h *Handlers) ValidateQR(c echo.Context) error {
	var req validateQRRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" {
		return c.JSON(http.StatusOK, validateQRResponse{Valid: false, Reason: "empty token"})
	}

	ctx := c.Request().Context()

	token, err := h.repo.GetQRToken(ctx, req.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusOK, validateQRResponse{Valid: false, Reason: "unknown token"})
	}
	if err != nil {
		return fmt.Errorf("looking up token: %w", err)
	}

	now := time.Now().UTC()
	if token.Expired(now) {
		return c.JSON(http.StatusOK, validateQRResponse{Valid: false, Reason: "token expired"})
	}

	consumed, err := h.repo.ConsumeQRToken(ctx, req.Token)
	if err != nil {
		return fmt.Errorf("consuming token: %w", err)
	}
	if !consumed {
		return c.JSON(http.StatusOK, validateQRResponse{Valid: false, Reason: "token already used"})
	}

	student, err := h.repo.GetStudentByID(ctx, token.StudentID)
	if err != nil {
		return fmt.Errorf("looking up student: %w", err)
	}
	if !student.Active {
		return c.JSON(http.StatusOK, validateQRResponse{Valid: false, Reason: "student not active"})
	}

	return c.JSON(http.StatusOK, validateQRResponse{
		Valid:       true,
		StudentID:   student.StudentID,
		StudentName: student.FullName,
		ClassName:   student.ClassName,
		Intent:      token.Intent.String(),
		Timestamp:   now,
	})
}

// generateToken returns a fresh random credential as a hex string.
func generateToken() (string, error) {
	bytes := make([]byte, tokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
