// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/esalama/gatecheck/internal/models"
	"github.com/labstack/echo/v4"
)

type createNotificationRequest struct {
	StudentID        string `json:"student_id"`
	Kind             string `json:"kind"`
	Message          string `json:"message"`
	RelatedStudentID string `json:"related_student_id,omitempty"`
}

// CreateNotification fans a gate message out to the student's parent
// and teacher. Rows are the source of truth; email delivery on top of
// them is best-effort and never fails the request.
func (h *Handlers) CreateNotification(c echo.Context) error {
	var req createNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Kind == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "kind and message are required")
	}

	ctx := c.Request().Context()

	student, err := h.repo.GetStudentByStudentID(ctx, req.StudentID)
	if errors.Is(err, sql.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown student")
	}
	if err != nil {
		return fmt.Errorf("looking up student: %w", err)
	}

	recipientIDs := make([]int64, 0, 2)
	if student.ParentID != nil {
		recipientIDs = append(recipientIDs, *student.ParentID)
	}
	if student.TeacherID != nil {
		recipientIDs = append(recipientIDs, *student.TeacherID)
	}

	for _, recipientID := range recipientIDs {
		n := &models.Notification{
			RecipientID: recipientID,
			StudentID:   student.ID,
			Kind:        req.Kind,
			Message:     req.Message,
		}
		if err := h.repo.CreateNotification(ctx, n); err != nil {
			return fmt.Errorf("storing notification: %w", err)
		}

		h.emailNotification(c, recipientID, student.FullName, req.Message)
	}

	return c.JSON(http.StatusCreated, map[string]bool{"ok": true})
}

// emailNotification sends the notification by email if a mailer is
// configured. Failures are logged and swallowed.
func (h *Handlers) emailNotification(c echo.Context, recipientID int64, studentName, message string) {
	if h.mailer == nil {
		return
	}

	ctx := c.Request().Context()

	recipient, err := h.repo.GetRecipientByID(ctx, recipientID)
	if err != nil {
		slog.Warn("failed to look up notification recipient",
			"recipient_id", recipientID, "error", err)
		return
	}

	if err := h.mailer.SendNotification(ctx, recipient.Email, studentName, message); err != nil {
		slog.Warn("failed to send notification email",
			"recipient_id", recipientID, "error", err)
	}
}

// ListNotifications returns a recipient's notifications, newest first.
func (h *Handlers) ListNotifications(c echo.Context) error {
	recipientID, err := strconv.ParseInt(c.QueryParam("recipient_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "recipient_id is required")
	}
	unreadOnly := c.QueryParam("unread") == "true"

	notifications, err := h.repo.ListNotifications(c.Request().Context(), recipientID, unreadOnly)
	if err != nil {
		return fmt.Errorf("listing notifications: %w", err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead flags a notification as read.
func (h *Handlers) MarkNotificationRead(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	if err := h.repo.MarkNotificationRead(c.Request().Context(), id); err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
