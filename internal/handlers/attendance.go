// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/esalama/gatecheck/internal/models"
	"github.com/esalama/gatecheck/internal/sse"
	"github.com/labstack/echo/v4"
)

type createAttendanceRequest struct {
	StudentID string    `json:"student_id"`
	Intent    string    `json:"intent"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location"`
	ScannerID string    `json:"scanner_id"`
}

type attendanceEvent struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Intent      string    `json:"intent"`
	Timestamp   time.Time `json:"timestamp"`
	Location    string    `json:"location"`
}

// CreateAttendance writes one attendance record and pushes it to
// dashboards watching the gate.
func (h *Handlers) CreateAttendance(c echo.Context) error {
	var req createAttendanceRequest
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

	timestamp := req.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	record := &models.Attendance{
		StudentID: student.ID,
		Intent:    intent,
		Timestamp: timestamp,
		Location:  req.Location,
		ScannerID: req.ScannerID,
	}
	if err := h.repo.CreateAttendance(ctx, record); err != nil {
		return fmt.Errorf("storing attendance: %w", err)
	}

	h.publishAttendance(student, record)

	return c.JSON(http.StatusCreated, map[string]bool{"ok": true})
}

// publishAttendance pushes the record to SSE subscribers of the gate.
func (h *Handlers) publishAttendance(student *models.Student, record *models.Attendance) {
	if h.hub == nil {
		return
	}

	event, err := sse.FormatJSONEvent("attendance", attendanceEvent{
		StudentID:   student.StudentID,
		StudentName: student.FullName,
		Intent:      record.Intent.String(),
		Timestamp:   record.Timestamp,
		Location:    record.Location,
	})
	if err != nil {
		slog.Warn("failed to format attendance event", "error", err)
		return
	}
	h.hub.Publish(record.Location, event)
}

// ListAttendance returns attendance records, filtered by student or day.
func (h *Handlers) ListAttendance(c echo.Context) error {
	ctx := c.Request().Context()

	if studentID := c.QueryParam("student_id"); studentID != "" {
		student, err := h.repo.GetStudentByStudentID(ctx, studentID)
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown student")
		}
		if err != nil {
			return fmt.Errorf("looking up student: %w", err)
		}

		records, err := h.repo.ListAttendanceByStudent(ctx, student.ID)
		if err != nil {
			return fmt.Errorf("listing attendance: %w", err)
		}
		return c.JSON(http.StatusOK, records)
	}

	day := time.Now().UTC()
	if raw := c.QueryParam("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid day, expected YYYY-MM-DD")
		}
		day = parsed
	}

	records, err := h.repo.ListAttendanceByDay(ctx, day)
	if err != nil {
		return fmt.Errorf("listing attendance: %w", err)
	}
	return c.JSON(http.StatusOK, records)
}
