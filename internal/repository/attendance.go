// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/esalama/gatecheck/internal/models"
)

// CreateAttendance inserts a new attendance record. Records are immutable;
// there is deliberately no update method.
func (r *Repository) CreateAttendance(ctx context.Context, record *models.Attendance) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO attendance (student_id, intent, timestamp, location, scanner_id)
		 VALUES (?, ?, ?, ?, ?)`,
		record.StudentID, record.Intent, record.Timestamp, record.Location, record.ScannerID)
	if err != nil {
		return err
	}
	record.ID, err = res.LastInsertId()
	return err
}

// ListAttendanceByStudent returns a student's records, newest first.
func (r *Repository) ListAttendanceByStudent(ctx context.Context, studentID int64) ([]models.Attendance, error) {
	var records []models.Attendance
	err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM attendance WHERE student_id = ? ORDER BY timestamp DESC`, studentID)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListAttendanceByDay returns all records within one calendar day, newest first.
func (r *Repository) ListAttendanceByDay(ctx context.Context, day time.Time) ([]models.Attendance, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var records []models.Attendance
	err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM attendance WHERE timestamp >= ? AND timestamp < ? ORDER BY timestamp DESC`,
		start, end)
	if err != nil {
		return nil, err
	}
	return records, nil
}
