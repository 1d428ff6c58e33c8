// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Attendance is one recorded gate event. Rows are immutable once written.
type Attendance struct { //nolint:govet // fieldalignment not critical for models
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	Intent    Intent    `db:"intent" json:"intent"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	Location  string    `db:"location" json:"location"`
	ScannerID string    `db:"scanner_id" json:"scanner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
