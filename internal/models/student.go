// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Student is a credential holder registered at the school.
type Student struct { //nolint:govet // fieldalignment not critical for models
	ID        int64     `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	ClassName string    `db:"class_name" json:"class_name"`
	ParentID  *int64    `db:"parent_id" json:"parent_id,omitempty"`
	TeacherID *int64    `db:"teacher_id" json:"teacher_id,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
