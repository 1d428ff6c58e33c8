// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Notification is a message queued for a parent or teacher after a
// gate event. Delivery beyond the row (email, push) is best-effort.
type Notification struct { //nolint:govet // fieldalignment not critical for models
	ID          int64     `db:"id" json:"id"`
	RecipientID int64     `db:"recipient_id" json:"recipient_id"`
	StudentID   int64     `db:"student_id" json:"student_id"`
	Kind        string    `db:"kind" json:"kind"`
	Message     string    `db:"message" json:"message"`
	Read        bool      `db:"read" json:"read"`
	SentAt      time.Time `db:"sent_at" json:"sent_at"`
}

// Recipient is a parent or teacher account that can receive notifications.
type Recipient struct { //nolint:govet // fieldalignment not critical for models
	ID       int64  `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"full_name"`
	Role     string `db:"role" json:"role"` // parent, teacher
}
