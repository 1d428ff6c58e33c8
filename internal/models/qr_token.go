// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// TokenTTL is how long an issued QR credential stays valid.
const TokenTTL = 15 * time.Minute

// QRToken is a single-use presentation credential bound to a student
// and an intent. It is consumed the first time it validates.
type QRToken struct { //nolint:govet // fieldalignment not critical for models
	ID        int64     `db:"id" json:"id"`
	Token     string    `db:"token" json:"-"`
	StudentID int64     `db:"student_id" json:"student_id"`
	Intent    Intent    `db:"intent" json:"intent"`
	Used      bool      `db:"used" json:"used"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the token is past its expiry at the given time.
func (t *QRToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
