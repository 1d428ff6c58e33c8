// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/esalama/gatecheck/internal/models"
)

// CreateQRToken stores a freshly issued token.
func (r *Repository) CreateQRToken(ctx context.Context, token *models.QRToken) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO qr_tokens (token, student_id, intent, used, expires_at)
		 VALUES (?, ?, ?, 0, ?)`,
		token.Token, token.StudentID, token.Intent, token.ExpiresAt)
	if err != nil {
		return err
	}
	token.ID, err = res.LastInsertId()
	return err
}

// GetQRToken retrieves a token by its credential string.
func (r *Repository) GetQRToken(ctx context.Context, credential string) (*models.QRToken, error) {
	var token models.QRToken
	err := r.db.GetContext(ctx, &token, `SELECT * FROM qr_tokens WHERE token = ?`, credential)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// ConsumeQRToken marks an unused token as used. It returns false when the
// token was already consumed by a concurrent reader, which makes validation
// safe to call twice for the same credential: exactly one caller wins.
func (r *Repository) ConsumeQRToken(ctx context.Context, credential string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE qr_tokens SET used = 1 WHERE token = ? AND used = 0`, credential)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// DeleteExpiredQRTokens removes tokens past their expiry.
func (r *Repository) DeleteExpiredQRTokens(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM qr_tokens WHERE expires_at < ?`, now)
	return err
}
