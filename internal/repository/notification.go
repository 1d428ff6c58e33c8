// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"github.com/esalama/gatecheck/internal/models"
)

// CreateNotification stores a notification for a recipient.
func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (recipient_id, student_id, kind, message)
		 VALUES (?, ?, ?, ?)`,
		n.RecipientID, n.StudentID, n.Kind, n.Message)
	if err != nil {
		return err
	}
	n.ID, err = res.LastInsertId()
	return err
}

// ListNotifications returns a recipient's notifications, newest first.
// With unreadOnly set, read notifications are filtered out.
func (r *Repository) ListNotifications(ctx context.Context, recipientID int64, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT * FROM notifications WHERE recipient_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY sent_at DESC`

	var notifications []models.Notification
	err := r.db.SelectContext(ctx, &notifications, query, recipientID)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as read.
func (r *Repository) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	return err
}
