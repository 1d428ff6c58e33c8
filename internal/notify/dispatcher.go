// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// Package notify builds the parent/teacher notification for a recorded
// gate event and submits it for fan-out. Everything here is
// best-effort: a lost notification is a nuisance, a blocked scan line
// is not.
package notify

import (
	"context"
	"log/slog"

	"github.com/esalama/gatecheck/internal/gateapi"
	"github.com/esalama/gatecheck/internal/i18n"
	"github.com/esalama/gatecheck/internal/models"
	"github.com/esalama/gatecheck/internal/scanner"
	"golang.org/x/text/language"
)

// Sender submits a notification to the verification service.
// Implemented by gateapi.Client.
type Sender interface {
	SendNotification(ctx context.Context, n gateapi.NotificationRequest) error
}

// Dispatcher implements scanner.Notifier.
type Dispatcher struct {
	sender Sender
	lang   language.Tag
}

// NewDispatcher creates a dispatcher that renders messages in the
// given language.
func NewDispatcher(sender Sender, lang language.Tag) *Dispatcher {
	return &Dispatcher{sender: sender, lang: lang}
}

// Dispatch builds the direction-specific message and submits it.
// Failures are logged and swallowed; the attendance record this event
// describes is already committed and must not be disturbed.
func (d *Dispatcher) Dispatch(ctx context.Context, event scanner.NotifyEvent) {
	ctx = i18n.WithLocale(ctx, d.lang)

	data := map[string]any{
		"Name": event.StudentName,
		"Time": event.At.Format("15:04"),
	}

	var message string
	switch event.Intent {
	case models.IntentArrival:
		message = i18n.TData(ctx, "notification_arrival", data)
	case models.IntentDeparture:
		message = i18n.TData(ctx, "notification_departure", data)
	default:
		message = i18n.TData(ctx, "notification_generic", data)
	}

	err := d.sender.SendNotification(ctx, gateapi.NotificationRequest{
		StudentID:        event.StudentID,
		Kind:             event.Intent.String(),
		Message:          message,
		RelatedStudentID: event.StudentID,
	})
	if err != nil {
		slog.Warn("notification dispatch failed",
			"student_id", event.StudentID, "kind", event.Intent, "error", err)
		return
	}

	slog.Debug("notification dispatched", "student_id", event.StudentID, "kind", event.Intent)
}
