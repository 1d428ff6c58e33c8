// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// Package issuer keeps a holder device supplied with a continuously
// valid, rotating QR credential.
package issuer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/esalama/gatecheck/internal/gateapi"
	"github.com/esalama/gatecheck/internal/models"
)

// DefaultRotationInterval is how often a fresh token replaces the
// current one. It is deliberately far shorter than the 15 minute token
// TTL, so a presented token is never close to expiry under normal
// operation and a replayed token dies within one interval.
const DefaultRotationInterval = time.Minute

// TokenService issues credentials. Implemented by gateapi.Client.
type TokenService interface {
	IssueToken(ctx context.Context, studentID string, intent models.Intent) (gateapi.IssuedToken, error)
}

// Token is the issuer's in-memory copy of the current credential.
// There is at most one per issuer; a new issuance overwrites it.
type Token struct {
	StudentID  string
	Intent     models.Intent
	Credential string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// IssuanceError wraps a failed token request.
type IssuanceError struct {
	Err error
}

func (e *IssuanceError) Error() string {
	return "token issuance failed: " + e.Err.Error()
}

func (e *IssuanceError) Unwrap() error {
	return e.Err
}

// Issuer owns the current token for one holder and rotates it on a
// fixed interval.
type Issuer struct {
	svc       TokenService
	studentID string
	intent    models.Intent
	interval  time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	current *Token
}

// New creates an issuer for the given holder and intent. A
// non-positive interval falls back to DefaultRotationInterval.
func New(svc TokenService, studentID string, intent models.Intent, interval time.Duration) *Issuer {
	if interval <= 0 {
		interval = DefaultRotationInterval
	}
	return &Issuer{
		svc:       svc,
		studentID: studentID,
		intent:    intent,
		interval:  interval,
		now:       time.Now,
	}
}

// Run issues a token immediately and then rotates on every interval
// tick until the context is cancelled. A failed rotation keeps the
// previous token current and is retried on the next tick; it never
// stops the loop.
func (i *Issuer) Run(ctx context.Context) error {
	if err := i.Rotate(ctx); err != nil {
		slog.Warn("initial token issuance failed", "student_id", i.studentID, "error", err)
	}

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := i.Rotate(ctx); err != nil {
				slog.Warn("token rotation failed, keeping previous token",
					"student_id", i.studentID, "error", err)
			}
		}
	}
}

// Rotate requests a fresh token and installs it as current. On failure
// the previous token (possibly expired) stays in place; an expired
// token is the verification service's problem to reject, not ours.
func (i *Issuer) Rotate(ctx context.Context) error {
	issued, err := i.svc.IssueToken(ctx, i.studentID, i.intent)
	if err != nil {
		return &IssuanceError{Err: err}
	}

	i.mu.Lock()
	i.current = &Token{
		StudentID:  i.studentID,
		Intent:     i.intent,
		Credential: issued.Credential,
		IssuedAt:   issued.IssuedAt,
		ExpiresAt:  issued.ExpiresAt,
	}
	i.mu.Unlock()

	slog.Debug("token rotated", "student_id", i.studentID, "expires_at", issued.ExpiresAt)
	return nil
}

// Current returns a snapshot of the current token, if one was ever
// issued.
func (i *Issuer) Current() (Token, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.current == nil {
		return Token{}, false
	}
	return *i.current, true
}

// Remaining reports the current token's remaining validity, clamped to
// zero. It is display-only and drives no control decision.
func (i *Issuer) Remaining(now time.Time) time.Duration {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.current == nil {
		return 0
	}
	remaining := i.current.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
