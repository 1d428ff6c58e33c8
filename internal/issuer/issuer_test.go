// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package issuer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/esalama/gatecheck/internal/gateapi"
	"github.com/esalama/gatecheck/internal/issuer"
	"github.com/esalama/gatecheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenService hands out sequential tokens with a fixed TTL and
// can be switched into a failing mode.
type fakeTokenService struct {
	mu       sync.Mutex
	attempts int
	failing  bool
	ttl      time.Duration
	now      time.Time
}

func newFakeTokenService(ttl time.Duration) *fakeTokenService {
	return &fakeTokenService{ttl: ttl, now: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)}
}

func (f *fakeTokenService) IssueToken(_ context.Context, _ string, _ models.Intent) (gateapi.IssuedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.failing {
		return gateapi.IssuedToken{}, errors.New("service unreachable")
	}
	return gateapi.IssuedToken{
		Credential: "tok-" + string(rune('a'+f.attempts)),
		IssuedAt:   f.now,
		ExpiresAt:  f.now.Add(f.ttl),
	}, nil
}

func (f *fakeTokenService) setFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *fakeTokenService) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeTokenService) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeTokenService) currentTime() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func TestRotate_InstallsToken(t *testing.T) {
	svc := newFakeTokenService(15 * time.Minute)
	iss := issuer.New(svc, "STU-001", models.IntentArrival, time.Minute)

	_, ok := iss.Current()
	assert.False(t, ok)

	require.NoError(t, iss.Rotate(context.Background()))

	token, ok := iss.Current()
	require.True(t, ok)
	assert.Equal(t, "STU-001", token.StudentID)
	assert.Equal(t, models.IntentArrival, token.Intent)
	assert.NotEmpty(t, token.Credential)
	assert.Equal(t, 15*time.Minute, token.ExpiresAt.Sub(token.IssuedAt))
}

func TestRotate_OverwritesPreviousToken(t *testing.T) {
	svc := newFakeTokenService(15 * time.Minute)
	iss := issuer.New(svc, "STU-001", models.IntentArrival, time.Minute)
	ctx := context.Background()

	require.NoError(t, iss.Rotate(ctx))
	first, _ := iss.Current()

	require.NoError(t, iss.Rotate(ctx))
	second, _ := iss.Current()

	assert.NotEqual(t, first.Credential, second.Credential)
}

func TestRotate_FailureKeepsPreviousToken(t *testing.T) {
	svc := newFakeTokenService(15 * time.Minute)
	iss := issuer.New(svc, "STU-001", models.IntentArrival, time.Minute)
	ctx := context.Background()

	require.NoError(t, iss.Rotate(ctx))
	before, _ := iss.Current()

	svc.setFailing(true)
	err := iss.Rotate(ctx)

	var issErr *issuer.IssuanceError
	require.ErrorAs(t, err, &issErr)

	after, ok := iss.Current()
	require.True(t, ok)
	assert.Equal(t, before.Credential, after.Credential)
}

func TestRotate_RecoversAfterFailure(t *testing.T) {
	svc := newFakeTokenService(15 * time.Minute)
	iss := issuer.New(svc, "STU-001", models.IntentArrival, time.Minute)
	ctx := context.Background()

	svc.setFailing(true)
	require.Error(t, iss.Rotate(ctx))
	_, ok := iss.Current()
	assert.False(t, ok)

	svc.setFailing(false)
	require.NoError(t, iss.Rotate(ctx))
	_, ok = iss.Current()
	assert.True(t, ok)
}

// With TTL 900s and a 60s rotation interval, twenty minutes of
// operation means twenty issuance attempts and the current token is
// always at least TTL minus one interval from expiry.
func TestRotationSchedule(t *testing.T) {
	const (
		ttl      = 900 * time.Second
		interval = 60 * time.Second
		runFor   = 20 * time.Minute
	)

	svc := newFakeTokenService(ttl)
	iss := issuer.New(svc, "STU-001", models.IntentArrival, interval)
	ctx := context.Background()

	ticks := int(runFor / interval) // one issuance per interval, first at t=0
	for tick := 0; tick < ticks; tick++ {
		require.NoError(t, iss.Rotate(ctx))

		// Advance to just before the next rotation: the worst case for
		// remaining validity.
		svc.advance(interval)
		assert.GreaterOrEqual(t, iss.Remaining(svc.currentTime()), ttl-interval)
	}

	assert.Equal(t, 20, svc.attemptCount())
}

func TestRemaining_ClampsToZero(t *testing.T) {
	svc := newFakeTokenService(15 * time.Minute)
	iss := issuer.New(svc, "STU-001", models.IntentArrival, time.Minute)

	assert.Equal(t, time.Duration(0), iss.Remaining(time.Now()))

	require.NoError(t, iss.Rotate(context.Background()))
	token, _ := iss.Current()

	assert.Equal(t, 15*time.Minute, iss.Remaining(token.IssuedAt))
	assert.Equal(t, 10*time.Minute, iss.Remaining(token.IssuedAt.Add(5*time.Minute)))
	assert.Equal(t, time.Duration(0), iss.Remaining(token.IssuedAt.Add(time.Hour)))
}

func TestRun_RotatesOnInterval(t *testing.T) {
	svc := newFakeTokenService(15 * time.Minute)
	iss := issuer.New(svc, "STU-001", models.IntentArrival, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()

	err := iss.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Initial issuance plus roughly five ticks; exact count depends on
	// scheduling, so only check the lower bound.
	assert.GreaterOrEqual(t, svc.attemptCount(), 4)
}

func TestCountdown_EmitsTicks(t *testing.T) {
	svc := newFakeTokenService(15 * time.Minute)
	iss := issuer.New(svc, "STU-001", models.IntentArrival, time.Minute)
	require.NoError(t, iss.Rotate(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	ticks := iss.Countdown(ctx)

	select {
	case tick, ok := <-ticks:
		require.True(t, ok)
		assert.Greater(t, tick.RemainingSeconds, 0)
	case <-time.After(2 * time.Second):
		t.Fatal("no countdown tick received")
	}

	<-ctx.Done()
	// Channel closes on teardown.
	for range ticks { //nolint:revive // draining until close
	}
}
