// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// Package scanner turns the noisy stream of decoded QR strings on a
// verifier device into at most one validation attempt per physical
// presentation, and sequences the side effects that follow a valid one:
// record attendance first, notify second. Recording is required and
// fails loudly; notification is best-effort and never is.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/esalama/gatecheck/internal/gateapi"
	"github.com/esalama/gatecheck/internal/models"
)

// DefaultValidateTimeout bounds one validation round trip.
const DefaultValidateTimeout = 15 * time.Second

// DefaultResetDelay is how long a result stays on screen before the
// display returns to ready, unless a new reading pre-empts it.
const DefaultResetDelay = 3 * time.Second

// Validator resolves a scanned credential. Implemented by gateapi.Client.
type Validator interface {
	ValidateToken(ctx context.Context, credential, scannerID, location string) gateapi.Outcome
}

// Recorder writes attendance records. Implemented by gateapi.Client.
type Recorder interface {
	RecordAttendance(ctx context.Context, record gateapi.AttendanceRequest) error
}

// Notifier dispatches a notification for a recorded gate event. It
// must never fail the caller; implementations swallow and log errors.
type Notifier interface {
	Dispatch(ctx context.Context, event NotifyEvent)
}

// NotifyEvent describes a committed attendance record for notification
// fan-out.
type NotifyEvent struct {
	StudentID   string
	StudentName string
	Intent      models.Intent
	At          time.Time
}

// Config carries the per-gate pipeline settings.
type Config struct {
	ScannerID       string
	Location        string
	Cooldown        time.Duration
	ValidateTimeout time.Duration
	ResetDelay      time.Duration
}

// Pipeline is the verifier-side scan state machine. One goroutine
// (Run) owns all mutable state; validation attempts are strictly
// serialized, which is what keeps the dedup window single-writer.
type Pipeline struct {
	validator Validator
	recorder  Recorder
	notifier  Notifier
	cfg       Config

	mailbox  *Mailbox
	dedup    *DedupWindow
	feedback chan Feedback
	now      func() time.Time
}

// New creates a pipeline. Zero durations in cfg fall back to the
// defaults.
func New(validator Validator, recorder Recorder, notifier Notifier, cfg Config) *Pipeline {
	if cfg.ValidateTimeout <= 0 {
		cfg.ValidateTimeout = DefaultValidateTimeout
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = DefaultResetDelay
	}
	return &Pipeline{
		validator: validator,
		recorder:  recorder,
		notifier:  notifier,
		cfg:       cfg,
		mailbox:   NewMailbox(),
		dedup:     NewDedupWindow(cfg.Cooldown),
		feedback:  make(chan Feedback, 16),
		now:       time.Now,
	}
}

// Submit hands a decoded string to the pipeline. Safe to call from the
// capture goroutine at any rate: a reading that arrives while another
// is being processed simply replaces the pending one.
func (p *Pipeline) Submit(raw string) {
	if raw == "" {
		return
	}
	p.mailbox.Put(Reading{Raw: raw, CapturedAt: p.now()})
}

// Feedback returns the UI event stream. Events are dropped, not
// blocked on, when the consumer lags.
func (p *Pipeline) Feedback() <-chan Feedback {
	return p.feedback
}

// Run processes readings until the context ends. No reading, outcome
// or downstream failure stops the loop; the pipeline always comes back
// ready for the next presentation.
func (p *Pipeline) Run(ctx context.Context) error {
	p.emit(Feedback{State: StateReady, Message: "Ready to scan", ColorHint: ColorNeutral})

	resultShowing := false
	for {
		var (
			reading Reading
			err     error
		)
		if resultShowing {
			// Give the result ResetDelay on screen, then fall back to
			// ready unless a new reading pre-empts the reset.
			waitCtx, cancel := context.WithTimeout(ctx, p.cfg.ResetDelay)
			reading, err = p.mailbox.Take(waitCtx)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.emit(Feedback{State: StateReady, Message: "Ready to scan", ColorHint: ColorNeutral})
				resultShowing = false
				continue
			}
		} else {
			reading, err = p.mailbox.Take(ctx)
			if err != nil {
				return err
			}
		}

		resultShowing = p.process(ctx, reading)
	}
}

// process runs one reading through dedup, validation and the two
// dependent side effects. It reports whether it produced feedback that
// should later reset to ready.
func (p *Pipeline) process(ctx context.Context, reading Reading) bool {
	now := p.now()
	if p.dedup.Suppressed(reading.Raw, now) {
		// Same presentation re-read within the cooldown: no side
		// effects, no UI change.
		return false
	}

	p.emit(Feedback{State: StateProcessing, Message: "Processing code...", ColorHint: ColorNeutral})

	vctx, cancel := context.WithTimeout(ctx, p.cfg.ValidateTimeout)
	outcome := p.validator.ValidateToken(vctx, reading.Raw, p.cfg.ScannerID, p.cfg.Location)
	cancel()

	switch outcome.Kind {
	case gateapi.OutcomeInvalid:
		// Mark the window so one bad badge held in front of the camera
		// does not hammer the service with re-validations.
		p.dedup.Mark(reading.Raw, now)
		p.emit(Feedback{
			State:     StateRejected,
			Message:   "Invalid code: " + outcome.Reason,
			ColorHint: ColorRed,
		})
		return true

	case gateapi.OutcomeTransportFailure:
		// The token was never judged; leave the dedup window alone so
		// the same code can retry once connectivity returns.
		slog.Warn("validation transport failure", "error", outcome.Err)
		p.emit(Feedback{
			State:     StateTransient,
			Message:   "Connection problem, try again",
			ColorHint: ColorAmber,
		})
		return true
	}

	p.dedup.Mark(reading.Raw, now)
	return p.record(ctx, outcome, now)
}

// record performs the validate → record → notify tail. Recording must
// succeed before a notification is even constructed; a failed write is
// an operator problem, not something to paper over with a retry.
func (p *Pipeline) record(ctx context.Context, outcome gateapi.Outcome, now time.Time) bool {
	timestamp := outcome.Timestamp
	if timestamp.IsZero() {
		timestamp = now
	}

	rctx, cancel := context.WithTimeout(ctx, p.cfg.ValidateTimeout)
	err := p.recorder.RecordAttendance(rctx, gateapi.AttendanceRequest{
		StudentID: outcome.StudentID,
		Intent:    outcome.Intent,
		Timestamp: timestamp,
		Location:  p.cfg.Location,
		ScannerID: p.cfg.ScannerID,
	})
	cancel()
	if err != nil {
		slog.Error("attendance write failed", "student_id", outcome.StudentID, "error", err)
		p.emit(Feedback{
			State:     StateHardError,
			Message:   fmt.Sprintf("ATTENDANCE NOT RECORDED for %s - report to office", outcome.StudentName),
			ColorHint: ColorRed,
		})
		return true
	}

	p.notifier.Dispatch(ctx, NotifyEvent{
		StudentID:   outcome.StudentID,
		StudentName: outcome.StudentName,
		Intent:      outcome.Intent,
		At:          timestamp,
	})

	p.emit(Feedback{
		State:     StateSuccess,
		Message:   fmt.Sprintf("%s (%s) %s recorded", outcome.StudentName, outcome.ClassName, outcome.Intent),
		ColorHint: ColorGreen,
	})
	return true
}

func (p *Pipeline) emit(f Feedback) {
	select {
	case p.feedback <- f:
	default:
		// Observer is lagging; drop rather than stall the pipeline.
	}
}
