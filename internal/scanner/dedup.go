// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package scanner

import "time"

// DefaultCooldown is how long an identical reading is suppressed after
// being accepted. Successive camera frames of one physical presentation
// decode the same string several times a second; the window is the only
// defense against that turning into repeated validations.
const DefaultCooldown = 3 * time.Second

// DedupWindow tracks the last accepted reading. It is single-writer:
// only the pipeline goroutine touches it, which is what the strict
// serialization of validation attempts guarantees.
type DedupWindow struct {
	cooldown time.Duration
	last     string
	lastAt   time.Time
}

// NewDedupWindow creates a window with the given cooldown. A
// non-positive cooldown falls back to DefaultCooldown.
func NewDedupWindow(cooldown time.Duration) *DedupWindow {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &DedupWindow{cooldown: cooldown}
}

// Suppressed reports whether a reading equals the last accepted one and
// is still inside the cooldown.
func (d *DedupWindow) Suppressed(raw string, now time.Time) bool {
	return raw == d.last && now.Sub(d.lastAt) < d.cooldown
}

// Mark records an accepted reading. Called for valid and for rejected
// tokens alike, but never for transport failures, so a code that merely
// failed to reach the service can be retried immediately.
func (d *DedupWindow) Mark(raw string, now time.Time) {
	d.last = raw
	d.lastAt = now
}
