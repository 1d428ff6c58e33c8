// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package scanner

import (
	"context"
	"sync"
	"time"
)

// Reading is one decoded string from the capture feed.
type Reading struct {
	Raw        string
	CapturedAt time.Time
}

// Mailbox is a single-slot, latest-value-wins handoff between the
// capture feed and the pipeline. The producer overwrites, the consumer
// drains and clears. Readings that arrive while one is still pending
// replace it; nothing is ever queued. This shedding bounds memory and
// keeps the pipeline off stale frames.
type Mailbox struct {
	mu      sync.Mutex
	reading Reading
	full    bool
	ready   chan struct{}
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{ready: make(chan struct{}, 1)}
}

// Put stores a reading, replacing any unconsumed one.
func (m *Mailbox) Put(r Reading) {
	m.mu.Lock()
	m.reading = r
	m.full = true
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Take blocks until a reading is available or the context ends. Taking
// clears the slot.
func (m *Mailbox) Take(ctx context.Context) (Reading, error) {
	for {
		m.mu.Lock()
		if m.full {
			r := m.reading
			m.full = false
			m.mu.Unlock()
			return r, nil
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return Reading{}, ctx.Err()
		case <-m.ready:
		}
	}
}
