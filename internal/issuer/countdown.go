// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package issuer

import (
	"context"
	"time"
)

// Tick is one countdown update for the holder UI. Pure observer: the
// issuer never acts on it.
type Tick struct {
	RemainingSeconds int
}

// Countdown emits one Tick per second with the current token's
// remaining validity until the context is cancelled. The channel is
// closed on teardown.
func (i *Issuer) Countdown(ctx context.Context) <-chan Tick {
	ticks := make(chan Tick, 1)

	go func() {
		defer close(ticks)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick := Tick{RemainingSeconds: int(i.Remaining(i.now()) / time.Second)}
				select {
				case ticks <- tick:
				default:
					// Slow consumer, drop the tick.
				}
			}
		}
	}()

	return ticks
}
