package gate

import (
	"context"
	"time"
)

// Monitor re-evaluates a (path, token) pair whenever the caller's
// authorization state changes, and emits only decisions that differ from
// the previous one. It backs the UI's live session stream.
type Monitor struct {
	gate     *Gate
	broker   *Broker
	interval time.Duration
}

// NewMonitor creates a monitor. interval bounds how stale a decision can get
// without an event (session expiry publishes nothing); zero disables polling.
func NewMonitor(g *Gate, b *Broker, interval time.Duration) *Monitor {
	return &Monitor{gate: g, broker: b, interval: interval}
}

// Watch emits the current decision immediately, then each changed decision.
// For a caller without a resolvable session only the initial decision is
// sent. The channel is closed when ctx is done or the session ends.
func (m *Monitor) Watch(ctx context.Context, path, token string) <-chan Decision {
	out := make(chan Decision, 1)

	principal, err := m.gate.Identify(ctx, token)
	if err != nil {
		out <- m.gate.Evaluate(ctx, path, token)
		close(out)
		return out
	}

	// subscribe before the first evaluation so no change slips between them
	ctx, cancel := context.WithCancel(ctx)
	events := m.broker.Subscribe(ctx, principal.UserID)

	current := m.gate.Evaluate(ctx, path, token)
	out <- current

	go func() {
		defer close(out)
		defer cancel()

		var tick <-chan time.Time
		if m.interval > 0 {
			t := time.NewTicker(m.interval)
			defer t.Stop()
			tick = t.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
			case <-tick:
			}

			next := m.gate.Evaluate(ctx, path, token)
			if ctx.Err() != nil {
				return
			}
			if next.Same(current) {
				continue
			}
			current = next
			select {
			case out <- next:
			case <-ctx.Done():
				return
			}
			if next.Kind == KindRedirectLogin {
				// session is gone; nothing left to watch
				return
			}
		}
	}()
	return out
}
