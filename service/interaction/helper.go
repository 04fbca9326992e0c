package interaction

import (
	"context"
	"time"
)

// DeciderFunc answers a pending prompt.
// Return (true, "") to approve, (false, "…") to decline with a reason.
type DeciderFunc func(p *Prompt) (approved bool, reason string)

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every pending prompt. It returns stop() – call it (or cancel ctx) to exit.
// Intended for headless runs and tests.
func AutoDecider(ctx context.Context, svc Service, fn DeciderFunc, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				prompts, _ := svc.ListPending(ctx)
				for _, p := range prompts {
					ok, reason := fn(p)
					_, _ = svc.Decide(ctx, p.ID, ok, reason)
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove approves every pending prompt.
func AutoApprove(ctx context.Context, svc Service, interval time.Duration) func() {
	return AutoDecider(ctx, svc, func(*Prompt) (bool, string) { return true, "" }, interval)
}

// AutoDecline declines every pending prompt with the given reason.
func AutoDecline(ctx context.Context, svc Service, reason string, interval time.Duration) func() {
	return AutoDecider(ctx, svc, func(*Prompt) (bool, string) { return false, reason }, interval)
}
