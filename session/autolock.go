package session

import "time"

// Run starts the idle-expiry ticker. It blocks until the auto-locker
// is locked (by idle expiry, an explicit [AutoLocker.Lock] call, or
// [AutoLocker.NotifyBackground] with LockOnBackground set), so callers
// should invoke it in its own goroutine, mirroring the teacher's
// session.start(cleanup) pattern.
func (a *AutoLocker) Run() {
	if a.cfg.Duration == 0 {
		<-a.done
		return
	}

	ticker := newTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			a.mu.Lock()
			idleFor := clock().Sub(a.lastActivity)
			expired := idleFor >= a.cfg.Duration
			a.mu.Unlock()

			if expired {
				a.Lock()
				return
			}
		case <-a.done:
			return
		}
	}
}

// NotifyBackground signals a foreground-to-background app lifecycle
// transition. If the auto-locker was configured with LockOnBackground,
// this locks immediately; otherwise the idle timer keeps running
// unaffected.
func (a *AutoLocker) NotifyBackground() {
	a.mu.Lock()
	lockOnBackground := a.cfg.LockOnBackground
	a.mu.Unlock()

	if lockOnBackground {
		a.Lock()
	}
}

// NotifyForeground signals a background-to-foreground transition. Per
// §4.9, resuming resets lastActivity so the session is not locked
// immediately by time that elapsed while backgrounded.
func (a *AutoLocker) NotifyForeground() {
	a.Touch()
}

// ticker is the subset of *time.Ticker this package depends on, so
// tests can substitute a manually driven fake instead of waiting on
// real wall-clock ticks.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

var newTicker = func(d time.Duration) ticker {
	return realTicker{t: time.NewTicker(d)}
}
