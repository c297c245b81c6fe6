// Package session implements the auto-lock state machine layered on
// top of an unlocked [workspace.Session] (§4.9). It does not duplicate
// the workspace's own key-ownership rules; it only decides when to
// call Lock on the workspace's behalf.
package session

import (
	"sync"
	"time"

	"github.com/witflo/fyndo-core/workspace"
)

// AllowedDurations are the only non-zero auto-lock durations the
// configuration surface accepts (§6).
var AllowedDurations = []time.Duration{
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	1 * time.Hour,
}

// pollInterval is the fixed granularity the idle timer is checked at;
// §4.9 requires this be no coarser than 10 seconds.
const pollInterval = 10 * time.Second

// clock is overridden in tests so idle-expiry can be exercised without
// sleeping for real wall-clock minutes.
var clock = time.Now

// State names the auto-lock machine's current phase.
type State int

const (
	Unlocked State = iota
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}

	return "unlocked"
}

// Config configures an [AutoLocker].
type Config struct {
	// Duration is the idle timeout before an automatic lock. Zero
	// disables auto-lock entirely.
	Duration time.Duration

	// LockOnBackground, if true, locks immediately on
	// [AutoLocker.NotifyBackground] instead of waiting for the idle
	// timer.
	LockOnBackground bool
}

// Validate reports whether c.Duration is zero (disabled) or one of
// [AllowedDurations].
func (c Config) Validate() bool {
	if c.Duration == 0 {
		return true
	}

	for _, d := range AllowedDurations {
		if c.Duration == d {
			return true
		}
	}

	return false
}

// AutoLocker wraps a [*workspace.Session] with an idle timer and a
// background-lifecycle hook. It is the in-process analogue of the
// teacher's gRPC session keepalive: a ticker racing a done channel,
// adapted here to poll activity instead of serving a fixed lease.
type AutoLocker struct {
	mu sync.Mutex

	ws           *workspace.Session
	cfg          Config
	lastActivity time.Time
	state        State
	done         chan struct{}
	stopOnce     sync.Once
}

// New wraps ws with the auto-lock behavior described by cfg. cfg must
// satisfy [Config.Validate]; callers are expected to validate
// user-supplied configuration before constructing an AutoLocker.
func New(ws *workspace.Session, cfg Config) *AutoLocker {
	return &AutoLocker{
		ws:           ws,
		cfg:          cfg,
		lastActivity: clock(),
		state:        Unlocked,
		done:         make(chan struct{}),
	}
}

// Touch records observed activity, resetting the idle timer.
func (a *AutoLocker) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Locked {
		return
	}

	a.lastActivity = clock()
}

// State returns the auto-locker's current phase.
func (a *AutoLocker) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// Lock locks the underlying workspace session explicitly (the
// `Explicit` edge of §4.9's state machine) and stops the idle timer.
func (a *AutoLocker) Lock() {
	a.mu.Lock()

	if a.state == Locked {
		a.mu.Unlock()
		return
	}

	a.state = Locked
	a.mu.Unlock()

	a.ws.Lock()
	a.stop()
}

func (a *AutoLocker) stop() {
	a.stopOnce.Do(func() {
		close(a.done)
	})
}
