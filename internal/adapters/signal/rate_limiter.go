package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Sketch/internal/core"
)

// CursorThrottle is a sliding-window limiter keyed by session. Cursor
// positions past the limit are dropped, not queued; the next one that
// gets through carries the fresh coordinates anyway.
type CursorThrottle struct {
	mu       sync.Mutex
	history  map[core.SessionID][]time.Time
	limit    int
	interval time.Duration
}

func NewCursorThrottle(limit int, interval time.Duration) *CursorThrottle {
	return &CursorThrottle{
		history:  make(map[core.SessionID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (t *CursorThrottle) Allow(sid core.SessionID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-t.interval)

	attempts := t.history[sid]
	fresh := make([]time.Time, 0, len(attempts))
	for _, at := range attempts {
		if at.After(windowStart) {
			fresh = append(fresh, at)
		}
	}

	if len(fresh) >= t.limit {
		t.history[sid] = fresh
		return false
	}

	t.history[sid] = append(fresh, now)
	return true
}

// Forget releases the session's window on disconnect.
func (t *CursorThrottle) Forget(sid core.SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.history, sid)
}
