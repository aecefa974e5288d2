package rate

import (
	"sync"
	"time"
)

// WindowLimiter allows at most limit events per key within a fixed window.
type WindowLimiter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	items       map[string]*windowEntry
	lastCleanup time.Time
	now         func() time.Time
}

type windowEntry struct {
	start time.Time
	count int
}

func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		limit:  limit,
		window: window,
		items:  make(map[string]*windowEntry),
		now:    time.Now,
	}
}

// Allow records one event for key and reports whether it fits the window.
func (l *WindowLimiter) Allow(key string) bool {
	ok, _ := l.Reserve(key)
	return ok
}

// Reserve is Allow that also returns how long until the key's window resets
// when the event is refused.
func (l *WindowLimiter) Reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()

	l.maybeCleanup(now)

	entry, ok := l.items[key]
	if !ok || now.Sub(entry.start) >= l.window {
		l.items[key] = &windowEntry{start: now, count: 1}
		return true, 0
	}
	if entry.count >= l.limit {
		return false, l.window - now.Sub(entry.start)
	}
	entry.count++
	return true, 0
}

func (l *WindowLimiter) maybeCleanup(now time.Time) {
	if l.window <= 0 {
		return
	}
	if !l.lastCleanup.IsZero() && now.Sub(l.lastCleanup) < l.window {
		return
	}
	for key, entry := range l.items {
		if now.Sub(entry.start) >= l.window {
			delete(l.items, key)
		}
	}
	l.lastCleanup = now
}
