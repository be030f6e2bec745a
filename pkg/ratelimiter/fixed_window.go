package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindow admits at most limit requests per window and resets the
// count when a new window starts.
type FixedWindow struct {
	limit  int
	window time.Duration
	count  int
	start  time.Time
	mu     sync.Mutex
}

// NewFixedWindow creates a fixed-window counter.
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:  limit,
		window: window,
		start:  time.Now(),
	}
}

// Allow increments the window counter when under the limit.
func (fw *FixedWindow) Allow() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := time.Now()
	if now.After(fw.start.Add(fw.window)) {
		fw.start = now
		fw.count = 0
	}

	if fw.count < fw.limit {
		fw.count++
		return true
	}
	return false
}
