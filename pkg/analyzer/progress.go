package analyzer

import (
	"context"
	"sync"
)

// ProgressFunc receives the number of files processed so far, the number
// expected and the file just finished.
type ProgressFunc func(current, total int, path string)

// Tracker counts processed files for a progress display. Callbacks are
// serialized, so current never decreases between two calls.
type Tracker struct {
	mu       sync.Mutex
	total    int
	current  int
	callback ProgressFunc
}

// NewTracker creates a tracker reporting to callback, which may be nil.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Add raises the expected total by n.
func (t *Tracker) Add(n int) {
	t.mu.Lock()
	t.total += n
	t.mu.Unlock()
}

// SetTotal replaces the expected total.
func (t *Tracker) SetTotal(n int) {
	t.mu.Lock()
	t.total = n
	t.mu.Unlock()
}

// Tick records path as processed.
func (t *Tracker) Tick(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	if t.callback != nil {
		t.callback(t.current, t.total, path)
	}
}

// Current returns the number of processed files.
func (t *Tracker) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Total returns the expected total.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

type trackerKey struct{}

// WithTracker attaches t to ctx for the file pipeline to pick up.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the tracker attached by WithTracker, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}
