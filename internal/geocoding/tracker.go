package geocoding

import (
	"context"
	"sync"
	"time"
)

// HistoryEntry is an address recorded by a Tracker.
type HistoryEntry struct {
	Address
	Timestamp time.Time `json:"timestamp"`
}

// LookupOptions mirror the switches of a lookup. The zero value uses the
// cache, updates the current address and records history.
type LookupOptions struct {
	SkipCache   bool `form:"skipCache"`
	KeepCurrent bool `form:"keepCurrent"`
	NoHistory   bool `form:"noHistory"`
}

// Tracker keeps one session's current address and its history.
type Tracker struct {
	mu          sync.Mutex
	historySize int
	current     *Address
	updatedAt   time.Time
	history     []HistoryEntry
	lastErr     string
	now         func() time.Time
}

func NewTracker(historySize int) *Tracker {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Tracker{historySize: historySize, now: time.Now}
}

// Resolve looks lat/lng up through svc and records the outcome.
func (t *Tracker) Resolve(ctx context.Context, svc *Service, lat, lng float64, opts LookupOptions) (Address, bool, error) {
	addr, cached, err := svc.Reverse(ctx, lat, lng, !opts.SkipCache)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.lastErr = err.Error()
		return Address{}, false, err
	}
	t.lastErr = ""
	if !opts.KeepCurrent {
		t.update(addr, !opts.NoHistory)
	}
	return addr, cached, nil
}

// Update sets the current address and optionally records it.
func (t *Tracker) Update(addr Address, addToHistory bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.update(addr, addToHistory)
}

func (t *Tracker) update(addr Address, addToHistory bool) {
	now := t.now()
	t.current = &addr
	t.updatedAt = now
	if !addToHistory {
		return
	}
	t.history = append([]HistoryEntry{{Address: addr, Timestamp: now}}, t.history...)
	if len(t.history) > t.historySize {
		t.history = t.history[:t.historySize]
	}
}

// Current returns a copy of the current address, or nil.
func (t *Tracker) Current() *Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	a := *t.current
	return &a
}

func (t *Tracker) UpdatedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updatedAt
}

// History is most recent first.
func (t *Tracker) History() []HistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]HistoryEntry(nil), t.history...)
}

func (t *Tracker) LastError() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

func (t *Tracker) ClearCurrent() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = nil
	t.updatedAt = time.Time{}
	t.lastErr = ""
}

func (t *Tracker) ClearHistory() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = nil
}

func (t *Tracker) ClearError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastErr = ""
}
