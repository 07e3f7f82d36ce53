package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow sums values added over a rolling window. The window is split
// into fixed-size slots held in a ring; a slot is cleared when its time comes
// round again.
type SlidingWindow struct {
	mu       sync.Mutex
	slotSize time.Duration
	slots    []slot
	now      func() time.Time
}

type slot struct {
	start time.Time
	value int64
}

// NewSlidingWindow creates a window of the given length and granularity.
//
//	// one minute in one-second slots
//	sw := NewSlidingWindow(time.Minute, time.Second)
func NewSlidingWindow(window, slotSize time.Duration) *SlidingWindow {
	return newSlidingWindow(window, slotSize, time.Now)
}

func newSlidingWindow(window, slotSize time.Duration, now func() time.Time) *SlidingWindow {
	if slotSize <= 0 {
		slotSize = window
	}
	n := int(window / slotSize)
	if n < 1 {
		n = 1
	}
	return &SlidingWindow{
		slotSize: slotSize,
		slots:    make([]slot, n),
		now:      now,
	}
}

// Add adds value to the current slot.
func (sw *SlidingWindow) Add(value int64) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.currentLocked().value += value
}

// Sum returns the total over the window.
func (sw *SlidingWindow) Sum() int64 {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	cutoff := sw.now().Truncate(sw.slotSize).Add(-time.Duration(len(sw.slots)-1) * sw.slotSize)
	var sum int64
	for _, s := range sw.slots {
		if !s.start.IsZero() && !s.start.Before(cutoff) {
			sum += s.value
		}
	}
	return sum
}

// Reset clears the window.
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	clear(sw.slots)
}

// currentLocked returns the slot for now, clearing it if it holds an older
// period. Caller must hold lock.
func (sw *SlidingWindow) currentLocked() *slot {
	start := sw.now().Truncate(sw.slotSize)
	idx := int((start.UnixNano() / int64(sw.slotSize)) % int64(len(sw.slots)))
	if idx < 0 {
		idx += len(sw.slots)
	}
	s := &sw.slots[idx]
	if !s.start.Equal(start) {
		*s = slot{start: start}
	}
	return s
}
