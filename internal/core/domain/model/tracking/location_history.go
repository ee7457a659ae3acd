package tracking

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
)

// LocationHistoryCapacity bounds the session's location trail. Once full,
// the oldest fix is evicted first (FIFO) to cap memory and storage growth.
const LocationHistoryCapacity = 1000

// LocationPoint is one GPS fix in the session's location trail.
type LocationPoint struct {
	Point          kernel.GeoPoint
	AccuracyMeters float64
	SpeedKmh       float64
	BearingDegrees float64
	Timestamp      time.Time
}

// LocationHistory is a fixed-capacity FIFO ring buffer of GPS fixes.
// Appends are O(1); once the buffer is full each append overwrites the
// oldest entry. The zero value is unusable, use NewLocationHistory.
type LocationHistory struct {
	buf      []LocationPoint
	head     int // index of the oldest entry
	size     int
	capacity int
}

// NewLocationHistory creates an empty ring buffer with the given capacity.
// Capacities below 1 fall back to LocationHistoryCapacity.
func NewLocationHistory(capacity int) *LocationHistory {
	if capacity < 1 {
		capacity = LocationHistoryCapacity
	}
	return &LocationHistory{
		buf:      make([]LocationPoint, capacity),
		capacity: capacity,
	}
}

// RestoreLocationHistory rebuilds a ring buffer from a persisted snapshot,
// oldest-first. Entries beyond the capacity are dropped from the front,
// matching FIFO eviction.
func RestoreLocationHistory(capacity int, points []LocationPoint) *LocationHistory {
	h := NewLocationHistory(capacity)
	for _, p := range points {
		h.Append(p)
	}
	return h
}

// Append adds a fix, evicting the oldest one when the buffer is full.
func (h *LocationHistory) Append(p LocationPoint) {
	if h.size < h.capacity {
		h.buf[(h.head+h.size)%h.capacity] = p
		h.size++
		return
	}
	h.buf[h.head] = p
	h.head = (h.head + 1) % h.capacity
}

// Len returns the number of stored fixes.
func (h *LocationHistory) Len() int {
	return h.size
}

// Capacity returns the fixed capacity of the buffer.
func (h *LocationHistory) Capacity() int {
	return h.capacity
}

// Latest returns the most recent fix, or nil when empty.
func (h *LocationHistory) Latest() *LocationPoint {
	if h.size == 0 {
		return nil
	}
	p := h.buf[(h.head+h.size-1)%h.capacity]
	return &p
}

// Snapshot returns all stored fixes oldest-first.
func (h *LocationHistory) Snapshot() []LocationPoint {
	out := make([]LocationPoint, 0, h.size)
	for i := 0; i < h.size; i++ {
		out = append(out, h.buf[(h.head+i)%h.capacity])
	}
	return out
}

// Tail returns at most n of the newest fixes, oldest-first.
func (h *LocationHistory) Tail(n int) []LocationPoint {
	if n <= 0 {
		return []LocationPoint{}
	}
	if n > h.size {
		n = h.size
	}
	out := make([]LocationPoint, 0, n)
	start := h.size - n
	for i := start; i < h.size; i++ {
		out = append(out, h.buf[(h.head+i)%h.capacity])
	}
	return out
}
