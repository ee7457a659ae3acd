package kernel

import "time"

// Clock abstracts the time source so that timestamp-dependent domain logic
// (status stamping, ETA, metrics) stays deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock returns a Clock that always reports the given instant.
// Intended for tests.
func FixedClock(at time.Time) Clock {
	return fixedClock{at: at}
}

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time {
	return c.at
}
