package clock

import "time"

// Clock supplies the current time. The subscription lifecycle does all of
// its date math through an injected Clock so tests can pin "today".
type Clock interface {
	Now() time.Time
	// Today returns the current date truncated to midnight UTC.
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func (systemClock) Today() time.Time {
	return Midnight(time.Now().UTC())
}

// System returns the wall clock.
func System() Clock { return systemClock{} }

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time   { return f.T }
func (f Fixed) Today() time.Time { return Midnight(f.T) }

// Midnight truncates t to the start of its day in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
