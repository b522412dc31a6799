package clock

import "time"

// FakeClock pins Now to a fixed instant so reading seeds and billing-run
// periods are deterministic in tests.
type FakeClock struct {
	current time.Time
}

func NewFakeClock(at time.Time) *FakeClock {
	return &FakeClock{current: at.UTC()}
}

func (f *FakeClock) Now() time.Time {
	return f.current
}

// Advance moves the clock forward by d.
func (f *FakeClock) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

// SetNow repins the clock to a specific instant.
func (f *FakeClock) SetNow(at time.Time) {
	f.current = at.UTC()
}
