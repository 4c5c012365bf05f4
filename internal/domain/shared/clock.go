package shared

import "time"

// Clock abstracts time so scoring decay and cache expiry can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock, always in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock creates a RealClock instance.
func NewRealClock() Clock {
	return RealClock{}
}

// MockClock is a controllable clock for tests.
type MockClock struct {
	CurrentTime time.Time
}

// NewMockClock creates a MockClock starting at the given time, or at the
// current time when a zero value is provided.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &MockClock{CurrentTime: start}
}

func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// Advance moves the mock clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// SetTime pins the mock clock to a specific instant.
func (m *MockClock) SetTime(t time.Time) {
	m.CurrentTime = t
}
