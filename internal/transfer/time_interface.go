package transfer

import (
	"sync"
	"time"
)

// MockTicker is a mock implementation of Ticker for testing.
type MockTicker struct {
	TickChan chan time.Time
}

// C returns the ticker's channel.
func (m *MockTicker) C() <-chan time.Time {
	return m.TickChan
}

// Stop stops the ticker.
func (m *MockTicker) Stop() {
	if m.TickChan != nil {
		close(m.TickChan)
	}
}

// RealTicker wraps time.Ticker to implement the Ticker interface.
type RealTicker struct {
	ticker *time.Ticker
}

// C returns the ticker's channel.
func (r *RealTicker) C() <-chan time.Time {
	return r.ticker.C
}

// Stop stops the ticker.
func (r *RealTicker) Stop() {
	r.ticker.Stop()
}

// RealTimeProvider implements TimeProvider using real time functions.
type RealTimeProvider struct{}

// NewTicker creates a new ticker.
func (r *RealTimeProvider) NewTicker(d time.Duration) Ticker {
	return &RealTicker{ticker: time.NewTicker(d)}
}

// Now returns the current time.
func (r *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Ticker is an interface for time.Ticker to allow mocking.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TimeProvider provides time-related functionality for dependency injection.
type TimeProvider interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// StepTimeProvider is a TimeProvider for tests that advances a fixed step on
// every Now call, so elapsed time and rate math are deterministic.
type StepTimeProvider struct {
	Current time.Time
	Step    time.Duration

	mu sync.Mutex
}

// NewTicker returns a mock ticker; tests drive it manually.
func (s *StepTimeProvider) NewTicker(_ time.Duration) Ticker {
	return &MockTicker{TickChan: make(chan time.Time, 1)}
}

// Now returns the current mock time, then advances it by Step.
func (s *StepTimeProvider) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Current
	s.Current = s.Current.Add(s.Step)

	return now
}
