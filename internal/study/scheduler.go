package study

import (
	"sync"
	"time"
)

// DefaultAutoAdvanceDelay is how long a correct answer stays on screen
const DefaultAutoAdvanceDelay = 3000 * time.Millisecond

// Timer is a pending scheduled call
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler holds scheduled calls until Fire is called.
// Used by tests and by the terminal drill.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{f: f}
	m.pending = append(m.pending, t)
	return t
}

// Pending reports how many scheduled calls are still live
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Fire runs every live scheduled call and returns how many ran
func (m *ManualScheduler) Fire() int {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	n := 0
	for _, t := range pending {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.f()
		n++
	}
	return n
}

// FireStale runs every scheduled call, including stopped ones. It mimics a
// runtime timer that fired just before Stop was called.
func (m *ManualScheduler) FireStale() int {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, t := range pending {
		t.fired = true
		t.f()
	}
	return len(pending)
}

// Speaker plays text in a language. Speak must not block; a new call
// replaces whatever is playing.
type Speaker interface {
	Speak(text, lang string) error
	Cancel()
}

// Silent is a Speaker that never speaks
type Silent struct{}

func (Silent) Speak(string, string) error { return ErrSpeechUnavailable }
func (Silent) Cancel()                    {}
