package paginator

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeTimer lets tests fire the idle timeout by hand.
type fakeTimer struct {
	mu      sync.Mutex
	fn      func()
	resets  int
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return true
}

func (f *fakeTimer) Reset(time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return true
}

func (f *fakeTimer) fire() { f.fn() }

func newTestSession(total int, opts ...Option) (*Session, *fakeTimer) {
	timer := &fakeTimer{}
	s := NewSession("owner", total, opts...)
	s.afterFunc = func(_ time.Duration, fn func()) Timer {
		timer.fn = fn
		return timer
	}
	return s, timer
}

func TestSession_Lifecycle(t *testing.T) {
	var expired []string
	s, timer := newTestSession(3, WithOnExpire(func(s *Session) { expired = append(expired, s.ID) }))

	if s.State() != StateIdle {
		t.Fatalf("new session should be idle, got %v", s.State())
	}
	if _, _, err := s.Next(); !errors.Is(err, ErrSessionNotRendered) {
		t.Fatalf("Next before Render: got %v", err)
	}

	page, err := s.Render(0)
	if err != nil || page != 0 || s.State() != StateRendered {
		t.Fatalf("Render(0) = %d, %v, state %v", page, err, s.State())
	}
	if s.HasPrev() || !s.HasNext() {
		t.Errorf("on first page prev should be disabled and next enabled")
	}

	// Prev at the first page is not a transition.
	if page, moved, err := s.Prev(); err != nil || moved || page != 0 {
		t.Errorf("Prev at 0 = %d, %v, %v", page, moved, err)
	}
	if timer.resets != 0 {
		t.Errorf("rejected transition must not reset the timer")
	}

	if page, moved, _ := s.Next(); !moved || page != 1 {
		t.Errorf("Next = %d, %v", page, moved)
	}
	if page, moved, _ := s.Next(); !moved || page != 2 {
		t.Errorf("Next = %d, %v", page, moved)
	}
	if page, moved, _ := s.Next(); moved || page != 2 {
		t.Errorf("Next at last page = %d, %v", page, moved)
	}
	if !s.HasPrev() || s.HasNext() {
		t.Errorf("on last page prev should be enabled and next disabled")
	}
	if timer.resets != 2 {
		t.Errorf("expected 2 timer resets, got %d", timer.resets)
	}

	timer.fire()
	if s.State() != StateExpired {
		t.Fatalf("timer should expire the session")
	}
	if len(expired) != 1 || expired[0] != s.ID {
		t.Errorf("onExpire not called once: %v", expired)
	}
	if s.HasPrev() || s.HasNext() {
		t.Errorf("expired session must disable both buttons")
	}

	if _, moved, err := s.Prev(); !errors.Is(err, ErrSessionExpired) || moved {
		t.Errorf("Prev after expiry = %v, %v", moved, err)
	}
	if _, err := s.Render(0); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Render after expiry = %v", err)
	}
	if s.Page() != 2 {
		t.Errorf("expired session should keep its page, got %d", s.Page())
	}

	if s.Expire() {
		t.Errorf("second Expire should report no transition")
	}
	if len(expired) != 1 {
		t.Errorf("onExpire ran again")
	}
}

func TestSession_RenderClamps(t *testing.T) {
	s, _ := newTestSession(5)
	if page, _ := s.Render(99); page != 4 {
		t.Errorf("Render(99) = %d, want 4", page)
	}
	if page, _ := s.Render(-1); page != 0 {
		t.Errorf("Render(-1) = %d, want 0", page)
	}
}

func TestSession_SinglePage(t *testing.T) {
	s, _ := newTestSession(0)
	if s.TotalPages() != 1 {
		t.Fatalf("TotalPages = %d", s.TotalPages())
	}
	_, _ = s.Render(0)
	if s.HasPrev() || s.HasNext() {
		t.Errorf("a single page has no navigation")
	}
}

func TestSession_ExpireStopsTimer(t *testing.T) {
	s, timer := newTestSession(2)
	_, _ = s.Render(0)
	s.Expire()
	if !timer.stopped {
		t.Errorf("expiring should stop the timer")
	}
}

func TestSession_RealTimerExpires(t *testing.T) {
	done := make(chan struct{})
	s := NewSession("owner", 2,
		WithIdleTimeout(10*time.Millisecond),
		WithOnExpire(func(*Session) { close(done) }),
	)
	_, _ = s.Render(0)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not expire")
	}
	if s.State() != StateExpired {
		t.Errorf("state = %v", s.State())
	}
}

func TestNewSession_UniqueIDs(t *testing.T) {
	a, b := NewSession("x", 1), NewSession("x", 1)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids should be unique: %q %q", a.ID, b.ID)
	}
}
