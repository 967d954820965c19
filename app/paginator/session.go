package paginator

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long a session waits for a button press.
const DefaultIdleTimeout = 120 * time.Second

var (
	ErrSessionExpired     = errors.New("pagination session expired")
	ErrSessionNotRendered = errors.New("pagination session has not been rendered")
)

type State int

const (
	StateIdle State = iota
	StateRendered
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendered:
		return "rendered"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Timer is the part of *time.Timer a session uses.
type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

// Session moves idle → rendered(page) → expired. Once expired it accepts no
// further transitions. Each accepted transition restarts the idle timer.
type Session struct {
	ID      string
	OwnerID string

	mu       sync.Mutex
	state    State
	page     int
	total    int
	idle     time.Duration
	timer    Timer
	onExpire func(*Session)

	afterFunc func(d time.Duration, f func()) Timer
}

type Option func(*Session)

// WithIdleTimeout overrides DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.idle = d
		}
	}
}

// WithOnExpire registers fn to run once when the session expires, outside the session lock.
func WithOnExpire(fn func(*Session)) Option {
	return func(s *Session) { s.onExpire = fn }
}

func NewSession(ownerID string, totalPages int, opts ...Option) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		total:   max(totalPages, 1),
		idle:    DefaultIdleTimeout,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render shows page (clamped) and arms the idle timer. It may be called
// again while rendered to jump to another page.
func (s *Session) Render(page int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateExpired {
		return s.page, ErrSessionExpired
	}
	s.page = min(max(page, 0), s.total-1)
	s.state = StateRendered
	s.touch()
	return s.page, nil
}

// Next advances one page. At the last page nothing changes and moved is false.
func (s *Session) Next() (page int, moved bool, err error) {
	return s.step(1)
}

// Prev goes back one page. At the first page nothing changes and moved is false.
func (s *Session) Prev() (page int, moved bool, err error) {
	return s.step(-1)
}

func (s *Session) step(delta int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateExpired:
		return s.page, false, ErrSessionExpired
	case StateIdle:
		return s.page, false, ErrSessionNotRendered
	}

	target := s.page + delta
	if target < 0 || target >= s.total {
		return s.page, false, nil
	}
	s.page = target
	s.touch()
	return s.page, true, nil
}

// Expire ends the session. It reports whether this call did the transition.
func (s *Session) Expire() bool {
	s.mu.Lock()
	if s.state == StateExpired {
		s.mu.Unlock()
		return false
	}
	s.state = StateExpired
	if s.timer != nil {
		s.timer.Stop()
	}
	onExpire := s.onExpire
	s.mu.Unlock()

	if onExpire != nil {
		onExpire(s)
	}
	return true
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Page is the current 0-based page.
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Session) TotalPages() int {
	return s.total
}

// HasPrev and HasNext drive the enabled state of the navigation buttons.
func (s *Session) HasPrev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRendered && s.page > 0
}

func (s *Session) HasNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRendered && s.page < s.total-1
}

// touch must be called with mu held.
func (s *Session) touch() {
	if s.timer == nil {
		s.timer = s.afterFunc(s.idle, func() { s.Expire() })
		return
	}
	s.timer.Reset(s.idle)
}
