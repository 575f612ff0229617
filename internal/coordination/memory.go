package coordination

import (
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"scroll-orchestrator/internal/domain"
)

// maxTrackedScrollers bounds memory when many scrollers exist. Evicting a
// cold entry only forgets its spent budget, which is acceptable for a
// best-effort process-local guard.
const maxTrackedScrollers = 4096

type guardState struct {
	callCount   int
	windowStart time.Time

	lockHeld  bool
	lockStart time.Time
	// lockGen distinguishes acquisitions so a release from a stolen lock
	// cannot clear the current holder.
	lockGen uint64
}

// Memory is the in-process Coordinator. Not safe across multiple server
// instances.
type Memory struct {
	mu     sync.Mutex
	states *lru.Cache[uuid.UUID, *guardState]

	rateLimit   int
	rateWindow  time.Duration
	lockTimeout time.Duration

	now func() time.Time
}

// NewMemory creates a process-local Coordinator allowing rateLimit calls per
// rateWindow per scroller, with generation locks expiring after lockTimeout.
func NewMemory(rateLimit int, rateWindow, lockTimeout time.Duration) (*Memory, error) {
	states, err := lru.New[uuid.UUID, *guardState](maxTrackedScrollers)
	if err != nil {
		return nil, err
	}
	return &Memory{
		states:      states,
		rateLimit:   rateLimit,
		rateWindow:  rateWindow,
		lockTimeout: lockTimeout,
		now:         time.Now,
	}, nil
}

func (m *Memory) state(scrollerID uuid.UUID) *guardState {
	if s, ok := m.states.Get(scrollerID); ok {
		return s
	}
	s := &guardState{windowStart: m.now()}
	m.states.Add(scrollerID, s)
	return s
}

func (m *Memory) Allow(scrollerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(scrollerID)
	now := m.now()
	if now.Sub(s.windowStart) >= m.rateWindow {
		s.windowStart = now
		s.callCount = 0
	}
	if s.callCount >= m.rateLimit {
		return domain.ErrRateLimited
	}
	s.callCount++
	return nil
}

func (m *Memory) AcquireGeneration(scrollerID uuid.UUID) (func(), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state(scrollerID)
	if s.lockHeld && m.now().Sub(s.lockStart) < m.lockTimeout {
		return nil, false
	}

	// Free, or abandoned by a holder that outlived the timeout.
	s.lockHeld = true
	s.lockStart = m.now()
	s.lockGen++
	gen := s.lockGen

	release := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if s.lockGen == gen {
			s.lockHeld = false
		}
	}
	return release, true
}

var _ Coordinator = (*Memory)(nil)
