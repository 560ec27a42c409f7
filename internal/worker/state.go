package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"bankassist/internal/models"
	"bankassist/internal/service/assistant"
)

type sessionState struct {
	mu        sync.RWMutex
	session   models.Session
	assistant *assistant.Service

	taskCh   chan task
	stopCh   chan struct{}
	stopOnce sync.Once
	pending  atomic.Int32 // queued or running tasks
}

func newSessionState(se models.Session, asst *assistant.Service, queueLen int) *sessionState {
	return &sessionState{
		session:   se,
		assistant: asst,
		taskCh:    make(chan task, queueLen),
		stopCh:    make(chan struct{}),
	}
}

func (s *sessionState) getSession() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	se := s.session
	return &se
}

func (s *sessionState) touch(at time.Time) {
	s.mu.Lock()
	if at.After(s.session.UpdatedAt) {
		s.session.UpdatedAt = at
	}
	s.mu.Unlock()
}

func (s *sessionState) stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// idleSince reports whether the session has no pending work and was last
// touched before cutoff.
func (s *sessionState) idleSince(cutoff time.Time) bool {
	if s.pending.Load() > 0 {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.UpdatedAt.Before(cutoff)
}
