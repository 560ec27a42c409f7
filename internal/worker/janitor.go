package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const minJanitorInterval = time.Second

// StartJanitor closes idle sessions until ctx is cancelled. It does nothing
// when IdleTimeout is zero.
func (m *Manager) StartJanitor(ctx context.Context) {
	if m.cfg.IdleTimeout <= 0 {
		return
	}
	interval := m.cfg.IdleTimeout / 2
	if interval < minJanitorInterval {
		interval = minJanitorInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.closeIdle(now)
			}
		}
	}()
}

// closeIdle retires every session idle since before now-IdleTimeout and
// returns how many were closed.
func (m *Manager) closeIdle(now time.Time) int {
	cutoff := now.Add(-m.cfg.IdleTimeout)

	var stale []*sessionState
	m.mu.Lock()
	for id, state := range m.sessions {
		if state.idleSince(cutoff) {
			stale = append(stale, state)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, state := range stale {
		state.stop()
		m.logger.Debug("idle session closed", zap.String("session_id", state.getSession().ID))
	}
	return len(stale)
}
