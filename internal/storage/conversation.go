package storage

import (
	"sync"

	"bankassist/internal/models"
)

// Conversation is the append-only, in-memory transcript of one session. It is
// owned by that session and dropped with it; nothing is written to disk.
type Conversation struct {
	mu    sync.RWMutex
	turns []models.Turn
}

// NewConversation returns an empty transcript.
func NewConversation() *Conversation {
	return &Conversation{turns: make([]models.Turn, 0, 16)}
}

// Append adds a turn to the end of the transcript.
func (c *Conversation) Append(turn models.Turn) {
	c.mu.Lock()
	c.turns = append(c.turns, turn)
	c.mu.Unlock()
}

// Recent returns a copy of the last k turns in chronological order. It
// returns fewer turns when the transcript is shorter and none when k <= 0.
func (c *Conversation) Recent(k int) []models.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if k <= 0 {
		return []models.Turn{}
	}
	start := len(c.turns) - k
	if start < 0 {
		start = 0
	}
	out := make([]models.Turn, len(c.turns)-start)
	copy(out, c.turns[start:])
	return out
}

// All returns a copy of the whole transcript.
func (c *Conversation) All() []models.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len reports the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}
