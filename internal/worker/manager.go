package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bankassist/internal/models"
	"bankassist/internal/service/assistant"
	"bankassist/internal/storage"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrQueueFull       = errors.New("task queue full")
)

const defaultQueueLen = 4

// Config tunes every session the manager opens.
type Config struct {
	QueueSize     int
	HistoryWindow int
	Temperature   float32
	// IdleTimeout closes sessions nobody used for this long. Zero disables it.
	IdleTimeout time.Duration
}

// Request is one input for a session: free text or a quick action label.
type Request struct {
	Context     context.Context
	SessionID   string
	Content     string
	QuickAction string
}

type workerReturn struct {
	reply assistant.Reply
	err   error
}

type task struct {
	req      Request
	resultCh chan workerReturn
}

// Manager keeps one controller and one goroutine per session. Inputs of the
// same session run strictly one after another; sessions never share state.
type Manager struct {
	generator assistant.Generator
	cfg       Config
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewManager(gen assistant.Generator, cfg Config, logger *zap.Logger) *Manager {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueLen
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		generator: gen,
		cfg:       cfg,
		logger:    logger,
		sessions:  make(map[string]*sessionState),
	}
}

// Open starts a new session with an empty conversation.
func (m *Manager) Open() *models.Session {
	now := time.Now().UTC()
	se := models.Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}

	opts := []assistant.Option{
		assistant.WithLogger(m.logger.With(zap.String("session_id", se.ID))),
		assistant.WithHistoryWindow(m.cfg.HistoryWindow),
		assistant.WithTemperature(m.cfg.Temperature),
	}
	state := newSessionState(se, assistant.NewService(m.generator, storage.NewConversation(), opts...), m.cfg.QueueSize)

	m.mu.Lock()
	m.sessions[se.ID] = state
	m.mu.Unlock()

	go m.runWorker(state)
	m.logger.Debug("session opened", zap.String("session_id", se.ID))
	return state.getSession()
}

// Submit queues req on its session and waits for the reply.
func (m *Manager) Submit(req Request) (assistant.Reply, error) {
	state := m.getState(req.SessionID)
	if state == nil {
		return assistant.Reply{}, ErrSessionNotFound
	}
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	resultCh := make(chan workerReturn, 1)
	state.pending.Add(1)
	select {
	case state.taskCh <- task{req: req, resultCh: resultCh}:
	case <-state.stopCh:
		state.pending.Add(-1)
		return assistant.Reply{}, ErrSessionNotFound
	default:
		state.pending.Add(-1)
		return assistant.Reply{}, ErrQueueFull
	}

	select {
	case ret := <-resultCh:
		return ret.reply, ret.err
	case <-state.stopCh:
		return assistant.Reply{}, ErrSessionNotFound
	case <-ctx.Done():
		return assistant.Reply{}, ctx.Err()
	}
}

// History returns the session metadata and its full transcript.
func (m *Manager) History(sessionID string) (*models.Session, []models.Turn, error) {
	state := m.getState(sessionID)
	if state == nil {
		return nil, nil, ErrSessionNotFound
	}
	return state.getSession(), state.assistant.History(), nil
}

// Close stops the session's worker and drops its conversation.
func (m *Manager) Close(sessionID string) error {
	m.mu.Lock()
	state, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	state.stop()
	m.logger.Debug("session closed", zap.String("session_id", sessionID))
	return nil
}

// Shutdown closes every open session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	states := m.sessions
	m.sessions = make(map[string]*sessionState)
	m.mu.Unlock()
	for _, state := range states {
		state.stop()
	}
}

// Len reports the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) getState(sessionID string) *sessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID]
}

func (m *Manager) runWorker(state *sessionState) {
	for {
		select {
		case <-state.stopCh:
			return
		case t := <-state.taskCh:
			m.handleTask(state, t)
		}
	}
}

func (m *Manager) handleTask(state *sessionState, t task) {
	ctx := t.req.Context
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		reply assistant.Reply
		err   error
	)
	if t.req.QuickAction != "" {
		reply, err = state.assistant.HandleQuickAction(ctx, t.req.QuickAction)
	} else {
		reply, err = state.assistant.Handle(ctx, t.req.Content)
	}
	if err == nil {
		state.touch(reply.Turn.CreatedAt)
	}
	state.pending.Add(-1)
	t.resultCh <- workerReturn{reply: reply, err: err}
}
