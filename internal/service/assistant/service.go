package assistant

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"bankassist/internal/config"
	"bankassist/internal/models"
	"bankassist/internal/storage"
)

var (
	// ErrBusy is returned when a cycle is started while another is still running.
	ErrBusy = errors.New("another message is still being processed")
	// ErrUnknownQuickAction is returned for labels outside QuickActions.
	ErrUnknownQuickAction = errors.New("unknown quick action")
)

// Generator is the model call used for in-domain input.
type Generator interface {
	Generate(ctx context.Context, systemInstruction string, history []models.Turn, temperature float32) (string, error)
}

// State is the controller's position in an input cycle.
type State int32

const (
	StateIdle State = iota
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Service runs input cycles for exactly one session and owns its conversation.
type Service struct {
	generator     Generator
	conversation  *storage.Conversation
	logger        *zap.Logger
	systemPrompt  string
	historyWindow int
	temperature   float32

	state atomic.Int32
}

// Option configures a Service.
type Option func(*Service)

// WithHistoryWindow sets how many recent turns are sent to the model.
func WithHistoryWindow(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.historyWindow = k
		}
	}
}

// WithTemperature sets the sampling temperature passed to the model. Values
// <= 0 keep the default.
func WithTemperature(t float32) Option {
	return func(s *Service) {
		if t > 0 {
			s.temperature = t
		}
	}
}

// WithSystemPrompt replaces the default BankAssist instruction.
func WithSystemPrompt(prompt string) Option {
	return func(s *Service) {
		if prompt != "" {
			s.systemPrompt = prompt
		}
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds a controller around gen. A nil conversation starts a fresh one.
func NewService(gen Generator, conversation *storage.Conversation, opts ...Option) *Service {
	if conversation == nil {
		conversation = storage.NewConversation()
	}
	s := &Service{
		generator:     gen,
		conversation:  conversation,
		logger:        zap.NewNop(),
		systemPrompt:  SystemPrompt,
		historyWindow: config.DefaultHistoryWindow,
		temperature:   config.DefaultTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports whether a cycle is running.
func (s *Service) State() State {
	return State(s.state.Load())
}

// History returns the full transcript of the session.
func (s *Service) History() []models.Turn {
	return s.conversation.All()
}
