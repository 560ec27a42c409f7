package assistant

import (
	"context"

	"go.uber.org/zap"

	"bankassist/internal/models"
	"bankassist/internal/service/guard"
)

// Reply is the outcome of one input cycle.
type Reply struct {
	UserTurn models.Turn
	Turn     models.Turn
	InDomain bool
	Degraded bool
}

// Handle runs one input cycle: record the user turn, answer it with either the
// off-topic redirect or the model, and record the answer. A failed model call
// is answered with ApologyReply so every user turn gets exactly one reply.
func (s *Service) Handle(ctx context.Context, text string) (Reply, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateProcessing)) {
		return Reply{}, ErrBusy
	}
	defer s.state.Store(int32(StateIdle))

	userTurn := models.NewTurn(models.RoleUser, text)
	s.conversation.Append(userTurn)

	verdict := guard.Classify(text)
	reply := Reply{UserTurn: userTurn, InDomain: verdict.InDomain}

	var content string
	if !verdict.InDomain {
		s.logger.Debug("off-topic input, skipping model call")
		content = guard.OffTopicReply()
	} else {
		s.logger.Debug("banking input", zap.Strings("keywords", verdict.Matched))
		history := s.conversation.Recent(s.historyWindow)
		generated, err := s.generator.Generate(ctx, s.systemPrompt, history, s.temperature)
		if err != nil {
			s.logger.Warn("generation failed, sending apology", zap.Error(err))
			content = ApologyReply
			reply.Degraded = true
		} else {
			content = generated
		}
	}

	reply.Turn = models.NewTurn(models.RoleAssistant, content)
	s.conversation.Append(reply.Turn)
	return reply, nil
}

// HandleQuickAction submits the template text behind label through Handle.
func (s *Service) HandleQuickAction(ctx context.Context, label string) (Reply, error) {
	prompt, ok := QuickActionPrompt(label)
	if !ok {
		return Reply{}, ErrUnknownQuickAction
	}
	return s.Handle(ctx, prompt)
}
