package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bankassist/internal/config"
	"bankassist/internal/models"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrGenerationFailed marks any failure of the upstream chat completion call.
// The upstream error stays reachable through errors.Is / errors.As.
var ErrGenerationFailed = errors.New("generation failed")

type aiService struct {
	aiModel  model.BaseChatModel
	provider string
	model    string
	logger   *zap.Logger
}

// chatModelFactory is swapped in tests.
var chatModelFactory = newChatModel

// NewAiService builds the gateway for the configured provider. It refuses to
// start without a credential.
func NewAiService(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*aiService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, config.ErrMissingCredential
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	chatModel, err := chatModelFactory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return &aiService{
		aiModel:  chatModel,
		provider: cfg.Provider,
		model:    cfg.Model,
		logger:   logger,
	}, nil
}

func newChatModel(ctx context.Context, cfg config.LLMConfig) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case "mistral", "openai":
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		})
		if err != nil {
			return nil, err
		}
		return cm, nil
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("new gemini client: %w", err)
		}
		cm, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		return cm, nil
	case "claude":
		var baseURLPtr *string
		if cfg.BaseURL != "" {
			baseURLPtr = &cfg.BaseURL
		}
		cm, err := claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: 3000,
		})
		if err != nil {
			return nil, err
		}
		return cm, nil
	default:
		return nil, fmt.Errorf("invalid provider: %s", cfg.Provider)
	}
}

// Generate sends the system instruction followed by history to the model in a
// single blocking call and returns the trimmed reply text.
func (s *aiService) Generate(ctx context.Context, systemInstruction string, history []models.Turn, temperature float32) (string, error) {
	messages := convertTurns(systemInstruction, history)
	s.logger.Debug("calling chat model",
		zap.String("provider", s.provider),
		zap.String("model", s.model),
		zap.Int("messages", len(messages)),
		zap.Float32("temperature", temperature),
	)

	resp, err := s.aiModel.Generate(ctx, messages, model.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return strings.TrimSpace(resp.Content), nil
}

func convertTurns(systemInstruction string, history []models.Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, &schema.Message{
		Role:    schema.System,
		Content: systemInstruction,
	})
	for _, turn := range history {
		var role schema.RoleType
		switch turn.Role {
		case models.RoleUser:
			role = schema.User
		case models.RoleAssistant:
			role = schema.Assistant
		case models.RoleSystem:
			role = schema.System
		default:
			role = schema.User
		}
		messages = append(messages, &schema.Message{
			Role:    role,
			Content: turn.Content,
		})
	}
	return messages
}
