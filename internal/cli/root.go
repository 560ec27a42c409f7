package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bankassist/internal/config"
	"bankassist/internal/logger"
	"bankassist/internal/service/ai"
	"bankassist/internal/service/assistant"
)

const rootLongDesc string = `BankAssist answers banking questions: accounts, cards, loans,
transfers, fees and the like. Anything else gets a polite redirect.

Requires MISTRAL_API_KEY in the environment or in a .env file.

Examples:
  bankassist                  # interactive chat
  bankassist serve            # HTTP API on :8090
  bankassist --config bankassist.yaml serve`

type rootOptions struct {
	configPath string
	debug      bool
}

// newGateway is swapped in tests.
var newGateway = func(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (assistant.Generator, error) {
	svc, err := ai.NewAiService(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// runtime is everything a command needs once startup succeeded.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	gateway assistant.Generator
}

// bootstrap loads configuration and builds the model gateway. The gateway is
// never constructed when the credential is missing.
func bootstrap(ctx context.Context, opts *rootOptions) (*runtime, error) {
	cfg, warnings, err := config.Load(opts.configPath)
	config.PrintWarnings(warnings)
	if err != nil {
		return nil, err
	}
	log := logger.NewLogger(opts.debug || cfg.Log.Debug)

	gateway, err := newGateway(ctx, cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("init model gateway: %w", err)
	}
	log.Debug("model gateway ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
	)
	return &runtime{cfg: cfg, logger: log, gateway: gateway}, nil
}

// NewRootCmd builds the bankassist command tree. Chat is the default action.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "bankassist",
		Short:         "Banking-only chat assistant",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("BANKASSIST_CONFIG"), "Path to a config file (yaml, toml or json)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		log := logger.NewLogger(false)
		if errors.Is(err, config.ErrMissingCredential) {
			log.Fatal("cannot start without a model credential", zap.Error(err))
		}
		log.Fatal("bankassist stopped", zap.Error(err))
	}
}
