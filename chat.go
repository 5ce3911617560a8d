package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanpawarit/careermate/agent/agents/dispatcher"
	"github.com/tanpawarit/careermate/agent/agents/specialist"
	"github.com/tanpawarit/careermate/agent/capability"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	llmx "github.com/tanpawarit/careermate/agent/llm"
	"github.com/tanpawarit/careermate/agent/session"
	configx "github.com/tanpawarit/careermate/pkg/config"
	logx "github.com/tanpawarit/careermate/pkg/logger"
	"github.com/tanpawarit/careermate/pkg/telemetry"
)

func newChatCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, flags)
		},
	}
}

func loadLLMConfig(flags *rootFlags) (*llmx.Config, error) {
	cfg, err := configx.New[llmx.Config]("", configx.WithEnvFile(flags.envFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runChat(cmd *cobra.Command, flags *rootFlags) error {
	ctx := cmd.Context()
	logger := logx.Component("cli")

	llmCfg, err := loadLLMConfig(flags)
	if err != nil {
		return err
	}

	telCfg, err := configx.New[telemetry.Config]("TELEMETRY", configx.WithEnvFile(flags.envFile))
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrConfig, err)
	}
	shutdown, err := telemetry.Init("careermate", version, *telCfg)
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrConfig, err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	metrics, err := telemetry.NewTurnMetrics()
	if err != nil {
		return err
	}

	caps, err := capability.NewRegistry()
	if err != nil {
		return err
	}
	models, err := specialist.NewRegistry(ctx, *llmCfg, caps, specialist.WithMetrics(metrics))
	if err != nil {
		return err
	}
	d, err := dispatcher.New(models, dispatcher.Config{Metrics: metrics})
	if err != nil {
		return err
	}

	logger.Info().Str("model", llmCfg.Model).Int("max_retries", llmCfg.ValidationMaxRetries).Msg("session started")
	return session.New(d, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
}
