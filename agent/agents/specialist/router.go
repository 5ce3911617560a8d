package specialist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	logx "github.com/tanpawarit/careermate/pkg/logger"
)

type routerImpl struct {
	instructions string
	runner       compose.Runnable[map[string]any, *schema.Message]
	logger       zerolog.Logger
}

func newRouter(
	ctx context.Context,
	root Definition,
	targets []Definition,
	chatModel einomodel.ToolCallingChatModel,
) (*routerImpl, error) {
	toolModel, err := chatModel.WithTools(handoffTools(targets))
	if err != nil {
		return nil, fmt.Errorf("%w: bind handoff tools: %v", contractx.ErrConfig, err)
	}
	runner, err := compileModelGraph(ctx, toolModel, "router.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfig, err)
	}

	var b strings.Builder
	b.WriteString(root.Instructions)
	b.WriteString("\n\nSpecialists:\n")
	for _, def := range targets {
		fmt.Fprintf(&b, "- %s (%s): %s\n", def.DisplayName, handoffToolName(def.Name), def.HandoffDescription)
	}

	return &routerImpl{
		instructions: strings.TrimRight(b.String(), "\n"),
		runner:       runner,
		logger:       logx.Component("router"),
	}, nil
}

// Route asks the engine once for a decision. The decision is returned as
// given; checking the target against the registry is the caller's job.
func (r *routerImpl) Route(ctx context.Context, req contractx.RouteRequest) (contractx.Decision, error) {
	if err := ctx.Err(); err != nil {
		return contractx.Decision{}, err
	}
	text := strings.TrimSpace(req.UserMessage)
	if text == "" {
		return contractx.Decision{}, fmt.Errorf("%w: user message is required", contractx.ErrArgument)
	}

	msg, err := r.runner.Invoke(ctx, modelInput(r.instructions, schema.UserMessage(text)))
	if err != nil {
		return contractx.Decision{}, fmt.Errorf("%w: router invoke: %v", contractx.ErrGeneration, err)
	}

	decision, err := decodeDecision(r.logger, msg)
	if errors.Is(err, contractx.ErrArgument) {
		// A capability call from the router is a contract mismatch whatever
		// its arguments; let the dispatcher reject it as such.
		decision, err = contractx.CallTool(contractx.ToolRequest{Tool: msg.ToolCalls[0].Function.Name}), nil
	}
	if err != nil {
		return contractx.Decision{}, err
	}
	r.logger.Debug().
		Str("turn_id", req.TurnID).
		Str("kind", string(decision.Kind)).
		Str("target", string(decision.Target)).
		Msg("routing decision")
	return decision, nil
}
