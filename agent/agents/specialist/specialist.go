package specialist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/tanpawarit/careermate/agent/capability"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	"github.com/tanpawarit/careermate/agent/output"
	logx "github.com/tanpawarit/careermate/pkg/logger"
	"github.com/tanpawarit/careermate/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/tanpawarit/careermate/agent/agents/specialist")

type specialistImpl struct {
	def          Definition
	capability   *capability.Capability
	invoker      contractx.CapabilityInvoker
	validator    *output.Validator
	metrics      *telemetry.TurnMetrics
	instructions string
	logger       zerolog.Logger

	planRunner    compose.Runnable[map[string]any, *schema.Message]
	answerRunner  compose.Runnable[map[string]any, *schema.Message]
	runtimeRunner compose.Runnable[contractx.SpecialistRequest, contractx.StructuredResult]
}

func newSpecialist(
	ctx context.Context,
	def Definition,
	chatModel einomodel.ToolCallingChatModel,
	caps *capability.Registry,
	validator *output.Validator,
	metrics *telemetry.TurnMetrics,
) (*specialistImpl, error) {
	if len(def.Capabilities) != 1 {
		return nil, fmt.Errorf("%w: specialist=%s must bind exactly one capability", contractx.ErrConfig, def.Name)
	}
	bound, ok := caps.Get(def.Capabilities[0])
	if !ok {
		return nil, fmt.Errorf("%w: specialist=%s binds unknown capability=%s", contractx.ErrConfig, def.Name, def.Capabilities[0])
	}

	toolModel, err := chatModel.WithTools([]*schema.ToolInfo{bound.Info()})
	if err != nil {
		return nil, fmt.Errorf("%w: bind capability for specialist=%s: %v", contractx.ErrConfig, def.Name, err)
	}
	planRunner, err := compileModelGraph(ctx, toolModel, "specialist."+string(def.Name)+".plan")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfig, err)
	}
	answerRunner, err := compileModelGraph(ctx, chatModel, "specialist."+string(def.Name)+".answer")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfig, err)
	}

	s := &specialistImpl{
		def:          def,
		capability:   bound,
		invoker:      caps,
		validator:    validator,
		metrics:      metrics,
		instructions: def.Instructions + "\n\nOutput format:\n" + def.Output.Describe(),
		logger:       logx.Component("specialist").With().Str("agent", string(def.Name)).Logger(),
		planRunner:   planRunner,
		answerRunner: answerRunner,
	}

	runtimeRunner, err := compileSpecialistRuntimeGraph(ctx, s.prepare, s.plan, s.runCapability, s.runAnswer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfig, err)
	}
	s.runtimeRunner = runtimeRunner

	return s, nil
}

func (s *specialistImpl) Handle(ctx context.Context, req contractx.SpecialistRequest) (contractx.StructuredResult, error) {
	ctx, span := tracer.Start(ctx, "specialist.handle")
	defer span.End()
	span.SetAttributes(
		attribute.String("agent", string(s.def.Name)),
		attribute.String("turn_id", req.TurnID),
	)

	out, err := s.runtimeRunner.Invoke(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return contractx.StructuredResult{}, err
	}
	return out, nil
}

func (s *specialistImpl) prepare(ctx context.Context, req contractx.SpecialistRequest) (*turnState, error) {
	text := strings.TrimSpace(req.UserMessage)
	if text == "" {
		return nil, fmt.Errorf("%w: user message is required", contractx.ErrArgument)
	}

	content := text
	if note := strings.TrimSpace(req.Context); note != "" {
		content = fmt.Sprintf("%s\n\nHandoff note: %s", text, note)
	}
	return &turnState{Req: req, Input: schema.UserMessage(content)}, nil
}

func (s *specialistImpl) plan(ctx context.Context, in *turnState) (*turnState, error) {
	msg, err := s.planRunner.Invoke(ctx, modelInput(s.instructions, in.Input))
	if err != nil {
		return nil, fmt.Errorf("%w: specialist=%s plan invoke: %v", contractx.ErrGeneration, s.def.Name, err)
	}

	decision, err := decodeDecision(s.logger, msg)
	if err != nil {
		return nil, err
	}
	if decision.Kind == contractx.DecisionDelegate {
		return nil, fmt.Errorf("%w: specialist=%s attempted to delegate to %s", contractx.ErrRouting, s.def.Name, decision.Target)
	}

	in.Decision = decision
	return in, nil
}

func (s *specialistImpl) runCapability(ctx context.Context, in *turnState) (contractx.StructuredResult, error) {
	call := in.Decision.ToolCall
	if call == nil || call.Tool != s.capability.Name {
		name := ""
		if call != nil {
			name = call.Tool
		}
		return contractx.StructuredResult{}, fmt.Errorf("%w: capability=%s is not bound to specialist=%s",
			contractx.ErrArgument, name, s.def.Name)
	}

	result, err := s.invoker.Invoke(call.Tool, call.Args)
	if err != nil {
		return contractx.StructuredResult{}, err
	}
	s.logger.Debug().Str("turn_id", in.Req.TurnID).Str("capability", call.Tool).Msg("capability invoked")

	payload, err := json.Marshal(map[string]any{
		"user_message":      strings.TrimSpace(in.Req.UserMessage),
		"handoff_note":      strings.TrimSpace(in.Req.Context),
		"capability":        call.Tool,
		"arguments":         call.Args,
		"capability_result": result,
	})
	if err != nil {
		return contractx.StructuredResult{}, fmt.Errorf("%w: marshal capability result: %v", contractx.ErrArgument, err)
	}

	input := schema.UserMessage(string(payload))
	msg, err := s.answerRunner.Invoke(ctx, modelInput(s.instructions, input))
	if err != nil {
		return contractx.StructuredResult{}, fmt.Errorf("%w: specialist=%s answer invoke: %v", contractx.ErrGeneration, s.def.Name, err)
	}
	if msg == nil {
		return contractx.StructuredResult{}, fmt.Errorf("%w: empty engine response", contractx.ErrGeneration)
	}
	if len(msg.ToolCalls) > 0 {
		s.logger.Warn().Str("turn_id", in.Req.TurnID).Msg("dropping tool call after capability invocation")
	}

	return s.finalize(ctx, in.Req.TurnID, input, msg.Content)
}

func (s *specialistImpl) runAnswer(ctx context.Context, in *turnState) (contractx.StructuredResult, error) {
	return s.finalize(ctx, in.Req.TurnID, in.Input, in.Decision.Text)
}

// finalize validates candidate against the declared output and asks the
// engine for corrections while retries remain.
func (s *specialistImpl) finalize(
	ctx context.Context,
	turnID string,
	input *schema.Message,
	candidate string,
) (contractx.StructuredResult, error) {
	regenerate := func(ctx context.Context, previous string, violation *output.Violation) (string, error) {
		msg, err := s.answerRunner.Invoke(ctx, modelInput(
			s.instructions,
			input,
			schema.AssistantMessage(previous, nil),
			schema.UserMessage(violation.Correction()),
		))
		if err != nil {
			return "", fmt.Errorf("%w: specialist=%s correction invoke: %v", contractx.ErrGeneration, s.def.Name, err)
		}
		if msg == nil {
			return "", fmt.Errorf("%w: empty engine response", contractx.ErrGeneration)
		}
		return msg.Content, nil
	}

	result, retries, err := s.validator.ValidateWithRetry(ctx, candidate, s.def.Output, regenerate)
	s.metrics.RecordRetries(ctx, string(s.def.Name), retries)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			s.logger.Error().Err(err).Str("turn_id", turnID).Int("retries", retries).Msg("output validation failed")
		}
		return contractx.StructuredResult{}, err
	}
	return result, nil
}
