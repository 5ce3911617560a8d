package dispatchernode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	statex "github.com/tanpawarit/careermate/agent/state"
	"github.com/tanpawarit/careermate/pkg/telemetry"
)

// RouteTurn asks the router once and checks the decision against the
// registry. The decision is final for the turn.
func RouteTurn(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
	metrics *telemetry.TurnMetrics,
	logger zerolog.Logger,
) (*GraphState, error) {
	turn, err := turnOf(in)
	if err != nil {
		return nil, err
	}
	if err := turn.Advance(statex.PhaseRouting); err != nil {
		return nil, err
	}

	decision, err := models.Router().Route(ctx, contractx.RouteRequest{
		TurnID:      turn.ID,
		UserMessage: turn.Text,
	})
	if err != nil {
		return nil, err
	}

	switch decision.Kind {
	case contractx.DecisionDelegate:
		if _, ok := models.Specialist(decision.Target); !ok {
			logRoutingMismatch(logger, turn.ID, decision)
			return nil, fmt.Errorf("%w: unknown specialist=%q", contractx.ErrRouting, decision.Target)
		}
		metrics.RecordDecision(ctx, string(decision.Target))
	case contractx.DecisionDirectAnswer:
		metrics.RecordDecision(ctx, string(contractx.DecisionDirectAnswer))
	case contractx.DecisionToolCall:
		logRoutingMismatch(logger, turn.ID, decision)
		return nil, fmt.Errorf("%w: router requested capability=%s directly", contractx.ErrRouting, decision.ToolCall.Tool)
	default:
		logRoutingMismatch(logger, turn.ID, decision)
		return nil, fmt.Errorf("%w: unknown decision kind=%q", contractx.ErrRouting, decision.Kind)
	}

	if err := turn.Decide(decision); err != nil {
		return nil, err
	}
	logger.Info().
		Str("turn_id", turn.ID).
		Str("kind", string(decision.Kind)).
		Str("target", string(decision.Target)).
		Msg("turn routed")
	return in, nil
}

func logRoutingMismatch(logger zerolog.Logger, turnID string, d contractx.Decision) {
	logger.Error().
		Str("turn_id", turnID).
		Str("kind", "routing_contract_mismatch").
		Str("decision", string(d.Kind)).
		Str("target", string(d.Target)).
		Msg("router returned a decision the registry cannot serve")
}
