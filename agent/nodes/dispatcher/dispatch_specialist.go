package dispatchernode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/careermate/agent/contract"
	statex "github.com/tanpawarit/careermate/agent/state"
)

func DispatchSpecialist(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
) (GraphOutput, error) {
	turn, err := turnOf(in)
	if err != nil {
		return GraphOutput{}, err
	}
	if turn.Phase != statex.PhaseDelegated {
		return GraphOutput{}, fmt.Errorf("%w: turn is %s, not delegated", statex.ErrInvalidTransition, turn.Phase)
	}

	specialist, ok := models.Specialist(turn.Decision.Target)
	if !ok {
		return GraphOutput{}, fmt.Errorf("%w: unknown specialist=%q", contractx.ErrRouting, turn.Decision.Target)
	}

	result, err := specialist.Handle(ctx, contractx.SpecialistRequest{
		TurnID:      turn.ID,
		UserMessage: turn.Text,
		Context:     turn.Decision.Reason,
	})
	if err != nil {
		return GraphOutput{}, err
	}
	return finish(turn, result)
}

func finish(turn *statex.ConversationTurn, result contractx.StructuredResult) (GraphOutput, error) {
	if err := result.Validate(); err != nil {
		return GraphOutput{}, err
	}
	if err := turn.Advance(statex.PhaseDone); err != nil {
		return GraphOutput{}, err
	}
	return GraphOutput{TurnID: turn.ID, Result: result}, nil
}
