package dispatchernode

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/careermate/agent/contract"
	statex "github.com/tanpawarit/careermate/agent/state"
)

var ErrInvalidMessage = errors.New("message is empty")

type GraphInput struct {
	Text string
}

type GraphOutput struct {
	TurnID string
	Result contractx.StructuredResult
}

type GraphState struct {
	Turn *statex.ConversationTurn
}

// ValidateRequest opens a turn. A context cancelled before routing abandons
// the turn with ctx.Err().
func ValidateRequest(ctx context.Context, in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	turn, err := statex.NewTurn(in.Text, nowFn())
	if err != nil {
		if errors.Is(err, statex.ErrEmptyTurn) {
			return nil, ErrInvalidMessage
		}
		return nil, err
	}
	return &GraphState{Turn: turn}, nil
}

func turnOf(in *GraphState) (*statex.ConversationTurn, error) {
	if in == nil || in.Turn == nil {
		return nil, fmt.Errorf("%w: graph turn is nil", contractx.ErrRouting)
	}
	return in.Turn, nil
}
