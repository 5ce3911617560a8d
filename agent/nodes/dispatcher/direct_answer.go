package dispatchernode

import (
	"fmt"

	"github.com/tanpawarit/careermate/agent/output"
	statex "github.com/tanpawarit/careermate/agent/state"
)

// DirectAnswer wraps the router's own text into a PlainText result.
func DirectAnswer(in *GraphState, validator *output.Validator) (GraphOutput, error) {
	turn, err := turnOf(in)
	if err != nil {
		return GraphOutput{}, err
	}
	if turn.Phase != statex.PhaseDirectAnswer {
		return GraphOutput{}, fmt.Errorf("%w: turn is %s, not direct answer", statex.ErrInvalidTransition, turn.Phase)
	}

	result, err := validator.Validate(turn.Decision.Text, output.PlainTextSchema)
	if err != nil {
		return GraphOutput{}, err
	}
	return finish(turn, result)
}
