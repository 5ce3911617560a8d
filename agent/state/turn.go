package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	contractx "github.com/tanpawarit/careermate/agent/contract"
)

var (
	ErrEmptyTurn         = errors.New("turn text is empty")
	ErrInvalidTransition = errors.New("invalid turn phase transition")
)

// Phase is the dispatcher state of one turn.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseRouting      Phase = "routing"
	PhaseDelegated    Phase = "delegated"
	PhaseDirectAnswer Phase = "direct_answer"
	PhaseDone         Phase = "done"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:         {PhaseRouting},
	PhaseRouting:      {PhaseDelegated, PhaseDirectAnswer},
	PhaseDelegated:    {PhaseDone},
	PhaseDirectAnswer: {PhaseDone},
	PhaseDone:         {PhaseIdle},
}

// ConversationTurn is created per user input and dropped once its result
// has been presented.
type ConversationTurn struct {
	ID        string
	Text      string
	Phase     Phase
	Decision  contractx.Decision
	StartedAt time.Time
}

func NewTurn(text string, now time.Time) (*ConversationTurn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyTurn
	}
	return &ConversationTurn{
		ID:        uuid.NewString(),
		Text:      text,
		Phase:     PhaseIdle,
		StartedAt: now.UTC(),
	}, nil
}

/* ----------------------------- Phase helpers ----------------------------- */

func (t *ConversationTurn) Advance(next Phase) error {
	if t == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidTransition)
	}
	for _, allowed := range transitions[t.Phase] {
		if allowed == next {
			t.Phase = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Phase, next)
}

// Decide records the routing decision and moves the turn to the matching phase.
func (t *ConversationTurn) Decide(d contractx.Decision) error {
	var next Phase
	switch d.Kind {
	case contractx.DecisionDelegate:
		next = PhaseDelegated
	case contractx.DecisionDirectAnswer:
		next = PhaseDirectAnswer
	default:
		return fmt.Errorf("%w: no phase for decision kind=%q", ErrInvalidTransition, d.Kind)
	}
	if err := t.Advance(next); err != nil {
		return err
	}
	t.Decision = d
	return nil
}

func (t *ConversationTurn) IsDone() bool {
	return t != nil && t.Phase == PhaseDone
}
