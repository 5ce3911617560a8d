package dispatchernode

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/careermate/agent/contract"
	"github.com/tanpawarit/careermate/agent/output"
	statex "github.com/tanpawarit/careermate/agent/state"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }

func TestValidateRequestOpensTurn(t *testing.T) {
	t.Parallel()

	st, err := ValidateRequest(context.Background(), GraphInput{Text: "  find me jobs  "}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateRequest error: %v", err)
	}
	if st.Turn.Text != "find me jobs" {
		t.Fatalf("unexpected text: %q", st.Turn.Text)
	}
	if st.Turn.Phase != statex.PhaseIdle {
		t.Fatalf("unexpected phase: %s", st.Turn.Phase)
	}
	if !st.Turn.StartedAt.Equal(fixedNow()) {
		t.Fatalf("unexpected start time: %v", st.Turn.StartedAt)
	}
}

func TestValidateRequestRejectsBlankAndCancelled(t *testing.T) {
	t.Parallel()

	if _, err := ValidateRequest(context.Background(), GraphInput{Text: " \t"}, fixedNow); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ValidateRequest(ctx, GraphInput{Text: "hi"}, fixedNow); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDirectAnswerFinishesTurn(t *testing.T) {
	t.Parallel()

	st, err := ValidateRequest(context.Background(), GraphInput{Text: "hello"}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateRequest error: %v", err)
	}
	if err := st.Turn.Advance(statex.PhaseRouting); err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	if err := st.Turn.Decide(contractx.DirectAnswer("Hi! Ask me about skills, jobs or courses.")); err != nil {
		t.Fatalf("Decide error: %v", err)
	}

	out, err := DirectAnswer(st, output.NewValidator(0))
	if err != nil {
		t.Fatalf("DirectAnswer error: %v", err)
	}
	if out.TurnID != st.Turn.ID {
		t.Fatalf("turn id mismatch: got %q want %q", out.TurnID, st.Turn.ID)
	}
	if out.Result.Kind != contractx.ResultPlainText {
		t.Fatalf("unexpected kind: %s", out.Result.Kind)
	}
	if !st.Turn.IsDone() {
		t.Fatalf("turn should be done, got %s", st.Turn.Phase)
	}
}

func TestDirectAnswerGuardsState(t *testing.T) {
	t.Parallel()

	if _, err := DirectAnswer(nil, output.NewValidator(0)); !errors.Is(err, contractx.ErrRouting) {
		t.Fatalf("expected ErrRouting, got %v", err)
	}

	st, err := ValidateRequest(context.Background(), GraphInput{Text: "hello"}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateRequest error: %v", err)
	}
	if _, err := DirectAnswer(st, output.NewValidator(0)); !errors.Is(err, statex.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
