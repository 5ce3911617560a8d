package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/tanpawarit/careermate"

// Turn outcomes recorded on careermate.turns.total.
const (
	OutcomeOK         = "ok"
	OutcomeConfig     = "config_error"
	OutcomeArgument   = "argument_error"
	OutcomeGeneration = "generation_error"
	OutcomeValidation = "validation_error"
	OutcomeRouting    = "routing_error"
	OutcomeCancelled  = "cancelled"
)

// TurnMetrics counts turns, corrective retries and routing decisions.
// A nil *TurnMetrics records nothing.
type TurnMetrics struct {
	turns     metric.Int64Counter
	retries   metric.Int64Counter
	decisions metric.Int64Counter
}

// NewTurnMetrics creates counters on the global meter provider.
func NewTurnMetrics() (*TurnMetrics, error) {
	return NewTurnMetricsWithProvider(otel.GetMeterProvider())
}

func NewTurnMetricsWithProvider(provider metric.MeterProvider) (*TurnMetrics, error) {
	meter := provider.Meter(meterName)

	turns, err := meter.Int64Counter(
		"careermate.turns.total",
		metric.WithDescription("Turns handled by outcome"),
	)
	if err != nil {
		return nil, err
	}

	retries, err := meter.Int64Counter(
		"careermate.validation.retries",
		metric.WithDescription("Corrective retries issued to the generation engine"),
	)
	if err != nil {
		return nil, err
	}

	decisions, err := meter.Int64Counter(
		"careermate.routing.decisions",
		metric.WithDescription("Routing decisions by target"),
	)
	if err != nil {
		return nil, err
	}

	return &TurnMetrics{turns: turns, retries: retries, decisions: decisions}, nil
}

func (m *TurnMetrics) RecordTurn(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.turns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *TurnMetrics) RecordRetries(ctx context.Context, agent string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.retries.Add(ctx, int64(n), metric.WithAttributes(attribute.String("agent", agent)))
}

func (m *TurnMetrics) RecordDecision(ctx context.Context, target string) {
	if m == nil {
		return
	}
	m.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("target", target)))
}
