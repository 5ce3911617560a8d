package dispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	nodex "github.com/tanpawarit/careermate/agent/nodes/dispatcher"
	"github.com/tanpawarit/careermate/agent/output"
	logx "github.com/tanpawarit/careermate/pkg/logger"
	"github.com/tanpawarit/careermate/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrInvalidMessage = nodex.ErrInvalidMessage

var tracer = otel.Tracer("github.com/tanpawarit/careermate/agent/agents/dispatcher")

type Config struct {
	Metrics *telemetry.TurnMetrics
}

// Dispatcher handles turns one at a time; it keeps no state between turns.
type Dispatcher struct {
	models    contractx.Registry
	validator *output.Validator
	metrics   *telemetry.TurnMetrics
	logger    zerolog.Logger

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(models contractx.Registry, cfg Config) (*Dispatcher, error) {
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if models.Router() == nil {
		return nil, errors.New("router is required")
	}

	d := &Dispatcher{
		models:    models,
		validator: output.NewValidator(0),
		metrics:   cfg.Metrics,
		logger:    logx.Component("dispatcher"),
		now:       time.Now,
	}

	graphRunner, err := d.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	d.graphRunner = graphRunner

	return d, nil
}

func (d *Dispatcher) HandleTurn(ctx context.Context, text string) (contractx.StructuredResult, error) {
	if err := ctx.Err(); err != nil {
		d.metrics.RecordTurn(ctx, telemetry.OutcomeCancelled)
		return contractx.StructuredResult{}, err
	}

	ctx, span := tracer.Start(ctx, "dispatcher.handle_turn")
	defer span.End()

	started := d.now()
	out, err := d.graphRunner.Invoke(ctx, nodex.GraphInput{Text: text})
	outcome := Outcome(err)
	d.metrics.RecordTurn(ctx, outcome)
	span.SetAttributes(attribute.String("outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Warn().Err(err).Str("outcome", outcome).Msg("turn failed")
		return contractx.StructuredResult{}, err
	}

	span.SetAttributes(
		attribute.String("turn_id", out.TurnID),
		attribute.String("result_kind", string(out.Result.Kind)),
	)
	d.logger.Info().
		Str("turn_id", out.TurnID).
		Str("result_kind", string(out.Result.Kind)).
		Dur("elapsed", d.now().Sub(started)).
		Msg("turn done")
	return out.Result, nil
}

// Outcome names the failure category of a turn error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeOK
	case errors.Is(err, context.Canceled):
		return telemetry.OutcomeCancelled
	case errors.Is(err, contractx.ErrConfig):
		return telemetry.OutcomeConfig
	case errors.Is(err, contractx.ErrRouting):
		return telemetry.OutcomeRouting
	case errors.Is(err, contractx.ErrValidation):
		return telemetry.OutcomeValidation
	case errors.Is(err, contractx.ErrArgument), errors.Is(err, ErrInvalidMessage):
		return telemetry.OutcomeArgument
	default:
		return telemetry.OutcomeGeneration
	}
}
