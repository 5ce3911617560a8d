package specialist

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/tanpawarit/careermate/agent/capability"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	llmx "github.com/tanpawarit/careermate/agent/llm"
	"github.com/tanpawarit/careermate/agent/output"
	promptx "github.com/tanpawarit/careermate/agent/prompt"
	"github.com/tanpawarit/careermate/pkg/telemetry"
)

type registryImpl struct {
	router      contractx.Router
	specialists map[contractx.AgentName]contractx.Specialist
}

func (r *registryImpl) Router() contractx.Router {
	return r.router
}

func (r *registryImpl) Specialist(name contractx.AgentName) (contractx.Specialist, bool) {
	s, ok := r.specialists[name]
	return s, ok
}

// ModelFactory builds the chat model used by one agent.
type ModelFactory func(ctx context.Context, agent contractx.AgentName) (einomodel.ToolCallingChatModel, error)

type options struct {
	definitions *Definitions
	models      ModelFactory
	metrics     *telemetry.TurnMetrics
}

type Option func(*options)

func WithDefinitions(defs Definitions) Option {
	return func(o *options) { o.definitions = &defs }
}

// WithModelFactory replaces the endpoint-backed chat models.
func WithModelFactory(f ModelFactory) Option {
	return func(o *options) { o.models = f }
}

func WithMetrics(m *telemetry.TurnMetrics) Option {
	return func(o *options) { o.metrics = m }
}

func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	caps *capability.Registry,
	opts ...Option,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if caps == nil {
		return nil, fmt.Errorf("%w: capability registry is required", contractx.ErrConfig)
	}

	o := options{
		models: func(ctx context.Context, agent contractx.AgentName) (einomodel.ToolCallingChatModel, error) {
			modelCfg := cfg.ModelFor(agent)
			return modelCfg.New(ctx)
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	defs := DefaultDefinitions(promptx.LoadPromptSet())
	if o.definitions != nil {
		defs = *o.definitions
	}
	if err := defs.Validate(caps); err != nil {
		return nil, err
	}

	validator := output.NewValidator(cfg.ValidationMaxRetries)

	rootModel, err := o.models(ctx, defs.Root.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrConfig, defs.Root.Name, err)
	}
	targets := make([]Definition, 0, len(defs.Root.Targets))
	for _, name := range defs.Root.Targets {
		def, _ := defs.Specialist(name)
		targets = append(targets, def)
	}
	router, err := newRouter(ctx, defs.Root, targets, rootModel)
	if err != nil {
		return nil, err
	}

	specialists := make(map[contractx.AgentName]contractx.Specialist, len(defs.Specialists))
	for _, def := range defs.Specialists {
		chatModel, err := o.models(ctx, def.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrConfig, def.Name, err)
		}
		spec, err := newSpecialist(ctx, def, chatModel, caps, validator, o.metrics)
		if err != nil {
			return nil, err
		}
		specialists[def.Name] = spec
	}

	return &registryImpl{
		router:      router,
		specialists: specialists,
	}, nil
}
