package dispatcher

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	nodex "github.com/tanpawarit/careermate/agent/nodes/dispatcher"
	statex "github.com/tanpawarit/careermate/agent/state"
)

func (d *Dispatcher) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(ctx, in, d.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("route_turn",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RouteTurn(ctx, in, d.models, d.metrics, d.logger)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route_turn: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_specialist",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.DispatchSpecialist(ctx, in, d.models)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_specialist: %w", err)
	}

	if err := graph.AddLambdaNode("direct_answer",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.DirectAnswer(in, d.validator)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node direct_answer: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil || in.Turn == nil {
				return "", fmt.Errorf("%w: graph turn is nil", contractx.ErrRouting)
			}
			switch in.Turn.Phase {
			case statex.PhaseDelegated:
				return "dispatch_specialist", nil
			case statex.PhaseDirectAnswer:
				return "direct_answer", nil
			default:
				return "", fmt.Errorf("%w: turn is %s after routing", statex.ErrInvalidTransition, in.Turn.Phase)
			}
		},
		map[string]bool{
			"dispatch_specialist": true,
			"direct_answer":       true,
		},
	)

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "route_turn"},
		{"dispatch_specialist", compose.END},
		{"direct_answer", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}
	if err := graph.AddBranch("route_turn", branch); err != nil {
		return nil, fmt.Errorf("add branch route_turn: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("dispatcher.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile dispatcher graph: %w", err)
	}
	return runner, nil
}
