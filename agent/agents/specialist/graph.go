package specialist

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/careermate/agent/contract"
)

// Inputs of every model graph: "instructions" is the system prompt and
// "history" the conversation so far, ending with a user message.
const (
	varInstructions = "instructions"
	varHistory      = "history"
)

func modelInput(instructions string, history ...*schema.Message) map[string]any {
	return map[string]any{
		varInstructions: instructions,
		varHistory:      history,
	}
}

func compileModelGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	graphName string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{"+varInstructions+"}"),
		schema.MessagesPlaceholder(varHistory, false),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add %s prompt node: %w", graphName, err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add %s model node: %w", graphName, err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add %s edge start->prompt: %w", graphName, err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add %s edge prompt->model: %w", graphName, err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add %s edge model->end: %w", graphName, err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", graphName, err)
	}
	return runner, nil
}

// turnState travels through the specialist runtime graph.
type turnState struct {
	Req      contractx.SpecialistRequest
	Input    *schema.Message
	Decision contractx.Decision
}

const (
	nodeCapabilityPath = "capability_path"
	nodeAnswerPath     = "answer_path"
)

func compileSpecialistRuntimeGraph(
	ctx context.Context,
	prepare func(context.Context, contractx.SpecialistRequest) (*turnState, error),
	plan func(context.Context, *turnState) (*turnState, error),
	capabilityFlow func(context.Context, *turnState) (contractx.StructuredResult, error),
	answerFlow func(context.Context, *turnState) (contractx.StructuredResult, error),
) (compose.Runnable[contractx.SpecialistRequest, contractx.StructuredResult], error) {
	graph := compose.NewGraph[contractx.SpecialistRequest, contractx.StructuredResult]()

	if err := graph.AddLambdaNode("prepare", compose.InvokableLambda(prepare)); err != nil {
		return nil, fmt.Errorf("add specialist runtime prepare node: %w", err)
	}
	if err := graph.AddLambdaNode("plan_capability", compose.InvokableLambda(plan)); err != nil {
		return nil, fmt.Errorf("add specialist runtime plan node: %w", err)
	}
	if err := graph.AddLambdaNode(nodeCapabilityPath, compose.InvokableLambda(capabilityFlow)); err != nil {
		return nil, fmt.Errorf("add specialist runtime capability node: %w", err)
	}
	if err := graph.AddLambdaNode(nodeAnswerPath, compose.InvokableLambda(answerFlow)); err != nil {
		return nil, fmt.Errorf("add specialist runtime answer node: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *turnState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: specialist graph state is nil", contractx.ErrGeneration)
			}
			if in.Decision.Kind == contractx.DecisionToolCall {
				return nodeCapabilityPath, nil
			}
			return nodeAnswerPath, nil
		},
		map[string]bool{
			nodeCapabilityPath: true,
			nodeAnswerPath:     true,
		},
	)

	if err := graph.AddEdge(compose.START, "prepare"); err != nil {
		return nil, fmt.Errorf("add specialist runtime edge start->prepare: %w", err)
	}
	if err := graph.AddEdge("prepare", "plan_capability"); err != nil {
		return nil, fmt.Errorf("add specialist runtime edge prepare->plan: %w", err)
	}
	if err := graph.AddBranch("plan_capability", branch); err != nil {
		return nil, fmt.Errorf("add specialist runtime branch: %w", err)
	}
	if err := graph.AddEdge(nodeCapabilityPath, compose.END); err != nil {
		return nil, fmt.Errorf("add specialist runtime edge capability->end: %w", err)
	}
	if err := graph.AddEdge(nodeAnswerPath, compose.END); err != nil {
		return nil, fmt.Errorf("add specialist runtime edge answer->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("specialist.runtime_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile specialist runtime graph: %w", err)
	}
	return runner, nil
}
