package specialist

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/careermate/agent/contract"
)

const handoffPrefix = "transfer_to_"

func handoffToolName(name contractx.AgentName) string {
	return handoffPrefix + string(name)
}

func handoffTools(targets []Definition) []*schema.ToolInfo {
	tools := make([]*schema.ToolInfo, 0, len(targets))
	for _, def := range targets {
		tools = append(tools, &schema.ToolInfo{
			Name: handoffToolName(def.Name),
			Desc: fmt.Sprintf("Hand off to the %s. %s", def.DisplayName, def.HandoffDescription),
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reason": {Type: schema.String, Desc: "Short note for the specialist about the request"},
			}),
		})
	}
	return tools
}

// decodeDecision turns one engine reply into a tagged Decision. Only the
// first tool call is honoured; the rest are logged and dropped.
func decodeDecision(logger zerolog.Logger, msg *schema.Message) (contractx.Decision, error) {
	if msg == nil {
		return contractx.Decision{}, fmt.Errorf("%w: empty engine response", contractx.ErrGeneration)
	}
	if len(msg.ToolCalls) == 0 {
		return contractx.DirectAnswer(msg.Content), nil
	}

	for _, extra := range msg.ToolCalls[1:] {
		logger.Warn().
			Str("tool", extra.Function.Name).
			Msg("dropping extra tool call, one invocation per turn")
	}

	call := msg.ToolCalls[0]
	name := strings.TrimSpace(call.Function.Name)
	if name == "" {
		return contractx.Decision{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrGeneration)
	}

	args := map[string]any{}
	rawArgs := strings.TrimSpace(call.Function.Arguments)
	var argsErr error
	if rawArgs != "" {
		argsErr = json.Unmarshal([]byte(rawArgs), &args)
	}

	if target, ok := strings.CutPrefix(name, handoffPrefix); ok {
		if argsErr != nil {
			logger.Warn().Err(argsErr).Str("tool", name).Msg("ignoring malformed handoff arguments")
		}
		reason, _ := args["reason"].(string)
		return contractx.Delegate(contractx.AgentName(target), strings.TrimSpace(reason)), nil
	}

	if argsErr != nil {
		return contractx.Decision{}, fmt.Errorf("%w: invalid arguments for tool=%s: %v", contractx.ErrArgument, name, argsErr)
	}
	return contractx.CallTool(contractx.ToolRequest{Tool: name, Args: args}), nil
}
