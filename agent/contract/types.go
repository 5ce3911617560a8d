package contract

type AgentName string

const (
	AgentCareerMate        AgentName = "careermate"
	AgentSkillGap          AgentName = "skill_gap"
	AgentJobFinder         AgentName = "job_finder"
	AgentCourseRecommender AgentName = "course_recommender"
)

type RouteRequest struct {
	TurnID      string `json:"turn_id"`
	UserMessage string `json:"user_message"`
}

type SpecialistRequest struct {
	TurnID      string `json:"turn_id"`
	UserMessage string `json:"user_message"`
	// Context carries the router's handoff reason, if any.
	Context string `json:"context,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type DecisionKind string

const (
	DecisionDelegate     DecisionKind = "delegate"
	DecisionDirectAnswer DecisionKind = "direct_answer"
	DecisionToolCall     DecisionKind = "tool_call"
)

// Decision is what the generation engine asked for on a single call.
// Exactly the fields belonging to Kind are meaningful.
type Decision struct {
	Kind     DecisionKind
	Target   AgentName
	Reason   string
	Text     string
	ToolCall *ToolRequest
}

func Delegate(target AgentName, reason string) Decision {
	return Decision{Kind: DecisionDelegate, Target: target, Reason: reason}
}

func DirectAnswer(text string) Decision {
	return Decision{Kind: DecisionDirectAnswer, Text: text}
}

func CallTool(req ToolRequest) Decision {
	return Decision{Kind: DecisionToolCall, ToolCall: &req}
}
