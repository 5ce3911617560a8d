package specialist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/tanpawarit/careermate/agent/capability"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	llmx "github.com/tanpawarit/careermate/agent/llm"
	nodex "github.com/tanpawarit/careermate/agent/nodes/dispatcher"
	"github.com/tanpawarit/careermate/agent/output"
	promptx "github.com/tanpawarit/careermate/agent/prompt"
)

type fakeToolCallingModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
	tools     []*schema.ToolInfo
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.mu.Lock()
	f.tools = append(f.tools, tools...)
	f.mu.Unlock()
	return f, nil
}

func (f *fakeToolCallingModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

func (f *fakeToolCallingModel) lastInput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		return ""
	}
	msgs := f.inputs[len(f.inputs)-1]
	return msgs[len(msgs)-1].Content
}

type countingInvoker struct {
	next  contractx.CapabilityInvoker
	names []string
}

func (c *countingInvoker) Invoke(name string, args map[string]any) (any, error) {
	c.names = append(c.names, name)
	return c.next.Invoke(name, args)
}

func toolCall(name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{
				ID:       "call_" + name,
				Type:     "function",
				Function: schema.FunctionCall{Name: name, Arguments: args},
			},
		},
	}
}

func answer(content string) *schema.Message {
	return &schema.Message{Role: schema.Assistant, Content: content}
}

const skillGapAnswer = `{
	"careerGoal": "Data Scientist",
	"currentSkills": ["Python"],
	"missingSkills": ["Pandas", "SQL", "Machine Learning", "Data Visualization", "Deep Learning"],
	"suggestedSkillsToLearn": ["Pandas", "SQL", "Machine Learning"],
	"reasoning": "These skills are commonly required in Data Scientist job listings."
}`

const courseAnswer = `{
	"courseTitle": "Python for Everybody",
	"platform": "Coursera",
	"durationWeeks": 8,
	"difficultyLevel": "Beginner",
	"link": "https://www.coursera.org/specializations/python",
	"topicsCovered": ["Python basics", "Data structures"],
	"recommendationReason": "Starts from the basics."
}`

func newTestSpecialist(t *testing.T, name contractx.AgentName, fake *fakeToolCallingModel, retries int) *specialistImpl {
	t.Helper()

	def, ok := DefaultDefinitions(promptx.LoadPromptSet()).Specialist(name)
	if !ok {
		t.Fatalf("no definition for %s", name)
	}
	spec, err := newSpecialist(context.Background(), def, fake, capability.MustNewRegistry(), output.NewValidator(retries), nil)
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}
	return spec
}

func newTestRouter(t *testing.T, fake *fakeToolCallingModel) *routerImpl {
	t.Helper()

	defs := DefaultDefinitions(promptx.LoadPromptSet())
	r, err := newRouter(context.Background(), defs.Root, defs.Specialists, fake)
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}
	return r
}

func TestRouterDelegatesThroughHandoffTool(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCall("transfer_to_skill_gap", `{"reason":"goal=Data Scientist, knows Python"}`),
		},
	}
	r := newTestRouter(t, fake)

	if len(fake.tools) != 3 {
		t.Fatalf("expected 3 handoff tools, got %d", len(fake.tools))
	}
	if fake.tools[0].Name != "transfer_to_skill_gap" {
		t.Fatalf("unexpected first handoff tool: %s", fake.tools[0].Name)
	}

	decision, err := r.Route(context.Background(), contractx.RouteRequest{
		TurnID:      "t1",
		UserMessage: "What skills do I need to become a data scientist? I know Python.",
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if decision.Kind != contractx.DecisionDelegate {
		t.Fatalf("unexpected decision kind: %s", decision.Kind)
	}
	if decision.Target != contractx.AgentSkillGap {
		t.Fatalf("unexpected target: %s", decision.Target)
	}
	if decision.Reason != "goal=Data Scientist, knows Python" {
		t.Fatalf("unexpected reason: %q", decision.Reason)
	}
	if !strings.Contains(fake.inputs[0][0].Content, "transfer_to_job_finder") {
		t.Fatalf("router instructions must list specialists, got %q", fake.inputs[0][0].Content)
	}
}

func TestRouterDirectAnswer(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{answer("Hi! How can I help with your career?")}}
	r := newTestRouter(t, fake)

	decision, err := r.Route(context.Background(), contractx.RouteRequest{UserMessage: "hello"})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if decision.Kind != contractx.DecisionDirectAnswer {
		t.Fatalf("unexpected decision kind: %s", decision.Kind)
	}
	if decision.Text != "Hi! How can I help with your career?" {
		t.Fatalf("unexpected text: %q", decision.Text)
	}
}

func TestRouterReturnsUnknownTargetUnchanged(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{toolCall("transfer_to_NotARealAgent", ``)}}
	r := newTestRouter(t, fake)

	decision, err := r.Route(context.Background(), contractx.RouteRequest{UserMessage: "help"})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if decision.Kind != contractx.DecisionDelegate || decision.Target != "NotARealAgent" {
		t.Fatalf("unexpected decision: %#v", decision)
	}
}

func TestRouterCapabilityCallWithBadArgsIsToolCallDecision(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{toolCall("find_jobs", `{bad`)}}
	r := newTestRouter(t, fake)

	decision, err := r.Route(context.Background(), contractx.RouteRequest{UserMessage: "find me a job"})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if decision.Kind != contractx.DecisionToolCall || decision.ToolCall == nil || decision.ToolCall.Tool != "find_jobs" {
		t.Fatalf("unexpected decision: %#v", decision)
	}
}

func TestRouteTurnRejectsRouterCapabilityCallWithBadArgs(t *testing.T) {
	t.Parallel()

	routerModel := &fakeToolCallingModel{responses: []*schema.Message{toolCall("find_jobs", `{bad`)}}
	factory := func(ctx context.Context, agent contractx.AgentName) (einomodel.ToolCallingChatModel, error) {
		if agent == contractx.AgentCareerMate {
			return routerModel, nil
		}
		return &fakeToolCallingModel{}, nil
	}
	reg, err := NewRegistry(context.Background(), llmx.Config{
		BaseURL:              "https://example.test/v1",
		APIKey:               "key",
		Model:                "model",
		Timeout:              time.Second,
		ValidationMaxRetries: 2,
	}, capability.MustNewRegistry(), WithModelFactory(factory))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	st, err := nodex.ValidateRequest(context.Background(), nodex.GraphInput{Text: "find me a job"}, time.Now)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	_, err = nodex.RouteTurn(context.Background(), st, reg, nil, zerolog.Nop())
	if !errors.Is(err, contractx.ErrRouting) {
		t.Fatalf("expected ErrRouting, got %v", err)
	}
}

func TestRouterEngineErrorIsGenerationError(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{err: context.DeadlineExceeded}
	r := newTestRouter(t, fake)

	_, err := r.Route(context.Background(), contractx.RouteRequest{UserMessage: "find me a job"})
	if !errors.Is(err, contractx.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestRouterCancelledBeforeRouting(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{answer("unused")}}
	r := newTestRouter(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Route(ctx, contractx.RouteRequest{UserMessage: "hello"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fake.calls() != 0 {
		t.Fatalf("engine must not be called after cancellation, got %d calls", fake.calls())
	}
}

func TestSpecialistCapabilityPath(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCall(capability.ToolMissingSkills, `{"currentSkills":["Python"],"careerGoal":"Data Scientist"}`),
			answer(skillGapAnswer),
		},
	}
	spec := newTestSpecialist(t, contractx.AgentSkillGap, fake, 2)

	if len(fake.tools) != 1 || fake.tools[0].Name != capability.ToolMissingSkills {
		t.Fatalf("expected only the bound capability, got %#v", fake.tools)
	}

	res, err := spec.Handle(context.Background(), contractx.SpecialistRequest{
		TurnID:      "t1",
		UserMessage: "I know Python and want to become a Data Scientist",
		Context:     "goal=Data Scientist",
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.Kind != contractx.ResultSkillGap {
		t.Fatalf("unexpected result kind: %s", res.Kind)
	}
	if got := res.SkillGap.SuggestedSkillsToLearn; len(got) != 3 || got[0] != "Pandas" {
		t.Fatalf("unexpected suggestions: %#v", got)
	}
	if fake.calls() != 2 {
		t.Fatalf("expected 2 engine calls, got %d", fake.calls())
	}
	if !strings.Contains(fake.lastInput(), `"capability_result"`) || !strings.Contains(fake.lastInput(), "Machine Learning") {
		t.Fatalf("capability result was not fed back to the engine: %s", fake.lastInput())
	}
	if !strings.Contains(fake.inputs[0][len(fake.inputs[0])-1].Content, "Handoff note: goal=Data Scientist") {
		t.Fatalf("handoff note missing from plan input")
	}
}

func TestSpecialistInvokesAtMostOneCapability(t *testing.T) {
	t.Parallel()

	plan := toolCall(capability.ToolRecommendCourses, `{"missingSkills":["Python"]}`)
	plan.ToolCalls = append(plan.ToolCalls, schema.ToolCall{
		ID:       "call_2",
		Type:     "function",
		Function: schema.FunctionCall{Name: capability.ToolRecommendCourses, Arguments: `{"missingSkills":["SQL"]}`},
	})

	fake := &fakeToolCallingModel{responses: []*schema.Message{plan, answer(courseAnswer)}}
	spec := newTestSpecialist(t, contractx.AgentCourseRecommender, fake, 2)
	invoker := &countingInvoker{next: spec.invoker}
	spec.invoker = invoker

	res, err := spec.Handle(context.Background(), contractx.SpecialistRequest{UserMessage: "courses for python"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.Kind != contractx.ResultCourseRecommendation {
		t.Fatalf("unexpected result kind: %s", res.Kind)
	}
	if len(invoker.names) != 1 {
		t.Fatalf("expected exactly one capability invocation, got %v", invoker.names)
	}
}

func TestSpecialistCourseListResult(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCall(capability.ToolRecommendCourses, `{"missingSkills":["Python","SQL"]}`),
			answer("```json\n[" + courseAnswer + "," + courseAnswer + "]\n```"),
		},
	}
	spec := newTestSpecialist(t, contractx.AgentCourseRecommender, fake, 2)

	res, err := spec.Handle(context.Background(), contractx.SpecialistRequest{UserMessage: "courses for python and sql"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.Kind != contractx.ResultCourseRecommendationList || len(res.Courses) != 2 {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestSpecialistAnswerWithoutCapability(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{answer(skillGapAnswer)}}
	spec := newTestSpecialist(t, contractx.AgentSkillGap, fake, 2)

	res, err := spec.Handle(context.Background(), contractx.SpecialistRequest{UserMessage: "data scientist"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.Kind != contractx.ResultSkillGap {
		t.Fatalf("unexpected result kind: %s", res.Kind)
	}
	if fake.calls() != 1 {
		t.Fatalf("expected 1 engine call, got %d", fake.calls())
	}
}

func TestSpecialistRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCall(capability.ToolMissingSkills, `{"currentSkills":["Python"],"careerGoal":"Data Scientist"}`),
			answer(`{"careerGoal":"Data Scientist"}`),
			answer(skillGapAnswer),
		},
	}
	spec := newTestSpecialist(t, contractx.AgentSkillGap, fake, 2)

	res, err := spec.Handle(context.Background(), contractx.SpecialistRequest{UserMessage: "data scientist with python"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.Kind != contractx.ResultSkillGap {
		t.Fatalf("unexpected result kind: %s", res.Kind)
	}
	if fake.calls() != 3 {
		t.Fatalf("expected 3 engine calls, got %d", fake.calls())
	}
	if !strings.Contains(fake.lastInput(), `"currentSkills"`) {
		t.Fatalf("correction must name the violated field, got %q", fake.lastInput())
	}
}

func TestSpecialistRetriesExhausted(t *testing.T) {
	t.Parallel()

	bad := answer(`{"careerGoal":"Data Scientist"}`)
	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCall(capability.ToolMissingSkills, `{"currentSkills":["Python"],"careerGoal":"Data Scientist"}`),
			bad, bad, bad, answer(skillGapAnswer),
		},
	}
	spec := newTestSpecialist(t, contractx.AgentSkillGap, fake, 2)

	_, err := spec.Handle(context.Background(), contractx.SpecialistRequest{UserMessage: "data scientist"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if errors.Is(err, contractx.ErrGeneration) {
		t.Fatalf("validation failure must not look like a generation failure: %v", err)
	}
	// plan + first answer + two corrections
	if fake.calls() != 4 {
		t.Fatalf("expected 4 engine calls, got %d", fake.calls())
	}
}

func TestSpecialistRejectsUnboundCapability(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{toolCall(capability.ToolFindJobs, `{"careerGoal":"Data Scientist"}`)},
	}
	spec := newTestSpecialist(t, contractx.AgentSkillGap, fake, 2)

	_, err := spec.Handle(context.Background(), contractx.SpecialistRequest{UserMessage: "jobs please"})
	if !errors.Is(err, contractx.ErrArgument) {
		t.Fatalf("expected ErrArgument, got %v", err)
	}
}

func TestSpecialistCapabilityArgumentError(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{toolCall(capability.ToolMissingSkills, `{"currentSkills":["Python"]}`)},
	}
	spec := newTestSpecialist(t, contractx.AgentSkillGap, fake, 2)

	_, err := spec.Handle(context.Background(), contractx.SpecialistRequest{UserMessage: "what am I missing"})
	if !errors.Is(err, contractx.ErrArgument) {
		t.Fatalf("expected ErrArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "careerGoal") {
		t.Fatalf("argument error must name the field, got %v", err)
	}
}

func TestSpecialistEngineError(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{err: errors.New("503 service unavailable")}
	spec := newTestSpecialist(t, contractx.AgentJobFinder, fake, 2)

	_, err := spec.Handle(context.Background(), contractx.SpecialistRequest{UserMessage: "remote ml job"})
	if !errors.Is(err, contractx.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestDefinitionsValidate(t *testing.T) {
	t.Parallel()

	caps := capability.MustNewRegistry()
	if err := DefaultDefinitions(promptx.LoadPromptSet()).Validate(caps); err != nil {
		t.Fatalf("default definitions invalid: %v", err)
	}

	tests := map[string]func(*Definitions){
		"specialist delegates": func(d *Definitions) {
			d.Specialists[0].Targets = []contractx.AgentName{contractx.AgentJobFinder}
		},
		"two capabilities": func(d *Definitions) {
			d.Specialists[1].Capabilities = []string{capability.ToolFindJobs, capability.ToolRecommendCourses}
		},
		"unknown capability": func(d *Definitions) {
			d.Specialists[2].Capabilities = []string{"math.evaluate"}
		},
		"duplicate name": func(d *Definitions) {
			d.Specialists[1].Name = d.Specialists[0].Name
		},
		"unknown root target": func(d *Definitions) {
			d.Root.Targets = append(d.Root.Targets, "NotARealAgent")
		},
		"free text specialist": func(d *Definitions) {
			d.Specialists[0].Output = output.PlainTextSchema
		},
	}
	for name, mutate := range tests {
		defs := DefaultDefinitions(promptx.LoadPromptSet())
		mutate(&defs)
		if err := defs.Validate(caps); !errors.Is(err, contractx.ErrConfig) {
			t.Fatalf("%s: expected ErrConfig, got %v", name, err)
		}
	}
}

func TestNewRegistryBuildsEveryAgent(t *testing.T) {
	t.Parallel()

	built := map[contractx.AgentName]bool{}
	var mu sync.Mutex
	factory := func(ctx context.Context, agent contractx.AgentName) (einomodel.ToolCallingChatModel, error) {
		mu.Lock()
		built[agent] = true
		mu.Unlock()
		return &fakeToolCallingModel{}, nil
	}

	reg, err := NewRegistry(context.Background(), llmx.Config{
		BaseURL:              "https://example.test/v1",
		APIKey:               "key",
		Model:                "model",
		Timeout:              time.Second,
		ValidationMaxRetries: 2,
	}, capability.MustNewRegistry(), WithModelFactory(factory))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if reg.Router() == nil {
		t.Fatal("expected router")
	}
	for _, name := range []contractx.AgentName{contractx.AgentSkillGap, contractx.AgentJobFinder, contractx.AgentCourseRecommender} {
		if _, ok := reg.Specialist(name); !ok {
			t.Fatalf("missing specialist %s", name)
		}
	}
	if _, ok := reg.Specialist("NotARealAgent"); ok {
		t.Fatal("unexpected specialist NotARealAgent")
	}
	if len(built) != 4 || !built[contractx.AgentCareerMate] {
		t.Fatalf("expected a model per agent, got %v", built)
	}
}

func TestNewRegistryRejectsMissingConfig(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(context.Background(), llmx.Config{APIKey: "key", Model: "m"}, capability.MustNewRegistry())
	if !errors.Is(err, contractx.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
