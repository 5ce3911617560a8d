package specialist

import (
	"fmt"
	"strings"

	"github.com/tanpawarit/careermate/agent/capability"
	contractx "github.com/tanpawarit/careermate/agent/contract"
	"github.com/tanpawarit/careermate/agent/output"
	promptx "github.com/tanpawarit/careermate/agent/prompt"
)

// Definition describes one agent. Definitions are built once at startup
// and never modified afterwards.
type Definition struct {
	Name               contractx.AgentName
	DisplayName        string
	HandoffDescription string
	Instructions       string
	Capabilities       []string
	Output             output.Schema
	Targets            []contractx.AgentName
}

// Definitions is the root agent plus the specialists it can delegate to.
type Definitions struct {
	Root        Definition
	Specialists []Definition
}

func DefaultDefinitions(prompts promptx.PromptSet) Definitions {
	return Definitions{
		Root: Definition{
			Name:         contractx.AgentCareerMate,
			DisplayName:  "CareerMate",
			Instructions: prompts.Router,
			Output:       output.PlainTextSchema,
			Targets: []contractx.AgentName{
				contractx.AgentSkillGap,
				contractx.AgentJobFinder,
				contractx.AgentCourseRecommender,
			},
		},
		Specialists: []Definition{
			{
				Name:               contractx.AgentSkillGap,
				DisplayName:        "Skill Gap Specialist",
				HandoffDescription: "Identifies missing skills based on the user's current skills and career goal.",
				Instructions:       prompts.SkillGap,
				Capabilities:       []string{capability.ToolMissingSkills},
				Output:             output.SkillGapSchema,
			},
			{
				Name:               contractx.AgentJobFinder,
				DisplayName:        "Job Finder",
				HandoffDescription: "Finds jobs based on the user's career goal and preferences.",
				Instructions:       prompts.JobFinder,
				Capabilities:       []string{capability.ToolFindJobs},
				Output:             output.JobListingSchema,
			},
			{
				Name:               contractx.AgentCourseRecommender,
				DisplayName:        "Course Recommender",
				HandoffDescription: "Recommends courses based on the user's missing or required skills.",
				Instructions:       prompts.CourseRecommender,
				Capabilities:       []string{capability.ToolRecommendCourses},
				Output:             output.CourseRecommendationsSchema,
			},
		},
	}
}

// Validate checks that names are unique, that specialists bind exactly one
// known capability and never delegate, and that every root target exists.
func (d Definitions) Validate(caps *capability.Registry) error {
	if strings.TrimSpace(string(d.Root.Name)) == "" {
		return fmt.Errorf("%w: root agent name is required", contractx.ErrConfig)
	}

	seen := map[contractx.AgentName]struct{}{d.Root.Name: {}}
	for _, def := range d.Specialists {
		if strings.TrimSpace(string(def.Name)) == "" {
			return fmt.Errorf("%w: specialist name is required", contractx.ErrConfig)
		}
		if _, dup := seen[def.Name]; dup {
			return fmt.Errorf("%w: duplicate agent name=%s", contractx.ErrConfig, def.Name)
		}
		seen[def.Name] = struct{}{}

		if len(def.Targets) > 0 {
			return fmt.Errorf("%w: specialist=%s must not delegate", contractx.ErrConfig, def.Name)
		}
		if len(def.Capabilities) != 1 {
			return fmt.Errorf("%w: specialist=%s must bind exactly one capability, got %d",
				contractx.ErrConfig, def.Name, len(def.Capabilities))
		}
		if caps != nil {
			if _, ok := caps.Get(def.Capabilities[0]); !ok {
				return fmt.Errorf("%w: specialist=%s binds unknown capability=%s",
					contractx.ErrConfig, def.Name, def.Capabilities[0])
			}
		}
		if def.Output.Shape == output.ShapeText {
			return fmt.Errorf("%w: specialist=%s must declare a structured output", contractx.ErrConfig, def.Name)
		}
	}

	for _, target := range d.Root.Targets {
		if target == d.Root.Name {
			return fmt.Errorf("%w: root agent cannot delegate to itself", contractx.ErrConfig)
		}
		if _, ok := d.Specialist(target); !ok {
			return fmt.Errorf("%w: root target=%s has no definition", contractx.ErrConfig, target)
		}
	}
	return nil
}

func (d Definitions) Specialist(name contractx.AgentName) (Definition, bool) {
	for _, def := range d.Specialists {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}
