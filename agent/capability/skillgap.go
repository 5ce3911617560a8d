package capability

import (
	"fmt"

	contractx "github.com/tanpawarit/careermate/agent/contract"
)

const maxSuggestedSkills = 3

func newMissingSkills(table []requirement) *Capability {
	byGoal := make(map[string][]string, len(table))
	for _, r := range table {
		byGoal[r.Goal] = r.Skills
	}

	return &Capability{
		Name:        ToolMissingSkills,
		Description: "Identify missing skills based on current skills and desired career goal.",
		Args: []Arg{
			{Name: "currentSkills", Type: ArgStringList, Required: true, Desc: "Skills the user already has"},
			{Name: "careerGoal", Type: ArgString, Required: true, Desc: "Target role, e.g. Data Scientist"},
		},
		fn: func(args Args) (any, error) {
			return skillGap(byGoal, args.Strings("currentSkills"), args.String("careerGoal")), nil
		},
	}
}

// skillGap keeps the requirements table order for missing skills so the
// suggested prefix is deterministic. Unknown goals yield empty lists.
func skillGap(byGoal map[string][]string, current []string, goal string) contractx.SkillGap {
	have := make(map[string]struct{}, len(current))
	for _, s := range current {
		have[s] = struct{}{}
	}

	missing := []string{}
	seen := make(map[string]struct{})
	for _, s := range byGoal[goal] {
		if _, ok := have[s]; ok {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		missing = append(missing, s)
	}

	n := min(len(missing), maxSuggestedSkills)
	suggested := append([]string{}, missing[:n]...)

	return contractx.SkillGap{
		CareerGoal:             goal,
		CurrentSkills:          append([]string{}, current...),
		MissingSkills:          missing,
		SuggestedSkillsToLearn: suggested,
		Reasoning: fmt.Sprintf(
			"These skills are commonly required in %s job listings and are essential for competence in the role.",
			goal,
		),
	}
}
