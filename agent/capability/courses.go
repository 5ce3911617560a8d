package capability

import contractx "github.com/tanpawarit/careermate/agent/contract"

func newRecommendCourses(catalog map[string]courseEntry) *Capability {
	return &Capability{
		Name:        ToolRecommendCourses,
		Description: "Recommend online courses based on missing skills.",
		Args: []Arg{
			{Name: "missingSkills", Type: ArgStringList, Required: true, Desc: "Skills to find courses for, in priority order"},
		},
		fn: func(args Args) (any, error) {
			return recommendCourses(catalog, args.Strings("missingSkills")), nil
		},
	}
}

func recommendCourses(catalog map[string]courseEntry, skills []string) []contractx.CourseRecommendation {
	out := make([]contractx.CourseRecommendation, 0, len(skills))
	for _, s := range skills {
		if c, ok := catalog[s]; ok {
			out = append(out, c.record())
		}
	}
	return out
}
