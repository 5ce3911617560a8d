package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/skill_gap.txt
	skillGapRaw string

	//go:embed template/job_finder.txt
	jobFinderRaw string

	//go:embed template/course_recommender.txt
	courseRecommenderRaw string
)

// PromptSet holds the behaviour description of every agent.
type PromptSet struct {
	Router            string
	SkillGap          string
	JobFinder         string
	CourseRecommender string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:            strings.TrimSpace(routerRaw),
		SkillGap:          strings.TrimSpace(skillGapRaw),
		JobFinder:         strings.TrimSpace(jobFinderRaw),
		CourseRecommender: strings.TrimSpace(courseRecommenderRaw),
	}
}
