package capability

import (
	"embed"
	"fmt"

	contractx "github.com/tanpawarit/careermate/agent/contract"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type requirement struct {
	Goal   string   `yaml:"goal"`
	Skills []string `yaml:"skills"`
}

type jobEntry struct {
	JobTitle        string `yaml:"jobTitle"`
	Company         string `yaml:"company"`
	SalaryRange     string `yaml:"salaryRange"`
	Description     string `yaml:"description"`
	ApplicationLink string `yaml:"applicationLink"`
	RelevanceReason string `yaml:"relevanceReason"`
}

type courseEntry struct {
	Skill                string   `yaml:"skill"`
	CourseTitle          string   `yaml:"courseTitle"`
	Platform             string   `yaml:"platform"`
	DurationWeeks        int      `yaml:"durationWeeks"`
	DifficultyLevel      string   `yaml:"difficultyLevel"`
	Link                 string   `yaml:"link"`
	TopicsCovered        []string `yaml:"topicsCovered"`
	RecommendationReason string   `yaml:"recommendationReason"`
}

func (c courseEntry) record() contractx.CourseRecommendation {
	return contractx.CourseRecommendation{
		CourseTitle:          c.CourseTitle,
		Platform:             c.Platform,
		DurationWeeks:        c.DurationWeeks,
		DifficultyLevel:      c.DifficultyLevel,
		Link:                 c.Link,
		TopicsCovered:        append([]string{}, c.TopicsCovered...),
		RecommendationReason: c.RecommendationReason,
	}
}

type dataset struct {
	requirements []requirement
	jobs         []jobEntry
	courses      map[string]courseEntry
}

func loadDataset() (*dataset, error) {
	var d dataset
	if err := decodeYAML("data/skills.yaml", &d.requirements); err != nil {
		return nil, err
	}
	if err := decodeYAML("data/jobs.yaml", &d.jobs); err != nil {
		return nil, err
	}

	var courses []courseEntry
	if err := decodeYAML("data/courses.yaml", &courses); err != nil {
		return nil, err
	}
	d.courses = make(map[string]courseEntry, len(courses))
	for _, c := range courses {
		if _, dup := d.courses[c.Skill]; dup {
			return nil, fmt.Errorf("course catalog: duplicate skill %q", c.Skill)
		}
		d.courses[c.Skill] = c
	}
	return &d, nil
}

func decodeYAML(path string, out any) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
