package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/careermate/agent/contract"
	chatmodelx "github.com/tanpawarit/careermate/pkg/chatmodel"
)

type Config struct {
	BaseURL              string        `envconfig:"BASE_URL" required:"true"`
	APIKey               string        `envconfig:"API_KEY" required:"true"`
	Model                string        `envconfig:"MODEL_NAME" required:"true"`
	MaxCompletionToken   int           `envconfig:"MAX_COMPLETION_TOKEN" default:"2000"`
	Temperature          float32       `envconfig:"TEMPERATURE" default:"0.3"`
	Timeout              time.Duration `envconfig:"TIMEOUT" default:"60s"`
	ValidationMaxRetries int           `envconfig:"VALIDATION_MAX_RETRIES" default:"2"`

	RouterModel                  string  `envconfig:"ROUTER_MODEL"`
	SkillGapModel                string  `envconfig:"SKILL_GAP_MODEL"`
	JobFinderModel               string  `envconfig:"JOB_FINDER_MODEL"`
	CourseRecommenderModel       string  `envconfig:"COURSE_RECOMMENDER_MODEL"`
	RouterTemperature            float32 `envconfig:"ROUTER_TEMPERATURE" default:"-1"`
	SkillGapTemperature          float32 `envconfig:"SKILL_GAP_TEMPERATURE" default:"-1"`
	JobFinderTemperature         float32 `envconfig:"JOB_FINDER_TEMPERATURE" default:"-1"`
	CourseRecommenderTemperature float32 `envconfig:"COURSE_RECOMMENDER_TEMPERATURE" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: BASE_URL is required", contractx.ErrConfig)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: API_KEY is required", contractx.ErrConfig)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: MODEL_NAME is required", contractx.ErrConfig)
	}
	if c.ValidationMaxRetries < 0 {
		return fmt.Errorf("%w: VALIDATION_MAX_RETRIES must be >= 0, got %d", contractx.ErrConfig, c.ValidationMaxRetries)
	}
	return nil
}

// ModelFor returns the chat model settings for agent, applying its overrides.
func (c Config) ModelFor(agent contractx.AgentName) chatmodelx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(name string, t float32) {
		if v := strings.TrimSpace(name); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}

	switch agent {
	case contractx.AgentCareerMate:
		override(c.RouterModel, c.RouterTemperature)
	case contractx.AgentSkillGap:
		override(c.SkillGapModel, c.SkillGapTemperature)
	case contractx.AgentJobFinder:
		override(c.JobFinderModel, c.JobFinderTemperature)
	case contractx.AgentCourseRecommender:
		override(c.CourseRecommenderModel, c.CourseRecommenderTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return chatmodelx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}
