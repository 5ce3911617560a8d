package output

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/careermate/agent/contract"
)

const validSkillGap = `{
	"careerGoal": "Data Scientist",
	"currentSkills": ["Python"],
	"missingSkills": ["Pandas", "SQL"],
	"suggestedSkillsToLearn": ["Pandas"],
	"reasoning": "needed",
	"confidence": 0.9
}`

const validCourse = `{
	"courseTitle": "Python for Everybody",
	"platform": "Coursera",
	"durationWeeks": 8,
	"difficultyLevel": "beginner",
	"link": "https://coursera.org/python-for-everybody",
	"topicsCovered": ["Python basics"],
	"recommendationReason": "Best for beginners starting Python."
}`

func TestValidateSkillGapDropsExtraFields(t *testing.T) {
	t.Parallel()

	res, err := NewValidator(2).Validate(validSkillGap, SkillGapSchema)
	require.NoError(t, err)
	require.NoError(t, res.Validate())
	require.Equal(t, contractx.ResultSkillGap, res.Kind)
	assert.Equal(t, "Data Scientist", res.SkillGap.CareerGoal)
	assert.Equal(t, []string{"Pandas", "SQL"}, res.SkillGap.MissingSkills)
}

func TestValidateRejectsMissingRequiredField(t *testing.T) {
	t.Parallel()

	_, err := NewValidator(2).Validate(`{"careerGoal":"x","currentSkills":[],"missingSkills":[],"suggestedSkillsToLearn":[]}`, SkillGapSchema)
	require.ErrorIs(t, err, contractx.ErrValidation)

	var violation *Violation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, "reasoning", violation.Field)
	assert.Equal(t, "is required", violation.Reason)
}

func TestValidateFieldShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate string
		schema    Schema
		field     string
	}{
		{
			name:      "string list with number",
			candidate: `{"careerGoal":"x","currentSkills":["a",1],"missingSkills":[],"suggestedSkillsToLearn":[],"reasoning":"r"}`,
			schema:    SkillGapSchema,
			field:     "currentSkills",
		},
		{
			name:      "string given as list",
			candidate: `{"careerGoal":["x"],"currentSkills":[],"missingSkills":[],"suggestedSkillsToLearn":[],"reasoning":"r"}`,
			schema:    SkillGapSchema,
			field:     "careerGoal",
		},
		{
			name:      "optional string wrong type",
			candidate: `{"jobTitle":"a","company":"b","location":"c","salaryRange":5,"description":"d","applicationLink":"e","relevanceReason":"f"}`,
			schema:    JobListingSchema,
			field:     "salaryRange",
		},
		{
			name:      "integer with fraction",
			candidate: strings.Replace(validCourse, `"durationWeeks": 8`, `"durationWeeks": 8.5`, 1),
			schema:    CourseRecommendationSchema,
			field:     "durationWeeks",
		},
		{
			name:      "integer as string",
			candidate: strings.Replace(validCourse, `"durationWeeks": 8`, `"durationWeeks": "8"`, 1),
			schema:    CourseRecommendationSchema,
			field:     "durationWeeks",
		},
		{
			name:      "integer beyond int64",
			candidate: strings.Replace(validCourse, `"durationWeeks": 8`, `"durationWeeks": 1e20`, 1),
			schema:    CourseRecommendationSchema,
			field:     "durationWeeks",
		},
		{
			name:      "negative integer",
			candidate: strings.Replace(validCourse, `"durationWeeks": 8`, `"durationWeeks": -4`, 1),
			schema:    CourseRecommendationSchema,
			field:     "durationWeeks",
		},
		{
			name:      "enum outside set",
			candidate: strings.Replace(validCourse, `"beginner"`, `"Expert"`, 1),
			schema:    CourseRecommendationSchema,
			field:     "difficultyLevel",
		},
		{
			name:      "list item path",
			candidate: `[` + validCourse + `, {"courseTitle":"x"}]`,
			schema:    CourseRecommendationListSchema,
			field:     "[1].platform",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewValidator(2).Validate(tt.candidate, tt.schema)
			var violation *Violation
			require.True(t, errors.As(err, &violation), "expected violation, got %v", err)
			assert.Equal(t, tt.field, violation.Field)
		})
	}
}

func TestValidateJobListingOptionalSalary(t *testing.T) {
	t.Parallel()

	res, err := NewValidator(0).Validate(
		`{"jobTitle":"a","company":"b","location":"Remote","salaryRange":null,"description":"d","applicationLink":"e","relevanceReason":"f"}`,
		JobListingSchema,
	)
	require.NoError(t, err)
	require.Equal(t, contractx.ResultJobListing, res.Kind)
	assert.Empty(t, res.JobListing.SalaryRange)
	assert.Equal(t, "Remote", res.JobListing.Location)
}

func TestValidateCourseEnumIsNormalised(t *testing.T) {
	t.Parallel()

	res, err := NewValidator(2).Validate("```json\n"+validCourse+"\n```", CourseRecommendationSchema)
	require.NoError(t, err)
	require.Equal(t, contractx.ResultCourseRecommendation, res.Kind)
	assert.Equal(t, "Beginner", res.Course.DifficultyLevel)
	assert.Equal(t, 8, res.Course.DurationWeeks)
}

func TestValidateCourseRecommendationsShapes(t *testing.T) {
	t.Parallel()

	v := NewValidator(2)

	single, err := v.Validate(validCourse, CourseRecommendationsSchema)
	require.NoError(t, err)
	assert.Equal(t, contractx.ResultCourseRecommendation, single.Kind)

	list, err := v.Validate(`[`+validCourse+`,`+validCourse+`]`, CourseRecommendationsSchema)
	require.NoError(t, err)
	require.Equal(t, contractx.ResultCourseRecommendationList, list.Kind)
	assert.Len(t, list.Courses, 2)

	wrapped, err := v.Validate(`{"courses":[`+validCourse+`]}`, CourseRecommendationListSchema)
	require.NoError(t, err)
	assert.Len(t, wrapped.Courses, 1)

	empty, err := v.Validate(`[]`, CourseRecommendationListSchema)
	require.NoError(t, err)
	require.NoError(t, empty.Validate())
	assert.Empty(t, empty.Courses)
}

func TestValidateShapeMismatch(t *testing.T) {
	t.Parallel()

	_, err := NewValidator(2).Validate(`[`+validCourse+`]`, CourseRecommendationSchema)
	require.ErrorIs(t, err, contractx.ErrValidation)

	_, err = NewValidator(2).Validate(`not json at all`, SkillGapSchema)
	require.ErrorIs(t, err, contractx.ErrValidation)
}

func TestValidatePlainText(t *testing.T) {
	t.Parallel()

	res, err := NewValidator(2).Validate("  Hi there  ", PlainTextSchema)
	require.NoError(t, err)
	require.Equal(t, contractx.ResultPlainText, res.Kind)
	assert.Equal(t, "Hi there", res.PlainText.Text)

	_, err = NewValidator(2).Validate("   ", PlainTextSchema)
	require.ErrorIs(t, err, contractx.ErrValidation)
}

func TestValidateWithRetryExhaustsExactlyBound(t *testing.T) {
	t.Parallel()

	missingReasoning := `{"careerGoal":"x","currentSkills":[],"missingSkills":[],"suggestedSkillsToLearn":[]}`

	for _, bound := range []int{0, 1, 2, 4} {
		calls := 0
		regenerate := func(ctx context.Context, previous string, violation *Violation) (string, error) {
			calls++
			assert.Contains(t, violation.Correction(), "reasoning")
			return missingReasoning, nil
		}

		_, retries, err := NewValidator(bound).ValidateWithRetry(context.Background(), missingReasoning, SkillGapSchema, regenerate)
		require.ErrorIs(t, err, contractx.ErrValidation)
		assert.Equal(t, bound, retries)
		assert.Equal(t, bound, calls)
	}
}

func TestValidateWithRetryRecovers(t *testing.T) {
	t.Parallel()

	calls := 0
	regenerate := func(ctx context.Context, previous string, violation *Violation) (string, error) {
		calls++
		return validSkillGap, nil
	}

	res, retries, err := NewValidator(2).ValidateWithRetry(context.Background(), `{}`, SkillGapSchema, regenerate)
	require.NoError(t, err)
	assert.Equal(t, 1, retries)
	assert.Equal(t, 1, calls)
	assert.Equal(t, contractx.ResultSkillGap, res.Kind)
}

func TestValidateWithRetryPropagatesEngineError(t *testing.T) {
	t.Parallel()

	engineErr := errors.New("engine down")
	regenerate := func(ctx context.Context, previous string, violation *Violation) (string, error) {
		return "", engineErr
	}

	_, _, err := NewValidator(2).ValidateWithRetry(context.Background(), `{}`, SkillGapSchema, regenerate)
	require.ErrorIs(t, err, engineErr)
	assert.NotErrorIs(t, err, contractx.ErrValidation)
}

func TestNewValidatorDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultMaxRetries, NewValidator(-1).MaxRetries())
	assert.Equal(t, 0, NewValidator(0).MaxRetries())
}

func TestSchemaDescribe(t *testing.T) {
	t.Parallel()

	desc := CourseRecommendationsSchema.Describe()
	assert.Contains(t, desc, "durationWeeks: integer")
	assert.Contains(t, desc, "one of Beginner, Intermediate, Advanced")
	assert.Equal(t, "Respond in plain text.", PlainTextSchema.Describe())
}
