package contract

import "fmt"

type SkillGap struct {
	CareerGoal             string   `json:"careerGoal"`
	CurrentSkills          []string `json:"currentSkills"`
	MissingSkills          []string `json:"missingSkills"`
	SuggestedSkillsToLearn []string `json:"suggestedSkillsToLearn"`
	Reasoning              string   `json:"reasoning"`
}

type JobListing struct {
	JobTitle        string `json:"jobTitle"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	SalaryRange     string `json:"salaryRange,omitempty"`
	Description     string `json:"description"`
	ApplicationLink string `json:"applicationLink"`
	RelevanceReason string `json:"relevanceReason"`
}

type CourseRecommendation struct {
	CourseTitle          string   `json:"courseTitle"`
	Platform             string   `json:"platform"`
	DurationWeeks        int      `json:"durationWeeks"`
	DifficultyLevel      string   `json:"difficultyLevel"`
	Link                 string   `json:"link"`
	TopicsCovered        []string `json:"topicsCovered"`
	RecommendationReason string   `json:"recommendationReason"`
}

type PlainText struct {
	Text string `json:"text"`
}

type ResultKind string

const (
	ResultSkillGap                 ResultKind = "skill_gap"
	ResultJobListing               ResultKind = "job_listing"
	ResultCourseRecommendation     ResultKind = "course_recommendation"
	ResultCourseRecommendationList ResultKind = "course_recommendation_list"
	ResultPlainText                ResultKind = "plain_text"
)

// StructuredResult is the typed answer of one turn. Use the New*Result
// constructors; exactly one variant field is populated.
type StructuredResult struct {
	Kind       ResultKind
	SkillGap   *SkillGap
	JobListing *JobListing
	Course     *CourseRecommendation
	Courses    []CourseRecommendation
	PlainText  *PlainText
}

func NewSkillGapResult(v SkillGap) StructuredResult {
	return StructuredResult{Kind: ResultSkillGap, SkillGap: &v}
}

func NewJobListingResult(v JobListing) StructuredResult {
	return StructuredResult{Kind: ResultJobListing, JobListing: &v}
}

func NewCourseResult(v CourseRecommendation) StructuredResult {
	return StructuredResult{Kind: ResultCourseRecommendation, Course: &v}
}

func NewCourseListResult(v []CourseRecommendation) StructuredResult {
	if v == nil {
		v = []CourseRecommendation{}
	}
	return StructuredResult{Kind: ResultCourseRecommendationList, Courses: v}
}

func NewPlainTextResult(text string) StructuredResult {
	return StructuredResult{Kind: ResultPlainText, PlainText: &PlainText{Text: text}}
}

func (r StructuredResult) Validate() error {
	populated := 0
	if r.SkillGap != nil {
		populated++
	}
	if r.JobListing != nil {
		populated++
	}
	if r.Course != nil {
		populated++
	}
	if r.Courses != nil {
		populated++
	}
	if r.PlainText != nil {
		populated++
	}
	if populated != 1 {
		return fmt.Errorf("%w: result must populate exactly one variant, got %d", ErrValidation, populated)
	}

	var ok bool
	switch r.Kind {
	case ResultSkillGap:
		ok = r.SkillGap != nil
	case ResultJobListing:
		ok = r.JobListing != nil
	case ResultCourseRecommendation:
		ok = r.Course != nil
	case ResultCourseRecommendationList:
		ok = r.Courses != nil
	case ResultPlainText:
		ok = r.PlainText != nil
	default:
		return fmt.Errorf("%w: unknown result kind=%q", ErrValidation, r.Kind)
	}
	if !ok {
		return fmt.Errorf("%w: result kind=%s does not match populated variant", ErrValidation, r.Kind)
	}
	return nil
}
