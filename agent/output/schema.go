package output

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/careermate/agent/contract"
)

type FieldKind string

const (
	KindString         FieldKind = "string"
	KindStringList     FieldKind = "string_list"
	KindOptionalString FieldKind = "optional_string"
	KindInteger        FieldKind = "integer"
	KindEnum           FieldKind = "enum"
)

type Field struct {
	Name string
	Kind FieldKind
	Enum []string
}

type Shape string

const (
	ShapeObject       Shape = "object"
	ShapeList         Shape = "list"
	ShapeObjectOrList Shape = "object_or_list"
	ShapeText         Shape = "text"
)

// Schema is the declared output contract of an agent. Variant is the result
// kind for an object candidate, ListVariant for an array candidate.
type Schema struct {
	Name        string
	Shape       Shape
	Fields      []Field
	Variant     contractx.ResultKind
	ListVariant contractx.ResultKind
}

var DifficultyLevels = []string{"Beginner", "Intermediate", "Advanced"}

var skillGapFields = []Field{
	{Name: "careerGoal", Kind: KindString},
	{Name: "currentSkills", Kind: KindStringList},
	{Name: "missingSkills", Kind: KindStringList},
	{Name: "suggestedSkillsToLearn", Kind: KindStringList},
	{Name: "reasoning", Kind: KindString},
}

var jobListingFields = []Field{
	{Name: "jobTitle", Kind: KindString},
	{Name: "company", Kind: KindString},
	{Name: "location", Kind: KindString},
	{Name: "salaryRange", Kind: KindOptionalString},
	{Name: "description", Kind: KindString},
	{Name: "applicationLink", Kind: KindString},
	{Name: "relevanceReason", Kind: KindString},
}

var courseFields = []Field{
	{Name: "courseTitle", Kind: KindString},
	{Name: "platform", Kind: KindString},
	{Name: "durationWeeks", Kind: KindInteger},
	{Name: "difficultyLevel", Kind: KindEnum, Enum: DifficultyLevels},
	{Name: "link", Kind: KindString},
	{Name: "topicsCovered", Kind: KindStringList},
	{Name: "recommendationReason", Kind: KindString},
}

var (
	SkillGapSchema = Schema{
		Name:    "SkillGap",
		Shape:   ShapeObject,
		Fields:  skillGapFields,
		Variant: contractx.ResultSkillGap,
	}
	JobListingSchema = Schema{
		Name:    "JobListing",
		Shape:   ShapeObject,
		Fields:  jobListingFields,
		Variant: contractx.ResultJobListing,
	}
	CourseRecommendationSchema = Schema{
		Name:    "CourseRecommendation",
		Shape:   ShapeObject,
		Fields:  courseFields,
		Variant: contractx.ResultCourseRecommendation,
	}
	CourseRecommendationListSchema = Schema{
		Name:        "CourseRecommendationList",
		Shape:       ShapeList,
		Fields:      courseFields,
		ListVariant: contractx.ResultCourseRecommendationList,
	}
	// CourseRecommendationsSchema accepts one course object or a list of them.
	CourseRecommendationsSchema = Schema{
		Name:        "CourseRecommendations",
		Shape:       ShapeObjectOrList,
		Fields:      courseFields,
		Variant:     contractx.ResultCourseRecommendation,
		ListVariant: contractx.ResultCourseRecommendationList,
	}
	PlainTextSchema = Schema{
		Name:    "PlainText",
		Shape:   ShapeText,
		Variant: contractx.ResultPlainText,
	}
)

// Describe renders the schema as instructions for the generation engine.
func (s Schema) Describe() string {
	var b strings.Builder
	switch s.Shape {
	case ShapeText:
		return "Respond in plain text."
	case ShapeObject:
		b.WriteString("Respond with only a JSON object, no prose and no code fence, with these fields:\n")
	case ShapeList:
		b.WriteString("Respond with only a JSON array, no prose and no code fence, where every item has these fields:\n")
	case ShapeObjectOrList:
		b.WriteString("Respond with only JSON, no prose and no code fence: a single object when there is one item, " +
			"otherwise an array of objects. Every object has these fields:\n")
	}
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.describe())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f Field) describe() string {
	switch f.Kind {
	case KindString:
		return "string (required)"
	case KindStringList:
		return "array of strings (required, may be empty)"
	case KindOptionalString:
		return "string or null (optional)"
	case KindInteger:
		return "integer (required)"
	case KindEnum:
		return "one of " + strings.Join(f.Enum, ", ") + " (required)"
	default:
		return string(f.Kind)
	}
}
