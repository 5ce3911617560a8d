// Package render prints structured results for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	contractx "github.com/tanpawarit/careermate/agent/contract"
)

const (
	HeadingSkillGap = "SKILL GAP ANALYSIS"
	HeadingJob      = "JOB RECOMMENDATION"
	HeadingCourse   = "COURSE RECOMMENDATION"
	HeadingCourses  = "MULTIPLE COURSE RECOMMENDATIONS"
)

type Renderer struct {
	w io.Writer

	titleStyle lipgloss.Style
	labelStyle lipgloss.Style
	dimStyle   lipgloss.Style
	errorStyle lipgloss.Style
}

func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		w:          w,
		titleStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		labelStyle: r.NewStyle().Foreground(lipgloss.Color("243")),
		dimStyle:   r.NewStyle().Foreground(lipgloss.Color("241")),
		errorStyle: r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Result writes the block for the populated variant of res.
func (r *Renderer) Result(res contractx.StructuredResult) error {
	var b strings.Builder
	switch res.Kind {
	case contractx.ResultSkillGap:
		r.skillGap(&b, res.SkillGap)
	case contractx.ResultJobListing:
		r.job(&b, res.JobListing)
	case contractx.ResultCourseRecommendation:
		r.course(&b, res.Course)
	case contractx.ResultCourseRecommendationList:
		r.courses(&b, res.Courses)
	case contractx.ResultPlainText:
		b.WriteString(res.PlainText.Text)
		b.WriteString("\n")
	default:
		return fmt.Errorf("render: unknown result kind=%q", res.Kind)
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) Line(text string) error {
	_, err := fmt.Fprintln(r.w, text)
	return err
}

func (r *Renderer) Dim(text string) error {
	_, err := fmt.Fprintln(r.w, r.dimStyle.Render(text))
	return err
}

func (r *Renderer) Error(text string) error {
	_, err := fmt.Fprintln(r.w, r.errorStyle.Render(text))
	return err
}

func (r *Renderer) heading(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(r.titleStyle.Render(title))
	b.WriteString("\n")
}

func (r *Renderer) field(b *strings.Builder, indent, label, value string) {
	fmt.Fprintf(b, "%s%s %s\n", indent, r.labelStyle.Render(label+":"), value)
}

func (r *Renderer) skillGap(b *strings.Builder, v *contractx.SkillGap) {
	r.heading(b, HeadingSkillGap)
	r.field(b, "", "Career Goal", v.CareerGoal)
	r.field(b, "", "Current Skills", strings.Join(v.CurrentSkills, ", "))
	r.field(b, "", "Missing Skills", strings.Join(v.MissingSkills, ", "))
	r.field(b, "", "Top Skills to Learn", strings.Join(v.SuggestedSkillsToLearn, ", "))
	b.WriteString("\n")
	r.field(b, "", "Reasoning", v.Reasoning)
}

func (r *Renderer) job(b *strings.Builder, v *contractx.JobListing) {
	r.heading(b, HeadingJob)
	r.field(b, "", "Job Title", v.JobTitle)
	r.field(b, "", "Company", v.Company)
	r.field(b, "", "Location", v.Location)
	if strings.TrimSpace(v.SalaryRange) != "" {
		r.field(b, "", "Salary", v.SalaryRange)
	}
	r.field(b, "", "Description", v.Description)
	r.field(b, "", "Apply here", v.ApplicationLink)
	b.WriteString("\n")
	r.field(b, "", "Why this job", v.RelevanceReason)
}

func (r *Renderer) course(b *strings.Builder, v *contractx.CourseRecommendation) {
	r.heading(b, HeadingCourse)
	r.field(b, "", "Course Title", v.CourseTitle)
	r.field(b, "", "Platform", v.Platform)
	r.field(b, "", "Duration", fmt.Sprintf("%d weeks", v.DurationWeeks))
	r.field(b, "", "Difficulty Level", v.DifficultyLevel)
	r.field(b, "", "Link", v.Link)
	b.WriteString(r.labelStyle.Render("Topics Covered:"))
	b.WriteString("\n")
	for i, topic := range v.TopicsCovered {
		fmt.Fprintf(b, "  %d. %s\n", i+1, topic)
	}
	b.WriteString("\n")
	r.field(b, "", "Why this course", v.RecommendationReason)
}

func (r *Renderer) courses(b *strings.Builder, list []contractx.CourseRecommendation) {
	r.heading(b, HeadingCourses)
	if len(list) == 0 {
		b.WriteString(r.dimStyle.Render("No matching courses found."))
		b.WriteString("\n")
		return
	}
	for i, c := range list {
		fmt.Fprintf(b, "\nCourse %d: %s\n", i+1, c.CourseTitle)
		r.field(b, "  ", "Platform", c.Platform)
		r.field(b, "  ", "Duration", fmt.Sprintf("%d weeks", c.DurationWeeks))
		r.field(b, "  ", "Difficulty", c.DifficultyLevel)
		r.field(b, "  ", "Link", c.Link)
		r.field(b, "  ", "Topics", strings.Join(c.TopicsCovered, ", "))
		r.field(b, "  ", "Reason", c.RecommendationReason)
	}
}
