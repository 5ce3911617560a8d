package capability

import (
	"fmt"
	"sort"

	contractx "github.com/tanpawarit/careermate/agent/contract"
)

const (
	ToolMissingSkills    = "get_missing_skills"
	ToolFindJobs         = "find_jobs"
	ToolRecommendCourses = "recommend_courses"
)

var _ contractx.CapabilityInvoker = (*Registry)(nil)

// Registry is immutable once built and safe to share across turns.
type Registry struct {
	byName map[string]*Capability
}

func NewRegistry() (*Registry, error) {
	data, err := loadDataset()
	if err != nil {
		return nil, err
	}

	r := &Registry{byName: make(map[string]*Capability, 3)}
	for _, c := range []*Capability{
		newMissingSkills(data.requirements),
		newFindJobs(data.jobs),
		newRecommendCourses(data.courses),
	} {
		if _, dup := r.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate capability %q", c.Name)
		}
		r.byName[c.Name] = c
	}
	return r, nil
}

func MustNewRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Get(name string) (*Capability, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// List returns capabilities sorted by name.
func (r *Registry) List() []*Capability {
	out := make([]*Capability, 0, len(r.byName))
	for _, c := range r.byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke validates args against the capability's schema and runs it.
// Unknown argument fields are ignored.
func (r *Registry) Invoke(name string, args map[string]any) (any, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown capability %q", contractx.ErrArgument, name)
	}
	bound, err := c.bind(args)
	if err != nil {
		return nil, err
	}
	return c.fn(bound)
}
