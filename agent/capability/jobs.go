package capability

import contractx "github.com/tanpawarit/careermate/agent/contract"

const defaultJobLocation = "Remote"

func newFindJobs(catalog []jobEntry) *Capability {
	return &Capability{
		Name:        ToolFindJobs,
		Description: "Find job listings based on the career goal and location.",
		Args: []Arg{
			{Name: "careerGoal", Type: ArgString, Required: true, Desc: "Target role the user is looking for"},
			{Name: "location", Type: ArgString, Default: defaultJobLocation, Desc: "Preferred location, defaults to Remote"},
		},
		fn: func(args Args) (any, error) {
			return findJobs(catalog, args.String("location")), nil
		},
	}
}

// findJobs returns the whole catalog; careerGoal is accepted but does not
// filter the listings.
func findJobs(catalog []jobEntry, location string) []contractx.JobListing {
	out := make([]contractx.JobListing, 0, len(catalog))
	for _, j := range catalog {
		out = append(out, contractx.JobListing{
			JobTitle:        j.JobTitle,
			Company:         j.Company,
			Location:        location,
			SalaryRange:     j.SalaryRange,
			Description:     j.Description,
			ApplicationLink: j.ApplicationLink,
			RelevanceReason: j.RelevanceReason,
		})
	}
	return out
}
