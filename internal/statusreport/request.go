// Package statusreport assembles the branded weekly status report deck.
package statusreport

// Rendering caps per list.
const (
	MaxAccomplishments = 5
	MaxPriorities      = 5
	MaxRisks           = 3
	MaxMilestones      = 6
	MaxUpcoming        = 3
)

// ReportRequest is the input of a single deck build. The jsonschema tags
// describe the arguments of the published tool; fields without omitempty
// are required.
type ReportRequest struct {
	ProjectName        string              `json:"project_name" jsonschema:"Name of the project"`
	PeriodLabel        string              `json:"period_label" jsonschema:"Report period (e.g., 'Week Ending Dec 13, 2025')"`
	Accomplishments    []string            `json:"accomplishments" jsonschema:"List of key accomplishments from last period"`
	Priorities         []Priority          `json:"priorities,omitempty" jsonschema:"List of top priorities with description and owner"`
	Risks              []Risk              `json:"risks,omitempty" jsonschema:"List of risks/issues with details"`
	Milestones         []Milestone         `json:"milestones,omitempty" jsonschema:"List of key milestones"`
	UpcomingMilestones []UpcomingMilestone `json:"upcoming_milestones,omitempty" jsonschema:"List of upcoming milestones"`
	ContactInfo        string              `json:"contact_info,omitempty" jsonschema:"Contact information for thank you slide"`
	OutputPath         string              `json:"output_path,omitempty" jsonschema:"Path to save the presentation"`
}

// Priority is a top priority for the next period.
type Priority struct {
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
}

// Risk is a risk, issue or action item.
type Risk struct {
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	TargetDate  string `json:"target_date,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Milestone is a tracked milestone.
type Milestone struct {
	Description string `json:"description,omitempty"`
	TargetDate  string `json:"target_date,omitempty"`
	Status      string `json:"status,omitempty"`
}

// UpcomingMilestone is a milestone due after the reporting period.
type UpcomingMilestone struct {
	Description string `json:"description,omitempty"`
	TargetDate  string `json:"target_date,omitempty"`
	Owner       string `json:"owner,omitempty"`
}

// Capped returns a copy of the request with every list truncated to its cap.
func (r ReportRequest) Capped() ReportRequest {
	r.Accomplishments = capped(r.Accomplishments, MaxAccomplishments)
	r.Priorities = capped(r.Priorities, MaxPriorities)
	r.Risks = capped(r.Risks, MaxRisks)
	r.Milestones = capped(r.Milestones, MaxMilestones)
	r.UpcomingMilestones = capped(r.UpcomingMilestones, MaxUpcoming)
	return r
}

func capped[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
