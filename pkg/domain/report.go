package domain

// IssueKind identifies the class of a data-contract violation.
type IssueKind string

// Issue kinds recorded during a run.
const (
	// IssueUnknownStatus flags a raw status string outside the closed vocabulary.
	IssueUnknownStatus IssueKind = "unknown_status"
	// IssueUnknownGrowthForm flags a growth-form label outside the closed vocabulary.
	IssueUnknownGrowthForm IssueKind = "unknown_growth_form"
	// IssueUnsurveyedPlot flags observations referencing a plot with no survey events.
	IssueUnsurveyedPlot IssueKind = "unsurveyed_plot"
)

// Issue reports one data-contract violation. The offending individual is
// skipped and the run continues; issues are never silently dropped.
type Issue struct {
	Kind         IssueKind `json:"kind"`
	PlotID       string    `json:"plot_id"`
	IndividualID string    `json:"individual_id"`
	Message      string    `json:"message"`
}

// Report aggregates issues from a run.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Add appends a single issue.
func (r *Report) Add(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// Merge appends issues from another report.
func (r *Report) Merge(other Report) {
	if len(other.Issues) == 0 {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
}

// HasIssues returns true when any violation was recorded.
func (r Report) HasIssues() bool {
	return len(r.Issues) > 0
}
