package domain

import (
	"context"
	"time"
)

// SiteResult is the complete output of one pipeline run over one site: the
// reconciled tables, the audit exceptions, and the issue report.
type SiteResult struct {
	SiteID          string                 `json:"site_id"`
	Methods         []string               `json:"methods"`
	IndividualYears []IndividualYearRecord `json:"individual_years"`
	PlotYears       []PlotYearRecord       `json:"plot_years"`
	AnnualSeries    []AnnualSeriesPoint    `json:"annual_series"`
	Exceptions      []Exception            `json:"exceptions"`
	Report          Report                 `json:"report"`
}

// RunRecord wraps a site result with run identity and timing metadata.
type RunRecord struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Result    SiteResult `json:"result"`
}

// RunStore is a minimal abstraction over durable run-record backends. It
// mirrors the subset of store capabilities used directly by higher layers.
type RunStore interface {
	SaveRun(ctx context.Context, record RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
	Close() error
}
