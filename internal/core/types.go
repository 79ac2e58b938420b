package core

import "standcore/pkg/domain"

type (
	Status               = domain.Status
	Category             = domain.Category
	Provenance           = domain.Provenance
	StemObservation      = domain.StemObservation
	TaggedIndividual     = domain.TaggedIndividual
	AllometryRecord      = domain.AllometryRecord
	SurveyEvent          = domain.SurveyEvent
	IndividualYearRecord = domain.IndividualYearRecord
	PlotYearRecord       = domain.PlotYearRecord
	AnnualSeriesPoint    = domain.AnnualSeriesPoint
	Exception            = domain.Exception
	Issue                = domain.Issue
	Report               = domain.Report
	SiteResult           = domain.SiteResult
	RunRecord            = domain.RunRecord
	RunStore             = domain.RunStore
)

const (
	StatusAlive        = domain.StatusAlive
	StatusDead         = domain.StatusDead
	StatusRemoved      = domain.StatusRemoved
	StatusDisqualified = domain.StatusDisqualified
)

const (
	CategoryTree       = domain.CategoryTree
	CategorySmallWoody = domain.CategorySmallWoody
	CategoryExcluded   = domain.CategoryExcluded
)

const (
	ProvenanceOriginal           = domain.ProvenanceOriginal
	ProvenanceFilled             = domain.ProvenanceFilled
	ProvenanceOutlier            = domain.ProvenanceOutlier
	ProvenanceZeroedDead         = domain.ProvenanceZeroedDead
	ProvenanceZeroedRemoved      = domain.ProvenanceZeroedRemoved
	ProvenanceZeroedDisqualified = domain.ProvenanceZeroedDisqualified
)

// SiteInput bundles the four input tables for one site. Ingestion and
// validation of file formats happen upstream; the pipeline consumes
// materialized records only.
type SiteInput struct {
	SiteID       string
	Observations []StemObservation
	Individuals  []TaggedIndividual
	Allometry    []AllometryRecord
	SurveyEvents []SurveyEvent
}
