// Package domain defines the core persistent entities, closed vocabularies,
// and issue aggregation primitives used by standcore.
package domain

import "encoding/json"

// StemObservation is one field measurement of one stem in one survey year.
type StemObservation struct {
	IndividualID string   `json:"individual_id"`
	StemID       string   `json:"stem_id"`
	PlotID       string   `json:"plot_id"`
	Year         int      `json:"year"`
	Diameter     float64  `json:"diameter_cm"` // NaN when not measured
	RawStatus    *string  `json:"raw_status"`  // nil when no status was recorded
	GrowthForm   string   `json:"growth_form"`
}

// TaggedIndividual is the roster entry for a tagged organism. The roster is a
// superset of the observation table: an individual can be tagged and never
// measured.
type TaggedIndividual struct {
	IndividualID   string `json:"individual_id"`
	PlotID         string `json:"plot_id"`
	ScientificName string `json:"scientific_name"`
	TaxonID        string `json:"taxon_id"`
	Genus          string `json:"genus"`
	Family         string `json:"family"`
}

// AllometryRecord is one biomass estimate for one individual in one year
// under one named allometric method. Methods are opaque identifiers.
type AllometryRecord struct {
	IndividualID string  `json:"individual_id"`
	Year         int     `json:"year"`
	Method       string  `json:"method"`
	BiomassKg    float64 `json:"biomass_kg"` // NaN when the method produced no estimate
}

// SurveyEvent records that a plot was surveyed in a year, with the sampled
// areas used as density denominators. The survey-event table is the
// authoritative per-plot year grid; individual presence never defines it.
type SurveyEvent struct {
	PlotID                  string  `json:"plot_id"`
	Year                    int     `json:"year"`
	SampledAreaTreesM2      float64 `json:"sampled_area_trees_m2"`       // NaN when unknown
	SampledAreaSmallWoodyM2 float64 `json:"sampled_area_small_woody_m2"` // NaN when unknown
}

// IndividualYearRecord is the reconciled state of one individual in one
// surveyed plot-year: aggregated diameter, resolved status, category,
// per-method biomass with provenance, and per-method growth metrics.
type IndividualYearRecord struct {
	IndividualID   string             `json:"individual_id"`
	PlotID         string             `json:"plot_id"`
	Year           int                `json:"year"`
	Diameter       float64            `json:"diameter_cm"` // max across stems; NaN when unmeasured
	GrowthForm     string             `json:"growth_form"`
	Category       Category           `json:"category"`
	Status         Status             `json:"status"`
	HasObservation bool               `json:"has_observation"`
	Provenance     Provenance         `json:"provenance"`
	BiomassKg      map[string]float64 `json:"biomass_kg"`        // method -> kg, NaN = missing
	GrowthKgPerYr  map[string]float64 `json:"growth_kg_per_yr"`  // method -> year-over-year rate
	TrendKgPerYr   map[string]float64 `json:"trend_kg_per_yr"`   // method -> fitted slope
}

// PlotYearRecord is the aggregated state of one plot in one surveyed year:
// per-method area-normalized density by category, totals, growth metrics,
// and bookkeeping counts.
type PlotYearRecord struct {
	PlotID                  string             `json:"plot_id"`
	Year                    int                `json:"year"`
	TreeDensity             map[string]float64 `json:"tree_density_mg_ha"`        // method -> Mg/ha
	SmallWoodyDensity       map[string]float64 `json:"small_woody_density_mg_ha"` // method -> Mg/ha
	TotalDensity            map[string]float64 `json:"total_density_mg_ha"`       // method -> Mg/ha
	TotalGrowth             map[string]float64 `json:"total_growth_mg_ha_yr"`     // method -> year-over-year rate
	TotalTrend              map[string]float64 `json:"total_trend_mg_ha_yr"`      // method -> fitted slope
	TreeCount               int                `json:"tree_count"`
	SmallWoodyCount         int                `json:"small_woody_count"`
	SmallWoodyMeasuredCount int                `json:"small_woody_measured_count"`
	FilledCount             int                `json:"filled_count"`
	RemovedCount            int                `json:"removed_count"`
	DisqualifiedCount       int                `json:"disqualified_count"`
	UnaccountedCount        int                `json:"unaccounted_count"`
}

// AnnualSeriesPoint is one year of the dense interpolated density series for
// one plot under one method. Change is the year-over-year delta of the dense
// series, NaN on the first year.
type AnnualSeriesPoint struct {
	PlotID  string  `json:"plot_id"`
	Method  string  `json:"method"`
	Year    int     `json:"year"`
	Density float64 `json:"density_mg_ha"`
	Change  float64 `json:"change_mg_ha"`
}

// Exception flags a tagged tree that the pipeline could not account for.
type Exception struct {
	PlotID         string          `json:"plot_id"`
	IndividualID   string          `json:"individual_id"`
	ScientificName string          `json:"scientific_name"`
	TaxonID        string          `json:"taxon_id"`
	Reason         ExceptionReason `json:"reason"`
	Detail         string          `json:"detail"`
}

// encoding/json rejects NaN, so every NaN-carrying entity serialises missing
// values as null via the alias types below.

func nullableFloat(v float64) *float64 {
	if IsMissing(v) {
		return nil
	}
	return &v
}

func floatOrMissing(p *float64) float64 {
	if p == nil {
		return Missing()
	}
	return *p
}

func nullableMap(m map[string]float64) map[string]*float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]*float64, len(m))
	for k, v := range m {
		out[k] = nullableFloat(v)
	}
	return out
}

func mapOrMissing(m map[string]*float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, p := range m {
		out[k] = floatOrMissing(p)
	}
	return out
}

type stemObservationAlias struct {
	IndividualID string   `json:"individual_id"`
	StemID       string   `json:"stem_id"`
	PlotID       string   `json:"plot_id"`
	Year         int      `json:"year"`
	Diameter     *float64 `json:"diameter_cm"`
	RawStatus    *string  `json:"raw_status"`
	GrowthForm   string   `json:"growth_form"`
}

// MarshalJSON serialises a missing diameter as null.
func (o StemObservation) MarshalJSON() ([]byte, error) {
	return json.Marshal(stemObservationAlias{
		IndividualID: o.IndividualID,
		StemID:       o.StemID,
		PlotID:       o.PlotID,
		Year:         o.Year,
		Diameter:     nullableFloat(o.Diameter),
		RawStatus:    o.RawStatus,
		GrowthForm:   o.GrowthForm,
	})
}

// UnmarshalJSON hydrates a null diameter back to the missing marker.
func (o *StemObservation) UnmarshalJSON(data []byte) error {
	var aux stemObservationAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*o = StemObservation{
		IndividualID: aux.IndividualID,
		StemID:       aux.StemID,
		PlotID:       aux.PlotID,
		Year:         aux.Year,
		Diameter:     floatOrMissing(aux.Diameter),
		RawStatus:    aux.RawStatus,
		GrowthForm:   aux.GrowthForm,
	}
	return nil
}

type allometryAlias struct {
	IndividualID string   `json:"individual_id"`
	Year         int      `json:"year"`
	Method       string   `json:"method"`
	BiomassKg    *float64 `json:"biomass_kg"`
}

// MarshalJSON serialises a missing biomass estimate as null.
func (a AllometryRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(allometryAlias{
		IndividualID: a.IndividualID,
		Year:         a.Year,
		Method:       a.Method,
		BiomassKg:    nullableFloat(a.BiomassKg),
	})
}

// UnmarshalJSON hydrates a null biomass estimate back to the missing marker.
func (a *AllometryRecord) UnmarshalJSON(data []byte) error {
	var aux allometryAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = AllometryRecord{
		IndividualID: aux.IndividualID,
		Year:         aux.Year,
		Method:       aux.Method,
		BiomassKg:    floatOrMissing(aux.BiomassKg),
	}
	return nil
}

type surveyEventAlias struct {
	PlotID                  string   `json:"plot_id"`
	Year                    int      `json:"year"`
	SampledAreaTreesM2      *float64 `json:"sampled_area_trees_m2"`
	SampledAreaSmallWoodyM2 *float64 `json:"sampled_area_small_woody_m2"`
}

// MarshalJSON serialises missing sampled areas as null.
func (e SurveyEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(surveyEventAlias{
		PlotID:                  e.PlotID,
		Year:                    e.Year,
		SampledAreaTreesM2:      nullableFloat(e.SampledAreaTreesM2),
		SampledAreaSmallWoodyM2: nullableFloat(e.SampledAreaSmallWoodyM2),
	})
}

// UnmarshalJSON hydrates null sampled areas back to the missing marker.
func (e *SurveyEvent) UnmarshalJSON(data []byte) error {
	var aux surveyEventAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = SurveyEvent{
		PlotID:                  aux.PlotID,
		Year:                    aux.Year,
		SampledAreaTreesM2:      floatOrMissing(aux.SampledAreaTreesM2),
		SampledAreaSmallWoodyM2: floatOrMissing(aux.SampledAreaSmallWoodyM2),
	}
	return nil
}

type individualYearAlias struct {
	IndividualID   string              `json:"individual_id"`
	PlotID         string              `json:"plot_id"`
	Year           int                 `json:"year"`
	Diameter       *float64            `json:"diameter_cm"`
	GrowthForm     string              `json:"growth_form"`
	Category       Category            `json:"category"`
	Status         Status              `json:"status"`
	HasObservation bool                `json:"has_observation"`
	Provenance     Provenance          `json:"provenance"`
	BiomassKg      map[string]*float64 `json:"biomass_kg"`
	GrowthKgPerYr  map[string]*float64 `json:"growth_kg_per_yr"`
	TrendKgPerYr   map[string]*float64 `json:"trend_kg_per_yr"`
}

// MarshalJSON serialises missing measurements and estimates as null.
func (r IndividualYearRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(individualYearAlias{
		IndividualID:   r.IndividualID,
		PlotID:         r.PlotID,
		Year:           r.Year,
		Diameter:       nullableFloat(r.Diameter),
		GrowthForm:     r.GrowthForm,
		Category:       r.Category,
		Status:         r.Status,
		HasObservation: r.HasObservation,
		Provenance:     r.Provenance,
		BiomassKg:      nullableMap(r.BiomassKg),
		GrowthKgPerYr:  nullableMap(r.GrowthKgPerYr),
		TrendKgPerYr:   nullableMap(r.TrendKgPerYr),
	})
}

// UnmarshalJSON hydrates nulls back to the missing marker.
func (r *IndividualYearRecord) UnmarshalJSON(data []byte) error {
	var aux individualYearAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = IndividualYearRecord{
		IndividualID:   aux.IndividualID,
		PlotID:         aux.PlotID,
		Year:           aux.Year,
		Diameter:       floatOrMissing(aux.Diameter),
		GrowthForm:     aux.GrowthForm,
		Category:       aux.Category,
		Status:         aux.Status,
		HasObservation: aux.HasObservation,
		Provenance:     aux.Provenance,
		BiomassKg:      mapOrMissing(aux.BiomassKg),
		GrowthKgPerYr:  mapOrMissing(aux.GrowthKgPerYr),
		TrendKgPerYr:   mapOrMissing(aux.TrendKgPerYr),
	}
	return nil
}

type plotYearAlias struct {
	PlotID                  string              `json:"plot_id"`
	Year                    int                 `json:"year"`
	TreeDensity             map[string]*float64 `json:"tree_density_mg_ha"`
	SmallWoodyDensity       map[string]*float64 `json:"small_woody_density_mg_ha"`
	TotalDensity            map[string]*float64 `json:"total_density_mg_ha"`
	TotalGrowth             map[string]*float64 `json:"total_growth_mg_ha_yr"`
	TotalTrend              map[string]*float64 `json:"total_trend_mg_ha_yr"`
	TreeCount               int                 `json:"tree_count"`
	SmallWoodyCount         int                 `json:"small_woody_count"`
	SmallWoodyMeasuredCount int                 `json:"small_woody_measured_count"`
	FilledCount             int                 `json:"filled_count"`
	RemovedCount            int                 `json:"removed_count"`
	DisqualifiedCount       int                 `json:"disqualified_count"`
	UnaccountedCount        int                 `json:"unaccounted_count"`
}

// MarshalJSON serialises inestimable densities as null.
func (r PlotYearRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(plotYearAlias{
		PlotID:                  r.PlotID,
		Year:                    r.Year,
		TreeDensity:             nullableMap(r.TreeDensity),
		SmallWoodyDensity:       nullableMap(r.SmallWoodyDensity),
		TotalDensity:            nullableMap(r.TotalDensity),
		TotalGrowth:             nullableMap(r.TotalGrowth),
		TotalTrend:              nullableMap(r.TotalTrend),
		TreeCount:               r.TreeCount,
		SmallWoodyCount:         r.SmallWoodyCount,
		SmallWoodyMeasuredCount: r.SmallWoodyMeasuredCount,
		FilledCount:             r.FilledCount,
		RemovedCount:            r.RemovedCount,
		DisqualifiedCount:       r.DisqualifiedCount,
		UnaccountedCount:        r.UnaccountedCount,
	})
}

// UnmarshalJSON hydrates nulls back to the missing marker.
func (r *PlotYearRecord) UnmarshalJSON(data []byte) error {
	var aux plotYearAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = PlotYearRecord{
		PlotID:                  aux.PlotID,
		Year:                    aux.Year,
		TreeDensity:             mapOrMissing(aux.TreeDensity),
		SmallWoodyDensity:       mapOrMissing(aux.SmallWoodyDensity),
		TotalDensity:            mapOrMissing(aux.TotalDensity),
		TotalGrowth:             mapOrMissing(aux.TotalGrowth),
		TotalTrend:              mapOrMissing(aux.TotalTrend),
		TreeCount:               aux.TreeCount,
		SmallWoodyCount:         aux.SmallWoodyCount,
		SmallWoodyMeasuredCount: aux.SmallWoodyMeasuredCount,
		FilledCount:             aux.FilledCount,
		RemovedCount:            aux.RemovedCount,
		DisqualifiedCount:       aux.DisqualifiedCount,
		UnaccountedCount:        aux.UnaccountedCount,
	}
	return nil
}

type annualSeriesAlias struct {
	PlotID  string   `json:"plot_id"`
	Method  string   `json:"method"`
	Year    int      `json:"year"`
	Density *float64 `json:"density_mg_ha"`
	Change  *float64 `json:"change_mg_ha"`
}

// MarshalJSON serialises missing interpolations as null.
func (p AnnualSeriesPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(annualSeriesAlias{
		PlotID:  p.PlotID,
		Method:  p.Method,
		Year:    p.Year,
		Density: nullableFloat(p.Density),
		Change:  nullableFloat(p.Change),
	})
}

// UnmarshalJSON hydrates nulls back to the missing marker.
func (p *AnnualSeriesPoint) UnmarshalJSON(data []byte) error {
	var aux annualSeriesAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = AnnualSeriesPoint{
		PlotID:  aux.PlotID,
		Method:  aux.Method,
		Year:    aux.Year,
		Density: floatOrMissing(aux.Density),
		Change:  floatOrMissing(aux.Change),
	}
	return nil
}
