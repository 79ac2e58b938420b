package core

import (
	"fmt"

	"standcore/pkg/domain"
)

// Auditor flags tagged trees the pipeline could not account for. The two
// exception reasons are mutually exclusive: an individual with no
// observations at all is unmeasured, one that was measured as a tree but
// never produced a usable biomass estimate lacks allometry.
type Auditor struct{}

// Audit inspects one plot's roster against the built series. Series must be
// pre-composite so that original estimate availability is still visible.
func (Auditor) Audit(roster []TaggedIndividual, series map[string]*individualSeries) []Exception {
	var out []Exception
	for _, tagged := range roster {
		s, observed := series[tagged.IndividualID]
		if !observed {
			out = append(out, Exception{
				PlotID:         tagged.PlotID,
				IndividualID:   tagged.IndividualID,
				ScientificName: tagged.ScientificName,
				TaxonID:        tagged.TaxonID,
				Reason:         domain.ReasonUnmeasured,
				Detail:         "tagged but never observed",
			})
			continue
		}
		if !everQualifiedTree(s) {
			continue
		}
		if hasUsableBiomass(s) {
			continue
		}
		out = append(out, Exception{
			PlotID:         tagged.PlotID,
			IndividualID:   tagged.IndividualID,
			ScientificName: tagged.ScientificName,
			TaxonID:        tagged.TaxonID,
			Reason:         domain.ReasonNoAllometry,
			Detail:         fmt.Sprintf("no usable estimate under %d methods", len(s.biomass)),
		})
	}
	return out
}

func everQualifiedTree(s *individualSeries) bool {
	for i := range s.grid {
		if !s.hasObs[i] {
			continue
		}
		category, err := domain.Categorize(s.growthForm[i], s.diameter[i])
		if err == nil && category == CategoryTree {
			return true
		}
	}
	return false
}

func hasUsableBiomass(s *individualSeries) bool {
	for _, values := range s.biomass {
		for _, v := range values {
			if !domain.IsMissing(v) {
				return true
			}
		}
	}
	return false
}
