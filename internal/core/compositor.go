package core

// individualSeries is the dense working state for one individual over its
// plot's survey-year grid. All slices are indexed by grid position.
type individualSeries struct {
	id         string
	plotID     string
	grid       []int
	diameter   []float64
	growthForm []string
	hasObs     []bool
	status     []Status
	provenance []Provenance
	biomass    map[string][]float64 // method -> per-year kg
}

// Compositor reconciles estimation with vital status. The order is fixed:
// gap filling runs first over the measured values, then every dead, removed,
// or disqualified year is forced to zero. Reversing the phases would let the
// fill trend bleed estimates into years where the individual no longer
// stands.
type Compositor struct {
	filler BiomassGapFiller
}

// Composite fills the series' biomass gaps, propagates time-invariant
// attributes onto filler rows, and zeroes the non-living years.
func (c Compositor) Composite(s *individualSeries) {
	for _, values := range s.biomass {
		c.filler.FillSeries(s.grid, values)
	}
	propagateGrowthForm(s.growthForm, s.hasObs)
	propagateDiameter(s.diameter, s.hasObs)

	for i, status := range s.status {
		if !status.Zeroed() {
			continue
		}
		for _, values := range s.biomass {
			values[i] = 0
		}
		s.provenance[i] = zeroProvenance(status)
	}
}

func zeroProvenance(status Status) Provenance {
	switch status {
	case StatusRemoved:
		return ProvenanceZeroedRemoved
	case StatusDisqualified:
		return ProvenanceZeroedDisqualified
	default:
		return ProvenanceZeroedDead
	}
}
