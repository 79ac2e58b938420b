package domain

import "math"

// Missing returns the canonical missing-value marker for measurements and
// estimates. Missing is always NaN, never zero: zero biomass is a real
// observation (a dead or removed individual), missing means "could not be
// estimated".
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v carries the missing-value marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Unit conversions used when normalizing plot sums to densities.
const (
	// KgPerMg converts kilograms to megagrams (tonnes).
	KgPerMg = 1000.0
	// M2PerHectare converts square meters to hectares.
	M2PerHectare = 10000.0
)

// DefaultMethods lists the allometric method names produced by the standard
// estimation table. The engine treats method names as opaque; this list only
// seeds configuration defaults.
var DefaultMethods = []string{"AGBJenkins", "AGBChojnacky", "AGBAnnighofer"}
