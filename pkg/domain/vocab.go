package domain

import "fmt"

// Status represents the resolved per-year state of an individual.
type Status string

// Resolved statuses. Dead, removed, and disqualified are irreversible: once
// entered, later years cannot return the individual to alive.
const (
	// StatusAlive indicates at least one stem was alive, or the year sits
	// inside a live-to-live sandwich.
	StatusAlive Status = "alive"
	// StatusDead indicates mortality with the census interval semantics of
	// forward persistence.
	StatusDead Status = "dead"
	// StatusRemoved indicates physical removal from the plot.
	StatusRemoved Status = "removed"
	// StatusDisqualified indicates the individual no longer qualifies for
	// the survey protocol.
	StatusDisqualified Status = "disqualified"
)

// Zeroed reports whether the status forces biomass to zero from its year on.
func (s Status) Zeroed() bool {
	return s == StatusDead || s == StatusRemoved || s == StatusDisqualified
}

// Category buckets an individual-year into a biomass pool.
type Category string

// Biomass pool categories derived from growth form and diameter.
const (
	CategoryTree       Category = "tree"
	CategorySmallWoody Category = "small_woody"
	CategoryExcluded   Category = "excluded"
)

// Provenance records how an individual-year value came to be.
type Provenance string

// Provenance markers carried on every individual-year record.
const (
	// ProvenanceOriginal marks a directly observed year.
	ProvenanceOriginal Provenance = "original"
	// ProvenanceFilled marks a grid year estimated by gap filling.
	ProvenanceFilled Provenance = "filled"
	// ProvenanceOutlier marks a year whose measurement was rejected as a
	// transcription spike.
	ProvenanceOutlier Provenance = "outlier"
	// ProvenanceZeroedDead marks a year zeroed because the individual is dead.
	ProvenanceZeroedDead Provenance = "zeroed_dead"
	// ProvenanceZeroedRemoved marks a year zeroed by removal.
	ProvenanceZeroedRemoved Provenance = "zeroed_removed"
	// ProvenanceZeroedDisqualified marks a year zeroed by disqualification.
	ProvenanceZeroedDisqualified Provenance = "zeroed_disqualified"
)

// ExceptionReason enumerates audit exception codes.
type ExceptionReason string

// Audit exception reasons. The two are mutually exclusive per individual.
const (
	// ReasonUnmeasured flags a tagged tree with zero stem observations ever.
	ReasonUnmeasured ExceptionReason = "UNMEASURED"
	// ReasonNoAllometry flags a measured tree with no usable biomass under
	// any method.
	ReasonNoAllometry ExceptionReason = "NO_ALLOMETRY"
)

// UnknownValueError reports a string outside a closed vocabulary. Vocabulary
// membership is a data contract: unrecognized values fail loudly instead of
// being coerced to a default bucket.
type UnknownValueError struct {
	Vocabulary string
	Value      string
}

func (e UnknownValueError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Vocabulary, e.Value)
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Raw status vocabulary as recorded in the field. A blank string is a
// recorded-live observation; an unrecorded status is a nil pointer upstream
// and never reaches classification.
var (
	liveStatuses = toSet(
		"",
		"Live",
		"Live,  other damage",
		"Live, other damage",
		"Live, broken bole",
		"Live, disease damaged",
		"Live, insect damaged",
		"Live, physically damaged",
		"Lost, tag damaged",
	)
	deadStatuses = toSet(
		"Dead, broken bole",
		"Downed",
		"Lost, burned",
		"Lost, fate unknown",
		"Lost, herbivory",
		"Lost, presumed dead",
		"Standing dead",
	)
	removedStatuses      = toSet("Removed")
	disqualifiedStatuses = toSet("No longer qualifies")
)

// ClassifyRawStatus maps a recorded raw status string onto a resolved status
// bucket. Unrecognized values return an UnknownValueError.
func ClassifyRawStatus(raw string) (Status, error) {
	switch {
	case member(liveStatuses, raw):
		return StatusAlive, nil
	case member(deadStatuses, raw):
		return StatusDead, nil
	case member(removedStatuses, raw):
		return StatusRemoved, nil
	case member(disqualifiedStatuses, raw):
		return StatusDisqualified, nil
	default:
		return "", UnknownValueError{Vocabulary: "plant status", Value: raw}
	}
}

func member(set map[string]struct{}, v string) bool {
	_, ok := set[v]
	return ok
}

// Growth-form vocabulary. Tree and small-woody sets overlap on "small tree",
// where the diameter threshold decides the pool. The excluded set names forms
// that are valid vocabulary but belong to neither biomass pool.
var (
	treeGrowthForms = toSet(
		"single bole tree",
		"multi-bole tree",
		"small tree",
	)
	smallWoodyGrowthForms = toSet(
		"small tree",
		"sapling",
		"single shrub",
		"small shrub",
	)
	excludedGrowthForms = toSet(
		"liana",
		"fern",
		"palm",
	)
)

// DiameterThresholdCm separates the tree pool from the small-woody pool.
const DiameterThresholdCm = 10.0

// Categorize assigns an individual-year to a biomass pool from its growth
// form and aggregated diameter.
//
// Rules: a tree-form individual with diameter >= 10 cm is a tree; a
// small-woody-form individual with diameter < 10 cm is small-woody; a
// small-woody form with a missing diameter still counts small-woody, since
// small stems are routinely tallied without measurement. A missing or empty
// growth form is excluded without error. Recognized forms outside both pools
// are excluded. Unrecognized non-empty forms return an UnknownValueError.
func Categorize(growthForm string, diameterCm float64) (Category, error) {
	if growthForm == "" {
		return CategoryExcluded, nil
	}
	tree := member(treeGrowthForms, growthForm)
	smallWoody := member(smallWoodyGrowthForms, growthForm)
	if !tree && !smallWoody {
		if member(excludedGrowthForms, growthForm) {
			return CategoryExcluded, nil
		}
		return "", UnknownValueError{Vocabulary: "growth form", Value: growthForm}
	}
	if smallWoody && IsMissing(diameterCm) {
		return CategorySmallWoody, nil
	}
	if tree && !IsMissing(diameterCm) && diameterCm >= DiameterThresholdCm {
		return CategoryTree, nil
	}
	if smallWoody && !IsMissing(diameterCm) && diameterCm < DiameterThresholdCm {
		return CategorySmallWoody, nil
	}
	return CategoryExcluded, nil
}
