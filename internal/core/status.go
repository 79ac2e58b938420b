package core

import (
	"sort"

	"standcore/pkg/domain"
)

// yearFlags is the multi-stem reduction of one individual's recorded
// statuses in one year.
type yearFlags struct {
	observed     bool // at least one stem recorded a status
	alive        bool // at least one stem alive
	dead         bool // no stem alive and at least one stem dead
	removed      bool // at least one stem removed
	disqualified bool // at least one stem disqualified and none removed
}

// reduceStemFlags collapses per-stem raw statuses into per-year flags for
// one individual. Stems without a recorded status do not count as
// observations. An unrecognized status string aborts the individual.
func reduceStemFlags(observations []StemObservation) (map[int]yearFlags, error) {
	type tally struct {
		observed                       bool
		live, dead, removed, disqualif bool
	}
	tallies := make(map[int]*tally)
	for _, obs := range observations {
		if obs.RawStatus == nil {
			continue
		}
		status, err := domain.ClassifyRawStatus(*obs.RawStatus)
		if err != nil {
			return nil, err
		}
		t := tallies[obs.Year]
		if t == nil {
			t = &tally{}
			tallies[obs.Year] = t
		}
		t.observed = true
		switch status {
		case StatusAlive:
			t.live = true
		case StatusDead:
			t.dead = true
		case StatusRemoved:
			t.removed = true
		case StatusDisqualified:
			t.disqualif = true
		}
	}
	flags := make(map[int]yearFlags, len(tallies))
	for year, t := range tallies {
		flags[year] = yearFlags{
			observed:     t.observed,
			alive:        t.live,
			dead:         !t.live && t.dead,
			removed:      t.removed,
			disqualified: t.disqualif && !t.removed,
		}
	}
	return flags, nil
}

// StatusResolver turns sparse per-year status flags into a dense status
// timeline over a plot's survey-year grid.
type StatusResolver struct{}

// Resolve computes the per-year status for every grid year.
//
// Order of operations: sandwich correction over observed years (an observed
// dead year between two observed alive years is treated as alive), forward
// persistence of death, backward persistence when the first observed year is
// already dead, then independent forward-persistent removal and
// disqualification tracks. For a given year, an explicitly recorded cause
// wins; between persisted tracks the earliest-triggered one wins, with
// removal taking precedence over disqualification over death on ties.
func (StatusResolver) Resolve(grid []int, flags map[int]yearFlags) []Status {
	observed := make([]int, 0, len(flags))
	for year, f := range flags {
		if f.observed {
			observed = append(observed, year)
		}
	}
	sort.Ints(observed)

	// Sandwich correction: a run of dead readings whose immediately adjacent
	// observations are both live is a recording error, not a resurrection.
	// Any other adjacent observation (removal, disqualification) blocks the
	// correction.
	corrected := make(map[int]yearFlags, len(flags))
	for year, f := range flags {
		corrected[year] = f
	}
	deadOnly := func(f yearFlags) bool {
		return f.dead && !f.alive && !f.removed && !f.disqualified
	}
	for i := 0; i < len(observed); {
		if !deadOnly(flags[observed[i]]) {
			i++
			continue
		}
		j := i
		for j+1 < len(observed) && deadOnly(flags[observed[j+1]]) {
			j++
		}
		if i > 0 && flags[observed[i-1]].alive && j+1 < len(observed) && flags[observed[j+1]].alive {
			for _, year := range observed[i : j+1] {
				f := corrected[year]
				f.dead = false
				f.alive = true
				corrected[year] = f
			}
		}
		i = j + 1
	}

	const never = int(^uint(0) >> 1)
	deadFrom, removedFrom, disqualifiedFrom := never, never, never
	for _, year := range observed {
		f := corrected[year]
		if f.dead && year < deadFrom {
			deadFrom = year
		}
		if f.removed && year < removedFrom {
			removedFrom = year
		}
		if f.disqualified && year < disqualifiedFrom {
			disqualifiedFrom = year
		}
	}
	// Never seen alive: death extends backward over the whole grid.
	if len(observed) > 0 && corrected[observed[0]].dead && len(grid) > 0 {
		deadFrom = grid[0]
	}

	statuses := make([]Status, len(grid))
	for i, year := range grid {
		f := corrected[year]
		switch {
		case f.observed && f.removed:
			statuses[i] = StatusRemoved
		case f.observed && f.disqualified:
			statuses[i] = StatusDisqualified
		case f.observed && f.dead:
			statuses[i] = StatusDead
		default:
			statuses[i] = persistedStatus(year, deadFrom, removedFrom, disqualifiedFrom)
		}
	}
	return statuses
}

func persistedStatus(year, deadFrom, removedFrom, disqualifiedFrom int) Status {
	const never = int(^uint(0) >> 1)
	best := StatusAlive
	bestFrom := never
	if year >= removedFrom && removedFrom <= bestFrom {
		best = StatusRemoved
		bestFrom = removedFrom
	}
	if year >= disqualifiedFrom && disqualifiedFrom < bestFrom {
		best = StatusDisqualified
		bestFrom = disqualifiedFrom
	}
	if year >= deadFrom && deadFrom < bestFrom {
		best = StatusDead
		bestFrom = deadFrom
	}
	return best
}
