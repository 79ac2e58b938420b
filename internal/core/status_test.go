package core

import (
	"errors"
	"testing"

	"standcore/pkg/domain"
)

func strptr(s string) *string { return &s }

func obsWithStatus(year int, raw string) StemObservation {
	return StemObservation{IndividualID: "ind", StemID: "s1", PlotID: "p", Year: year, Diameter: domain.Missing(), RawStatus: strptr(raw)}
}

func TestReduceStemFlagsMultiStem(t *testing.T) {
	// One live stem outweighs a dead one in the same year.
	flags, err := reduceStemFlags([]StemObservation{
		{Year: 2018, RawStatus: strptr("Live"), Diameter: domain.Missing()},
		{Year: 2018, RawStatus: strptr("Standing dead"), StemID: "s2", Diameter: domain.Missing()},
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	f := flags[2018]
	if !f.observed || !f.alive || f.dead {
		t.Fatalf("expected observed alive year, got %+v", f)
	}
}

func TestReduceStemFlagsRemovalOverridesDisqualification(t *testing.T) {
	flags, err := reduceStemFlags([]StemObservation{
		{Year: 2019, RawStatus: strptr("Removed"), Diameter: domain.Missing()},
		{Year: 2019, RawStatus: strptr("No longer qualifies"), StemID: "s2", Diameter: domain.Missing()},
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	f := flags[2019]
	if !f.removed || f.disqualified {
		t.Fatalf("expected removed without disqualification, got %+v", f)
	}
}

func TestReduceStemFlagsSkipsUnrecordedStatus(t *testing.T) {
	flags, err := reduceStemFlags([]StemObservation{
		{Year: 2020, RawStatus: nil, Diameter: 12.0},
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if _, ok := flags[2020]; ok {
		t.Fatalf("unrecorded status must not count as an observation")
	}
}

func TestReduceStemFlagsRejectsUnknownStatus(t *testing.T) {
	_, err := reduceStemFlags([]StemObservation{obsWithStatus(2020, "Thriving")})
	if err == nil {
		t.Fatalf("expected unknown status error")
	}
	var unknown domain.UnknownValueError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownValueError, got %T: %v", err, err)
	}
}

func TestResolveStatusTimeline(t *testing.T) {
	grid := []int{2015, 2016, 2017, 2018, 2019, 2020}
	tests := []struct {
		name string
		obs  []StemObservation
		want []Status
	}{
		{
			name: "alive throughout",
			obs: []StemObservation{
				obsWithStatus(2015, "Live"),
				obsWithStatus(2020, "Live"),
			},
			want: []Status{StatusAlive, StatusAlive, StatusAlive, StatusAlive, StatusAlive, StatusAlive},
		},
		{
			name: "death persists forward",
			obs: []StemObservation{
				obsWithStatus(2015, "Live"),
				obsWithStatus(2017, "Standing dead"),
			},
			want: []Status{StatusAlive, StatusAlive, StatusDead, StatusDead, StatusDead, StatusDead},
		},
		{
			name: "sandwiched dead reading is a recording error",
			obs: []StemObservation{
				obsWithStatus(2015, "Live"),
				obsWithStatus(2017, "Standing dead"),
				obsWithStatus(2019, "Live"),
			},
			want: []Status{StatusAlive, StatusAlive, StatusAlive, StatusAlive, StatusAlive, StatusAlive},
		},
		{
			name: "dead run bracketed by live readings is corrected whole",
			obs: []StemObservation{
				obsWithStatus(2015, "Live"),
				obsWithStatus(2017, "Standing dead"),
				obsWithStatus(2018, "Standing dead"),
				obsWithStatus(2020, "Live"),
			},
			want: []Status{StatusAlive, StatusAlive, StatusAlive, StatusAlive, StatusAlive, StatusAlive},
		},
		{
			name: "intervening removal blocks the sandwich correction",
			obs: []StemObservation{
				obsWithStatus(2015, "Live"),
				obsWithStatus(2017, "Standing dead"),
				obsWithStatus(2019, "Removed"),
				obsWithStatus(2020, "Live"),
			},
			// The dead reading stands because its next observation is the
			// removal, not a live year; death then wins later years as the
			// earlier trigger.
			want: []Status{StatusAlive, StatusAlive, StatusDead, StatusDead, StatusRemoved, StatusDead},
		},
		{
			name: "never seen alive extends death backward",
			obs: []StemObservation{
				obsWithStatus(2017, "Standing dead"),
			},
			want: []Status{StatusDead, StatusDead, StatusDead, StatusDead, StatusDead, StatusDead},
		},
		{
			name: "removal persists and beats later death",
			obs: []StemObservation{
				obsWithStatus(2015, "Live"),
				obsWithStatus(2016, "Removed"),
				obsWithStatus(2018, "Standing dead"),
			},
			want: []Status{StatusAlive, StatusRemoved, StatusRemoved, StatusDead, StatusRemoved, StatusRemoved},
		},
		{
			name: "disqualification persists",
			obs: []StemObservation{
				obsWithStatus(2015, "Live"),
				obsWithStatus(2017, "No longer qualifies"),
			},
			want: []Status{StatusAlive, StatusAlive, StatusDisqualified, StatusDisqualified, StatusDisqualified, StatusDisqualified},
		},
		{
			name: "earliest trigger wins between tracks",
			obs: []StemObservation{
				obsWithStatus(2016, "Standing dead"),
				obsWithStatus(2018, "Removed"),
			},
			want: []Status{StatusDead, StatusDead, StatusDead, StatusRemoved, StatusDead, StatusDead},
		},
	}

	var resolver StatusResolver
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			flags, err := reduceStemFlags(tc.obs)
			if err != nil {
				t.Fatalf("reduce: %v", err)
			}
			got := resolver.Resolve(grid, flags)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d statuses, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("year %d: got %s, want %s", grid[i], got[i], tc.want[i])
				}
			}
		})
	}
}

func TestResolveRemovedWinsTieWithDead(t *testing.T) {
	grid := []int{2016, 2017, 2018}
	flags, err := reduceStemFlags([]StemObservation{
		obsWithStatus(2016, "Live"),
		{Year: 2017, RawStatus: strptr("Removed"), Diameter: domain.Missing()},
		{Year: 2017, StemID: "s2", RawStatus: strptr("Standing dead"), Diameter: domain.Missing()},
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	got := (StatusResolver{}).Resolve(grid, flags)
	if got[1] != StatusRemoved || got[2] != StatusRemoved {
		t.Fatalf("removal must win the tie: got %v", got)
	}
}
