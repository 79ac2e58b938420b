package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"standcore/pkg/domain"
)

func TestReadObservations(t *testing.T) {
	// Columns deliberately out of canonical order; resolution is by name.
	input := strings.Join([]string{
		"plot_id,year,individual_id,stem_id,diameter_cm,raw_status,growth_form",
		"P1,2016,T1,S1,25.4,Live,single bole tree",
		"P1,2018,T1,S1,,Standing dead,single bole tree",
		"P1,2018,T2,S1,3.1,,sapling",
	}, "\n")

	obs, err := ReadObservations("observations.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("rows: got %d, want 3", len(obs))
	}

	first := obs[0]
	if first.IndividualID != "T1" || first.StemID != "S1" || first.PlotID != "P1" || first.Year != 2016 {
		t.Fatalf("identity fields: %+v", first)
	}
	if first.Diameter != 25.4 || first.GrowthForm != "single bole tree" {
		t.Fatalf("measurement fields: %+v", first)
	}
	if first.RawStatus == nil || *first.RawStatus != "Live" {
		t.Fatalf("raw status: %v", first.RawStatus)
	}

	if !domain.IsMissing(obs[1].Diameter) {
		t.Fatalf("empty diameter cell should be missing, got %v", obs[1].Diameter)
	}
	if obs[2].RawStatus != nil {
		t.Fatalf("empty status cell should be unrecorded, got %q", *obs[2].RawStatus)
	}
}

func TestReadObservationsMissingColumn(t *testing.T) {
	input := "individual_id,stem_id,plot_id,year,diameter_cm,raw_status\nT1,S1,P1,2016,25.4,Live\n"
	_, err := ReadObservations("observations.csv", strings.NewReader(input))
	if err == nil {
		t.Fatalf("missing growth_form column accepted")
	}
	if !strings.Contains(err.Error(), "growth_form") || !strings.Contains(err.Error(), "observations.csv") {
		t.Fatalf("error lacks context: %v", err)
	}
}

func TestReadObservationsBadNumberNamesLine(t *testing.T) {
	input := strings.Join([]string{
		"individual_id,stem_id,plot_id,year,diameter_cm,raw_status,growth_form",
		"T1,S1,P1,2016,25.4,Live,single bole tree",
		"T1,S1,P1,twenty,26.0,Live,single bole tree",
	}, "\n")
	_, err := ReadObservations("observations.csv", strings.NewReader(input))
	if err == nil {
		t.Fatalf("bad year accepted")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("error lacks line number: %v", err)
	}
}

func TestReadIndividuals(t *testing.T) {
	input := strings.Join([]string{
		"individual_id,plot_id,scientific_name,taxon_id,genus,family",
		"T1,P1,Quercus alba,QA-1,Quercus,Fagaceae",
		"T2,P1,,,,",
	}, "\n")
	roster, err := ReadIndividuals("individuals.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("rows: got %d, want 2", len(roster))
	}
	if roster[0].ScientificName != "Quercus alba" || roster[0].Genus != "Quercus" {
		t.Fatalf("taxonomy fields: %+v", roster[0])
	}
	if roster[1].ScientificName != "" {
		t.Fatalf("blank taxonomy should stay blank: %+v", roster[1])
	}
}

func TestReadAllometry(t *testing.T) {
	input := strings.Join([]string{
		"individual_id,year,method,biomass_kg",
		"T1,2016,AGBJenkins,102.5",
		"T1,2016,AGBChojnacky,",
	}, "\n")
	records, err := ReadAllometry("allometry.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows: got %d, want 2", len(records))
	}
	if records[0].Method != "AGBJenkins" || records[0].BiomassKg != 102.5 {
		t.Fatalf("first record: %+v", records[0])
	}
	if !domain.IsMissing(records[1].BiomassKg) {
		t.Fatalf("empty biomass cell should be missing, got %v", records[1].BiomassKg)
	}
}

func TestReadSurveyEvents(t *testing.T) {
	input := strings.Join([]string{
		"plot_id,year,sampled_area_trees_m2,sampled_area_small_woody_m2",
		"P1,2016,400,100",
		"P1,2018,400,",
	}, "\n")
	events, err := ReadSurveyEvents("surveys.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("rows: got %d, want 2", len(events))
	}
	if events[0].SampledAreaTreesM2 != 400 || events[0].SampledAreaSmallWoodyM2 != 100 {
		t.Fatalf("areas: %+v", events[0])
	}
	if !domain.IsMissing(events[1].SampledAreaSmallWoodyM2) {
		t.Fatalf("empty area cell should be missing, got %v", events[1].SampledAreaSmallWoodyM2)
	}
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	paths := Paths{
		Observations: write("obs.csv", "individual_id,stem_id,plot_id,year,diameter_cm,raw_status,growth_form\nT1,S1,P1,2016,25.4,Live,single bole tree\n"),
		Individuals:  write("ind.csv", "individual_id,plot_id\nT1,P1\n"),
		Allometry:    write("allo.csv", "individual_id,year,method,biomass_kg\nT1,2016,AGBJenkins,100\n"),
		Surveys:      write("srv.csv", "plot_id,year,sampled_area_trees_m2,sampled_area_small_woody_m2\nP1,2016,400,100\n"),
	}

	tables, err := LoadTables(paths)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tables.Observations) != 1 || len(tables.Individuals) != 1 || len(tables.Allometry) != 1 || len(tables.Surveys) != 1 {
		t.Fatalf("table sizes: %d %d %d %d", len(tables.Observations), len(tables.Individuals), len(tables.Allometry), len(tables.Surveys))
	}
}

func TestLoadTablesRequiresEveryPath(t *testing.T) {
	if _, err := LoadTables(Paths{}); err == nil {
		t.Fatalf("empty paths accepted")
	}
}
