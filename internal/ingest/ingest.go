// Package ingest reads the four input tables from CSV files. Columns are
// resolved by header name, so column order does not matter. Empty numeric
// cells become the missing marker; an empty status cell means no status was
// recorded for that stem.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"standcore/pkg/domain"
)

// Paths names the CSV files holding the four input tables.
type Paths struct {
	Observations string `yaml:"observations"`
	Individuals  string `yaml:"individuals"`
	Allometry    string `yaml:"allometry"`
	Surveys      string `yaml:"surveys"`
}

// header maps column names to field indexes for one CSV file.
type header struct {
	source string
	index  map[string]int
}

func readHeader(source string, reader *csv.Reader) (header, error) {
	row, err := reader.Read()
	if err != nil {
		return header{}, fmt.Errorf("%s: read header: %w", source, err)
	}
	index := make(map[string]int, len(row))
	for i, name := range row {
		index[strings.TrimSpace(name)] = i
	}
	return header{source: source, index: index}, nil
}

func (h header) require(columns ...string) error {
	for _, column := range columns {
		if _, ok := h.index[column]; !ok {
			return fmt.Errorf("%s: missing required column %q", h.source, column)
		}
	}
	return nil
}

func (h header) field(row []string, column string) string {
	i, ok := h.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) intField(row []string, column string, line int) (int, error) {
	raw := h.field(row, column)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: column %q: invalid integer %q", h.source, line, column, raw)
	}
	return v, nil
}

// floatField parses a float column, treating an empty cell as missing.
func (h header) floatField(row []string, column string, line int) (float64, error) {
	raw := h.field(row, column)
	if raw == "" {
		return domain.Missing(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: column %q: invalid number %q", h.source, line, column, raw)
	}
	return v, nil
}

func forEachRow(source string, reader *csv.Reader, fn func(line int, row []string) error) error {
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		line++
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

// ReadObservations parses the stem observation table.
func ReadObservations(source string, r io.Reader) ([]domain.StemObservation, error) {
	reader := csv.NewReader(r)
	h, err := readHeader(source, reader)
	if err != nil {
		return nil, err
	}
	if err := h.require("individual_id", "stem_id", "plot_id", "year", "diameter_cm", "raw_status", "growth_form"); err != nil {
		return nil, err
	}
	var out []domain.StemObservation
	err = forEachRow(source, reader, func(line int, row []string) error {
		year, err := h.intField(row, "year", line)
		if err != nil {
			return err
		}
		diameter, err := h.floatField(row, "diameter_cm", line)
		if err != nil {
			return err
		}
		obs := domain.StemObservation{
			IndividualID: h.field(row, "individual_id"),
			StemID:       h.field(row, "stem_id"),
			PlotID:       h.field(row, "plot_id"),
			Year:         year,
			Diameter:     diameter,
			GrowthForm:   h.field(row, "growth_form"),
		}
		// An empty cell means the field crew recorded no status at all.
		if raw := h.field(row, "raw_status"); raw != "" {
			obs.RawStatus = &raw
		}
		out = append(out, obs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadIndividuals parses the tagged individual roster.
func ReadIndividuals(source string, r io.Reader) ([]domain.TaggedIndividual, error) {
	reader := csv.NewReader(r)
	h, err := readHeader(source, reader)
	if err != nil {
		return nil, err
	}
	if err := h.require("individual_id", "plot_id"); err != nil {
		return nil, err
	}
	var out []domain.TaggedIndividual
	err = forEachRow(source, reader, func(line int, row []string) error {
		out = append(out, domain.TaggedIndividual{
			IndividualID:   h.field(row, "individual_id"),
			PlotID:         h.field(row, "plot_id"),
			ScientificName: h.field(row, "scientific_name"),
			TaxonID:        h.field(row, "taxon_id"),
			Genus:          h.field(row, "genus"),
			Family:         h.field(row, "family"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadAllometry parses the per-method biomass estimate table.
func ReadAllometry(source string, r io.Reader) ([]domain.AllometryRecord, error) {
	reader := csv.NewReader(r)
	h, err := readHeader(source, reader)
	if err != nil {
		return nil, err
	}
	if err := h.require("individual_id", "year", "method", "biomass_kg"); err != nil {
		return nil, err
	}
	var out []domain.AllometryRecord
	err = forEachRow(source, reader, func(line int, row []string) error {
		year, err := h.intField(row, "year", line)
		if err != nil {
			return err
		}
		biomass, err := h.floatField(row, "biomass_kg", line)
		if err != nil {
			return err
		}
		out = append(out, domain.AllometryRecord{
			IndividualID: h.field(row, "individual_id"),
			Year:         year,
			Method:       h.field(row, "method"),
			BiomassKg:    biomass,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadSurveyEvents parses the survey event table.
func ReadSurveyEvents(source string, r io.Reader) ([]domain.SurveyEvent, error) {
	reader := csv.NewReader(r)
	h, err := readHeader(source, reader)
	if err != nil {
		return nil, err
	}
	if err := h.require("plot_id", "year", "sampled_area_trees_m2", "sampled_area_small_woody_m2"); err != nil {
		return nil, err
	}
	var out []domain.SurveyEvent
	err = forEachRow(source, reader, func(line int, row []string) error {
		year, err := h.intField(row, "year", line)
		if err != nil {
			return err
		}
		trees, err := h.floatField(row, "sampled_area_trees_m2", line)
		if err != nil {
			return err
		}
		smallWoody, err := h.floatField(row, "sampled_area_small_woody_m2", line)
		if err != nil {
			return err
		}
		out = append(out, domain.SurveyEvent{
			PlotID:                  h.field(row, "plot_id"),
			Year:                    year,
			SampledAreaTreesM2:      trees,
			SampledAreaSmallWoodyM2: smallWoody,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Tables holds the four parsed input tables for one site.
type Tables struct {
	Observations []domain.StemObservation
	Individuals  []domain.TaggedIndividual
	Allometry    []domain.AllometryRecord
	Surveys      []domain.SurveyEvent
}

// LoadTables reads all four tables from the named files.
func LoadTables(paths Paths) (Tables, error) {
	var tables Tables
	err := withFile(paths.Observations, func(f *os.File) error {
		rows, err := ReadObservations(paths.Observations, f)
		tables.Observations = rows
		return err
	})
	if err != nil {
		return Tables{}, err
	}
	err = withFile(paths.Individuals, func(f *os.File) error {
		rows, err := ReadIndividuals(paths.Individuals, f)
		tables.Individuals = rows
		return err
	})
	if err != nil {
		return Tables{}, err
	}
	err = withFile(paths.Allometry, func(f *os.File) error {
		rows, err := ReadAllometry(paths.Allometry, f)
		tables.Allometry = rows
		return err
	})
	if err != nil {
		return Tables{}, err
	}
	err = withFile(paths.Surveys, func(f *os.File) error {
		rows, err := ReadSurveyEvents(paths.Surveys, f)
		tables.Surveys = rows
		return err
	})
	if err != nil {
		return Tables{}, err
	}
	return tables, nil
}

func withFile(path string, fn func(*os.File) error) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("input path not configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return fn(f)
}
