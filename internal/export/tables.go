// Package export renders reconciled site results into downloadable artifacts
// and stores them in a blob backend through an asynchronous worker.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"standcore/pkg/domain"
)

// Table names one exportable view over a SiteResult.
type Table string

const (
	// TableIndividualYears is the per-individual reconciled year table.
	TableIndividualYears Table = "individual_years"
	// TablePlotYears is the per-plot aggregated year table.
	TablePlotYears Table = "plot_years"
	// TableAnnualSeries is the dense interpolated density series.
	TableAnnualSeries Table = "annual_series"
	// TableExceptions is the audit exception table.
	TableExceptions Table = "exceptions"
)

// AllTables returns every exportable table in a stable order.
func AllTables() []Table {
	return []Table{TableIndividualYears, TablePlotYears, TableAnnualSeries, TableExceptions}
}

// Format identifies an artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string { return string(f) }

// renderTable encodes one table of the result in the requested format and
// reports how many data rows it produced.
func renderTable(table Table, result domain.SiteResult, format Format) ([]byte, int, error) {
	switch format {
	case FormatJSON:
		return renderJSON(table, result)
	case FormatCSV:
		return renderCSV(table, result)
	default:
		return nil, 0, fmt.Errorf("unsupported export format %s", format)
	}
}

func renderJSON(table Table, result domain.SiteResult) ([]byte, int, error) {
	var (
		payload []byte
		rows    int
		err     error
	)
	switch table {
	case TableIndividualYears:
		rows = len(result.IndividualYears)
		payload, err = json.Marshal(result.IndividualYears)
	case TablePlotYears:
		rows = len(result.PlotYears)
		payload, err = json.Marshal(result.PlotYears)
	case TableAnnualSeries:
		rows = len(result.AnnualSeries)
		payload, err = json.Marshal(result.AnnualSeries)
	case TableExceptions:
		rows = len(result.Exceptions)
		payload, err = json.Marshal(result.Exceptions)
	default:
		return nil, 0, fmt.Errorf("unknown export table %s", table)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("marshal %s: %w", table, err)
	}
	return payload, rows, nil
}

// CSV output is long-format: per-method values become one row per method so
// the column set stays fixed regardless of which methods a run used.
func renderCSV(table Table, result domain.SiteResult) ([]byte, int, error) {
	var (
		header []string
		rows   [][]string
	)
	switch table {
	case TableIndividualYears:
		header, rows = individualYearRows(result)
	case TablePlotYears:
		header, rows = plotYearRows(result)
	case TableAnnualSeries:
		header, rows = annualSeriesRows(result)
	case TableExceptions:
		header, rows = exceptionRows(result)
	default:
		return nil, 0, fmt.Errorf("unknown export table %s", table)
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(header); err != nil {
		return nil, 0, err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, 0, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(rows), nil
}

func individualYearRows(result domain.SiteResult) ([]string, [][]string) {
	header := []string{
		"individual_id", "plot_id", "year", "diameter_cm", "growth_form",
		"category", "status", "has_observation", "provenance",
		"method", "biomass_kg", "growth_kg_per_yr", "trend_kg_per_yr",
	}
	rows := make([][]string, 0, len(result.IndividualYears)*len(result.Methods))
	for _, rec := range result.IndividualYears {
		for _, method := range result.Methods {
			rows = append(rows, []string{
				rec.IndividualID,
				rec.PlotID,
				strconv.Itoa(rec.Year),
				formatFloat(rec.Diameter),
				rec.GrowthForm,
				string(rec.Category),
				string(rec.Status),
				strconv.FormatBool(rec.HasObservation),
				string(rec.Provenance),
				method,
				formatFloat(rec.BiomassKg[method]),
				formatFloat(rec.GrowthKgPerYr[method]),
				formatFloat(rec.TrendKgPerYr[method]),
			})
		}
	}
	return header, rows
}

func plotYearRows(result domain.SiteResult) ([]string, [][]string) {
	header := []string{
		"plot_id", "year", "method",
		"tree_density_mg_ha", "small_woody_density_mg_ha", "total_density_mg_ha",
		"total_growth_mg_ha_yr", "total_trend_mg_ha_yr",
		"tree_count", "small_woody_count", "small_woody_measured_count",
		"filled_count", "removed_count", "disqualified_count", "unaccounted_count",
	}
	rows := make([][]string, 0, len(result.PlotYears)*len(result.Methods))
	for _, rec := range result.PlotYears {
		for _, method := range result.Methods {
			rows = append(rows, []string{
				rec.PlotID,
				strconv.Itoa(rec.Year),
				method,
				formatFloat(rec.TreeDensity[method]),
				formatFloat(rec.SmallWoodyDensity[method]),
				formatFloat(rec.TotalDensity[method]),
				formatFloat(rec.TotalGrowth[method]),
				formatFloat(rec.TotalTrend[method]),
				strconv.Itoa(rec.TreeCount),
				strconv.Itoa(rec.SmallWoodyCount),
				strconv.Itoa(rec.SmallWoodyMeasuredCount),
				strconv.Itoa(rec.FilledCount),
				strconv.Itoa(rec.RemovedCount),
				strconv.Itoa(rec.DisqualifiedCount),
				strconv.Itoa(rec.UnaccountedCount),
			})
		}
	}
	return header, rows
}

func annualSeriesRows(result domain.SiteResult) ([]string, [][]string) {
	header := []string{"plot_id", "method", "year", "density_mg_ha", "change_mg_ha"}
	rows := make([][]string, 0, len(result.AnnualSeries))
	for _, point := range result.AnnualSeries {
		rows = append(rows, []string{
			point.PlotID,
			point.Method,
			strconv.Itoa(point.Year),
			formatFloat(point.Density),
			formatFloat(point.Change),
		})
	}
	return header, rows
}

func exceptionRows(result domain.SiteResult) ([]string, [][]string) {
	header := []string{"plot_id", "individual_id", "scientific_name", "taxon_id", "reason", "detail"}
	rows := make([][]string, 0, len(result.Exceptions))
	for _, exc := range result.Exceptions {
		rows = append(rows, []string{
			exc.PlotID,
			exc.IndividualID,
			exc.ScientificName,
			exc.TaxonID,
			string(exc.Reason),
			exc.Detail,
		})
	}
	return header, rows
}

// formatFloat renders missing values as empty cells.
func formatFloat(v float64) string {
	if domain.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
