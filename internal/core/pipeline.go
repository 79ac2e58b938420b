package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"standcore/pkg/domain"
)

// ErrNoSurveyEvents is returned when a site has no survey events at all;
// without the survey grid nothing can be reconciled.
var ErrNoSurveyEvents = errors.New("no survey events for site")

// Pipeline runs the full temporal reconciliation for one site: status
// resolution, outlier rejection, gap filling, compositing, aggregation,
// growth metrics, and the exceptions audit.
type Pipeline struct {
	methods    []string
	resolver   StatusResolver
	outlier    OutlierFilter
	compositor Compositor
	growth     GrowthEngine
	auditor    Auditor
	logger     Logger
	metrics    MetricsRecorder
	maxPlots   int
}

// Option customises pipeline construction.
type Option func(*Pipeline)

// WithLogger attaches a structured logger.
func WithLogger(logger Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetricsRecorder attaches an operation metrics sink.
func WithMetricsRecorder(metrics MetricsRecorder) Option {
	return func(p *Pipeline) {
		if metrics != nil {
			p.metrics = metrics
		}
	}
}

// WithMethods overrides the allometric method names to reconcile.
func WithMethods(methods ...string) Option {
	return func(p *Pipeline) {
		if len(methods) > 0 {
			p.methods = methods
		}
	}
}

// WithOutlierThresholds overrides the diameter spike thresholds in cm/yr.
func WithOutlierThresholds(growth, decline float64) Option {
	return func(p *Pipeline) {
		p.outlier = OutlierFilter{GrowthSpikeCmPerYr: growth, DeclineSpikeCmPerYr: decline}
	}
}

// WithPlotConcurrency bounds the number of plots processed in parallel.
func WithPlotConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxPlots = n
		}
	}
}

// NewPipeline constructs a pipeline with default methods, thresholds, and
// per-CPU plot concurrency.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		methods:  append([]string(nil), domain.DefaultMethods...),
		outlier:  NewOutlierFilter(),
		logger:   noopLogger{},
		metrics:  noopMetricsRecorder{},
		maxPlots: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// plotOutput is the result of reconciling one plot.
type plotOutput struct {
	individualYears []IndividualYearRecord
	plotYears       []PlotYearRecord
	annualSeries    []AnnualSeriesPoint
	exceptions      []Exception
	report          Report
}

// Run reconciles one site. Plots are independent and processed
// concurrently; outputs are merged in deterministic plot order. Data
// contract violations skip the offending individual and are reported, they
// never abort the run.
func (p *Pipeline) Run(ctx context.Context, input SiteInput) (SiteResult, error) {
	started := time.Now()
	result, err := p.run(ctx, input)
	p.metrics.Observe(ctx, "reconcile_site", err == nil, time.Since(started))
	return result, err
}

func (p *Pipeline) run(ctx context.Context, input SiteInput) (SiteResult, error) {
	if len(input.SurveyEvents) == 0 {
		return SiteResult{}, fmt.Errorf("%w: %s", ErrNoSurveyEvents, input.SiteID)
	}

	eventsByPlot := make(map[string][]SurveyEvent)
	for _, event := range input.SurveyEvents {
		eventsByPlot[event.PlotID] = append(eventsByPlot[event.PlotID], event)
	}
	obsByPlot := make(map[string][]StemObservation)
	var report Report
	unsurveyed := make(map[string]bool)
	for _, obs := range input.Observations {
		if _, ok := eventsByPlot[obs.PlotID]; !ok {
			if !unsurveyed[obs.PlotID] {
				unsurveyed[obs.PlotID] = true
				report.Add(Issue{
					Kind:    domain.IssueUnsurveyedPlot,
					PlotID:  obs.PlotID,
					Message: fmt.Sprintf("observations reference plot %s with no survey events", obs.PlotID),
				})
			}
			continue
		}
		obsByPlot[obs.PlotID] = append(obsByPlot[obs.PlotID], obs)
	}
	rosterByPlot := make(map[string][]TaggedIndividual)
	for _, tagged := range input.Individuals {
		if _, ok := eventsByPlot[tagged.PlotID]; !ok {
			continue
		}
		rosterByPlot[tagged.PlotID] = append(rosterByPlot[tagged.PlotID], tagged)
	}
	allometry := make(map[string][]AllometryRecord)
	for _, rec := range input.Allometry {
		allometry[rec.IndividualID] = append(allometry[rec.IndividualID], rec)
	}

	plots := make([]string, 0, len(eventsByPlot))
	for plot := range eventsByPlot {
		plots = append(plots, plot)
	}
	sort.Strings(plots)

	outputs := make([]plotOutput, len(plots))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.maxPlots)
	for i, plot := range plots {
		i, plot := i, plot
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			started := time.Now()
			outputs[i] = p.processPlot(plot, eventsByPlot[plot], obsByPlot[plot], rosterByPlot[plot], allometry)
			p.metrics.Observe(groupCtx, "reconcile_plot", true, time.Since(started))
			p.logger.Debug("plot reconciled", "plot", plot,
				"individual_years", len(outputs[i].individualYears),
				"plot_years", len(outputs[i].plotYears))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return SiteResult{}, err
	}

	result := SiteResult{
		SiteID:  input.SiteID,
		Methods: append([]string(nil), p.methods...),
		Report:  report,
	}
	for _, out := range outputs {
		result.IndividualYears = append(result.IndividualYears, out.individualYears...)
		result.PlotYears = append(result.PlotYears, out.plotYears...)
		result.AnnualSeries = append(result.AnnualSeries, out.annualSeries...)
		result.Exceptions = append(result.Exceptions, out.exceptions...)
		result.Report.Merge(out.report)
	}
	if result.Report.HasIssues() {
		p.logger.Warn("run completed with data contract issues",
			"site", input.SiteID, "issues", len(result.Report.Issues))
	}
	return result, nil
}

// processPlot reconciles one plot against its survey-year grid. It owns all
// of its state; nothing here is shared across plots.
func (p *Pipeline) processPlot(plotID string, events []SurveyEvent, observations []StemObservation, roster []TaggedIndividual, allometry map[string][]AllometryRecord) plotOutput {
	var out plotOutput
	grid := surveyGrid(events)

	obsByIndividual := make(map[string][]StemObservation)
	for _, obs := range observations {
		obsByIndividual[obs.IndividualID] = append(obsByIndividual[obs.IndividualID], obs)
	}
	ids := make([]string, 0, len(obsByIndividual))
	for id := range obsByIndividual {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	series := make(map[string]*individualSeries, len(ids))
	ordered := make([]*individualSeries, 0, len(ids))
	for _, id := range ids {
		s, issue := p.buildSeries(id, plotID, grid, obsByIndividual[id], allometry[id])
		if issue != nil {
			out.report.Add(*issue)
			continue
		}
		series[id] = s
		ordered = append(ordered, s)
	}

	// Audit runs before compositing so that original estimate availability
	// is still visible.
	out.exceptions = p.auditor.Audit(roster, series)

	for _, s := range ordered {
		p.compositor.Composite(s)
		out.individualYears = append(out.individualYears, p.seriesRecords(s)...)
	}

	aggregator := PlotAggregator{Methods: p.methods}
	out.plotYears = aggregator.Aggregate(events, out.individualYears, len(out.exceptions))

	years := make([]int, len(out.plotYears))
	for i, row := range out.plotYears {
		years[i] = row.Year
	}
	for _, method := range p.methods {
		totals := make([]float64, len(out.plotYears))
		for i, row := range out.plotYears {
			totals[i] = row.TotalDensity[method]
		}
		rates := p.growth.YearOverYear(years, totals)
		trend := p.growth.TrendSlope(years, totals)
		for i := range out.plotYears {
			out.plotYears[i].TotalGrowth[method] = rates[i]
			out.plotYears[i].TotalTrend[method] = trend
		}
		out.annualSeries = append(out.annualSeries, p.growth.AnnualSeries(plotID, method, years, totals)...)
	}
	return out
}

// buildSeries materializes one individual's dense working series over the
// grid and resolves its status timeline. A vocabulary violation returns an
// issue and no series.
func (p *Pipeline) buildSeries(id, plotID string, grid []int, observations []StemObservation, allometry []AllometryRecord) (*individualSeries, *Issue) {
	flags, err := reduceStemFlags(observations)
	if err != nil {
		return nil, &Issue{
			Kind:         domain.IssueUnknownStatus,
			PlotID:       plotID,
			IndividualID: id,
			Message:      err.Error(),
		}
	}

	index := make(map[int]int, len(grid))
	for i, year := range grid {
		index[year] = i
	}
	n := len(grid)
	s := &individualSeries{
		id:         id,
		plotID:     plotID,
		grid:       grid,
		diameter:   make([]float64, n),
		growthForm: make([]string, n),
		hasObs:     make([]bool, n),
		status:     make([]Status, n),
		provenance: make([]Provenance, n),
		biomass:    make(map[string][]float64, len(p.methods)),
	}
	for i := range s.diameter {
		s.diameter[i] = domain.Missing()
	}
	for _, method := range p.methods {
		values := make([]float64, n)
		for i := range values {
			values[i] = domain.Missing()
		}
		s.biomass[method] = values
	}

	for _, obs := range observations {
		i, onGrid := index[obs.Year]
		if !onGrid {
			continue
		}
		s.hasObs[i] = true
		if obs.GrowthForm != "" {
			if _, err := domain.Categorize(obs.GrowthForm, obs.Diameter); err != nil {
				return nil, &Issue{
					Kind:         domain.IssueUnknownGrowthForm,
					PlotID:       plotID,
					IndividualID: id,
					Message:      err.Error(),
				}
			}
			s.growthForm[i] = obs.GrowthForm
		}
		// Aggregated diameter is the max across stems.
		if !domain.IsMissing(obs.Diameter) {
			if domain.IsMissing(s.diameter[i]) || obs.Diameter > s.diameter[i] {
				s.diameter[i] = obs.Diameter
			}
		}
	}

	// Multi-stem biomass sums per year and method, staying missing only when
	// every contribution is missing.
	for _, rec := range allometry {
		i, onGrid := index[rec.Year]
		if !onGrid {
			continue
		}
		values, tracked := s.biomass[rec.Method]
		if !tracked || domain.IsMissing(rec.BiomassKg) {
			continue
		}
		if domain.IsMissing(values[i]) {
			values[i] = rec.BiomassKg
		} else {
			values[i] += rec.BiomassKg
		}
	}

	s.status = p.resolver.Resolve(grid, flags)
	for i := range grid {
		if s.hasObs[i] {
			s.provenance[i] = ProvenanceOriginal
		} else {
			s.provenance[i] = ProvenanceFilled
		}
	}

	for i, rejected := range p.outlier.Flag(grid, s.diameter) {
		if !rejected {
			continue
		}
		s.diameter[i] = domain.Missing()
		for _, values := range s.biomass {
			values[i] = domain.Missing()
		}
		s.provenance[i] = ProvenanceOutlier
	}
	return s, nil
}

// seriesRecords converts a composited series into individual-year records
// with per-method growth metrics.
func (p *Pipeline) seriesRecords(s *individualSeries) []IndividualYearRecord {
	growth := make(map[string][]float64, len(s.biomass))
	trend := make(map[string]float64, len(s.biomass))
	for _, method := range p.methods {
		values := s.biomass[method]
		growth[method] = p.growth.YearOverYear(s.grid, values)
		trend[method] = p.growth.TrendSlope(s.grid, values)
	}

	records := make([]IndividualYearRecord, 0, len(s.grid))
	for i, year := range s.grid {
		category, err := domain.Categorize(s.growthForm[i], s.diameter[i])
		if err != nil {
			category = CategoryExcluded
		}
		rec := IndividualYearRecord{
			IndividualID:   s.id,
			PlotID:         s.plotID,
			Year:           year,
			Diameter:       s.diameter[i],
			GrowthForm:     s.growthForm[i],
			Category:       category,
			Status:         s.status[i],
			HasObservation: s.hasObs[i],
			Provenance:     s.provenance[i],
			BiomassKg:      make(map[string]float64, len(p.methods)),
			GrowthKgPerYr:  make(map[string]float64, len(p.methods)),
			TrendKgPerYr:   make(map[string]float64, len(p.methods)),
		}
		for _, method := range p.methods {
			rec.BiomassKg[method] = s.biomass[method][i]
			rec.GrowthKgPerYr[method] = growth[method][i]
			rec.TrendKgPerYr[method] = trend[method]
		}
		records = append(records, rec)
	}
	return records
}

// surveyGrid returns the sorted distinct survey years of a plot.
func surveyGrid(events []SurveyEvent) []int {
	seen := make(map[int]struct{}, len(events))
	grid := make([]int, 0, len(events))
	for _, event := range events {
		if _, ok := seen[event.Year]; ok {
			continue
		}
		seen[event.Year] = struct{}{}
		grid = append(grid, event.Year)
	}
	sort.Ints(grid)
	return grid
}
