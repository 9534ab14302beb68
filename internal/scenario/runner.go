package scenario

import (
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"home-battery-roi/internal/analysis"
	"home-battery-roi/internal/backtest"
	"home-battery-roi/internal/config"
	"home-battery-roi/internal/logging"
	"home-battery-roi/internal/model"
)

// Result is the outcome for one candidate capacity. Exactly one of
// Summary and Err is set.
type Result struct {
	CapacityKWh float64
	Simulation  *backtest.SimulationResult
	Summary     *analysis.ROISummary
	Err         error
}

// Report is everything a run produces.
type Report struct {
	// Results holds one entry per requested capacity, in request order.
	Results []Result

	// Summaries holds the summaries of the scenarios that succeeded, in
	// request order.
	Summaries      []analysis.ROISummary
	Recommendation analysis.Recommendation

	Anomalies []backtest.Anomaly
	Profile   analysis.EnergyProfile
}

// Failed returns the scenarios that could not be simulated.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Lookup returns the first successful scenario with the given capacity.
func (r *Report) Lookup(capacityKWh float64) (*Result, bool) {
	for i := range r.Results {
		if r.Results[i].CapacityKWh == capacityKWh && r.Results[i].Err == nil {
			return &r.Results[i], true
		}
	}
	return nil, false
}

// Featured returns the scenario to chart by default: the recommended
// capacity, or the first successful scenario when nothing is recommended.
func (r *Report) Featured() (*Result, bool) {
	if c, ok := r.Recommendation.Capacity(); ok {
		return r.Lookup(c)
	}
	for i := range r.Results {
		if r.Results[i].Err == nil {
			return &r.Results[i], true
		}
	}
	return nil, false
}

// Runner evaluates candidate capacities against one meter series.
// Capacities are independent, so they are simulated concurrently; each
// simulation on its own is strictly sequential.
type Runner struct {
	logger  *zap.Logger
	workers int
}

// NewRunner returns a Runner. workers <= 0 means GOMAXPROCS.
func NewRunner(logger *zap.Logger, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{logger: logging.OrNop(logger), workers: workers}
}

// Run preprocesses the samples and evaluates every configured capacity.
// Invalid samples or configuration fail the whole run; an invalid
// capacity only fails its own scenario.
func (r *Runner) Run(samples []model.MeterSample, cfg config.Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	series, err := backtest.Preprocess(samples, cfg.Tariff.ToModel())
	if err != nil {
		return nil, fmt.Errorf("preprocess meter samples: %w", err)
	}
	if len(series.Anomalies) > 0 {
		r.logger.Warn("meter counters went backwards; deltas clamped to zero",
			zap.Int("anomalies", len(series.Anomalies)),
			zap.Int("first_index", series.Anomalies[0].Index),
			zap.String("first_counter", series.Anomalies[0].Counter),
		)
	}
	return r.RunSeries(series, cfg), nil
}

// RunSeries evaluates every configured capacity against an already
// preprocessed series.
func (r *Runner) RunSeries(series *backtest.Series, cfg config.Config) *Report {
	report := &Report{
		Results:   make([]Result, len(cfg.Capacities)),
		Anomalies: series.Anomalies,
		Profile:   analysis.ComputeProfile(series.Records),
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, capacity := range cfg.Capacities {
		i, capacity := i, capacity
		g.Go(func() error {
			report.Results[i] = r.runOne(series.Records, capacity, cfg)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range report.Results {
		if res.Err != nil {
			r.logger.Warn("scenario failed", zap.Float64("capacity_kwh", res.CapacityKWh), zap.Error(res.Err))
			continue
		}
		report.Summaries = append(report.Summaries, *res.Summary)
	}
	report.Recommendation = analysis.Recommend(report.Summaries, cfg.Battery.LifetimeYears)

	if c, ok := report.Recommendation.Capacity(); ok {
		r.logger.Info("scenarios evaluated",
			zap.Int("scenarios", len(report.Results)),
			zap.Float64("recommended_kwh", c),
			zap.Stringer("payback", report.Recommendation.Best.Payback),
		)
	} else {
		r.logger.Info("scenarios evaluated; no capacity pays back within lifetime",
			zap.Int("scenarios", len(report.Results)),
			zap.Float64("lifetime_years", cfg.Battery.LifetimeYears),
		)
	}
	return report
}

func (r *Runner) runOne(records []model.IntervalRecord, capacity float64, cfg config.Config) (res Result) {
	res.CapacityKWh = capacity
	defer func() {
		if p := recover(); p != nil {
			res = Result{CapacityKWh: capacity, Err: fmt.Errorf("capacity %v kWh: simulation panicked: %v", capacity, p)}
		}
	}()

	if math.IsNaN(capacity) || capacity <= 0 {
		res.Err = fmt.Errorf("%w: capacity must be > 0 kWh, got %v", model.ErrInvalidInput, capacity)
		return res
	}
	sim, err := backtest.Simulate(records, cfg.BatteryParams(capacity), cfg.Tariff.ToModel())
	if err != nil {
		res.Err = fmt.Errorf("capacity %v kWh: %w", capacity, err)
		return res
	}
	summary := analysis.AnalyzeROI(sim, cfg.Finance())
	res.Simulation = sim
	res.Summary = &summary
	return res
}
