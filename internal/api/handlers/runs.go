package handlers

import (
	"fmt"
	"net/http"
	"time"

	"home-battery-roi/internal/analysis"
	"home-battery-roi/internal/api/models"
	"home-battery-roi/internal/backtest"
	"home-battery-roi/internal/config"
	"home-battery-roi/internal/data"
	"home-battery-roi/internal/model"
	"home-battery-roi/internal/report"
	"home-battery-roi/internal/scenario"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxUploadBytes bounds multipart meter uploads. A year of 15-minute
// readings is around 2 MB.
const maxUploadBytes = 32 << 20

// RunHandler handles scenario runs
type RunHandler struct {
	cache   *data.RunCache
	presets *PresetHandler
	logger  *zap.Logger
	workers int
}

// NewRunHandler creates a new run handler
func NewRunHandler(cache *data.RunCache, presets *PresetHandler, logger *zap.Logger, workers int) *RunHandler {
	return &RunHandler{
		cache:   cache,
		presets: presets,
		logger:  logger,
		workers: workers,
	}
}

// RunScenarios handles POST /api/v1/runs
func (h *RunHandler) RunScenarios(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	base, err := h.presets.Load(req.Preset)
	if err != nil {
		abortWithRunError(c, err)
		return
	}
	cfg := config.Merge(*base, req.Overrides)

	h.run(c, req.Samples, cfg, req.Options)
}

// RunScenariosCSV handles POST /api/v1/runs/csv
//
// Form fields: file (meter CSV, required), config (YAML, optional),
// timezone (IANA name for timestamps without offset, default UTC),
// include_trajectory (bool).
func (h *RunHandler) RunScenariosCSV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Errorf("file: %w", err))
		return
	}

	loc := time.UTC
	if tz := c.PostForm("timezone"); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Errorf("timezone: %w", err))
			return
		}
	}

	cfg := config.Default()
	if raw := c.PostForm("config"); raw != "" {
		parsed, err := config.Parse([]byte(raw))
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
			return
		}
		cfg = *parsed
	}

	f, err := fh.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	defer f.Close()

	samples, err := data.ReadMeterCSV(f, loc)
	if err != nil {
		abortWithRunError(c, err)
		return
	}

	h.run(c, samples, cfg, models.RunOptions{IncludeTrajectory: c.PostForm("include_trajectory") == "true"})
}

func (h *RunHandler) run(c *gin.Context, samples []model.MeterSample, cfg config.Config, opts models.RunOptions) {
	workers := h.workers
	if opts.Workers > 0 && (workers <= 0 || opts.Workers < workers) {
		workers = opts.Workers
	}

	rep, err := scenario.NewRunner(h.logger, workers).Run(samples, cfg)
	if err != nil {
		abortWithRunError(c, err)
		return
	}
	id := h.cache.Put(rep)

	resp := buildRunResponse(id, rep, cfg, opts.SortByPayback)
	if opts.IncludeTrajectory {
		if res, ok := rep.Featured(); ok {
			resp.Trajectory = buildTrajectory(res.Simulation)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetTrajectory handles GET /api/v1/runs/:id/trajectory
func (h *RunHandler) GetTrajectory(c *gin.Context) {
	res, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildTrajectory(res.Simulation))
}

// GetLedger handles GET /api/v1/runs/:id/ledger
func (h *RunHandler) GetLedger(c *gin.Context) {
	res, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.LedgerResponse{
		CapacityKWh: res.CapacityKWh,
		Rows:        convertLedger(res.Simulation.Ledger),
	})
}

// lookup resolves the run and scenario addressed by the request, writing
// an error response when there is none.
func (h *RunHandler) lookup(c *gin.Context) (*scenario.Result, bool) {
	rep, ok := h.cache.Get(c.Param("id"))
	if !ok {
		abortWithError(c, http.StatusNotFound, "RUN_NOT_FOUND", fmt.Errorf("run %q not found or expired", c.Param("id")))
		return nil, false
	}

	var q models.SeriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return nil, false
	}

	var res *scenario.Result
	if q.Capacity != nil {
		res, ok = rep.Lookup(*q.Capacity)
	} else {
		res, ok = rep.Featured()
	}
	if !ok {
		abortWithError(c, http.StatusNotFound, "SCENARIO_NOT_FOUND", fmt.Errorf("no successful scenario for the requested capacity"))
		return nil, false
	}
	return res, true
}

func buildRunResponse(id string, rep *scenario.Report, cfg config.Config, byPayback bool) models.RunResponse {
	resp := models.RunResponse{
		ID:        id,
		Status:    "completed",
		Summaries: make([]models.Summary, 0, len(rep.Summaries)),
		Anomalies: models.AnomalyReport{
			Count: len(rep.Anomalies),
			Items: rep.Anomalies,
		},
		Profile: rep.Profile,
		Config:  cfg,
	}
	summaries := rep.Summaries
	if byPayback {
		summaries = analysis.RankByPayback(summaries)
	}
	for _, s := range summaries {
		resp.Summaries = append(resp.Summaries, convertSummary(s))
	}
	for _, f := range rep.Failed() {
		resp.Failed = append(resp.Failed, models.FailedScenario{CapacityKWh: f.CapacityKWh, Error: f.Err.Error()})
	}
	if len(resp.Failed) > 0 {
		resp.Status = "partial"
	}

	if best := rep.Recommendation.Best; best != nil {
		capacity := best.CapacityKWh
		s := convertSummary(*best)
		resp.Recommendation = models.Recommendation{
			CostEffective: true,
			CapacityKWh:   &capacity,
			Summary:       &s,
			Message: fmt.Sprintf("A %.1f kWh battery pays back in %s and saves %s over %g years.",
				capacity, best.Payback, report.Money(best.LifetimeNetSavings).StringFixed(2), cfg.Battery.LifetimeYears),
		}
	} else {
		resp.Recommendation = models.Recommendation{
			Message: fmt.Sprintf("No capacity pays back within the %g year lifetime; a battery is not cost-effective for this profile.", cfg.Battery.LifetimeYears),
		}
	}
	return resp
}

func convertSummary(s analysis.ROISummary) models.Summary {
	return models.Summary{
		CapacityKWh:        s.CapacityKWh,
		AnnualSavings:      report.Money(s.AnnualSavings).StringFixed(2),
		Investment:         report.Money(s.Investment).StringFixed(2),
		PaybackYears:       s.Payback,
		LifetimeNetSavings: report.Money(s.LifetimeNetSavings).StringFixed(2),
	}
}

func buildTrajectory(sim *backtest.SimulationResult) *models.Trajectory {
	base, batt := sim.Cumulative()
	times := make([]time.Time, len(sim.Ledger))
	for i, row := range sim.Ledger {
		times[i] = row.Time
	}
	return &models.Trajectory{
		CapacityKWh:     sim.CapacityKWh,
		Time:            times,
		Charge:          sim.Charge,
		CumBaselineCost: base,
		CumBatteryCost:  batt,
	}
}

func convertLedger(ledger []backtest.LedgerRow) []models.LedgerRow {
	result := make([]models.LedgerRow, len(ledger))
	for i, row := range ledger {
		tariff := "night"
		if row.IsDayTariff {
			tariff = "day"
		}
		result[i] = models.LedgerRow{
			Index:             row.Index,
			Time:              row.Time,
			Tariff:            tariff,
			Action:            string(row.Action),
			ImportKWh:         row.ImportKWh,
			ExportKWh:         row.ExportKWh,
			DischargedKWh:     row.DischargedKWh,
			StoredKWh:         row.StoredKWh,
			ResidualImportKWh: row.ResidualImportKWh,
			ResidualExportKWh: row.ResidualExportKWh,
			ChargeStart:       row.ChargeStart,
			ChargeEnd:         row.ChargeEnd,
			BaselineCost:      row.BaselineCost,
			BatteryCost:       row.BatteryCost,
			CumBaselineCost:   row.CumBaselineCost,
			CumBatteryCost:    row.CumBatteryCost,
		}
	}
	return result
}
