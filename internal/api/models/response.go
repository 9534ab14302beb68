package models

import (
	"time"

	"home-battery-roi/internal/analysis"
	"home-battery-roi/internal/backtest"
	"home-battery-roi/internal/config"
	"home-battery-roi/internal/model"
)

// RunResponse represents the response from a run
type RunResponse struct {
	ID             string                 `json:"id"`
	Status         string                 `json:"status"`
	Summaries      []Summary              `json:"summaries"`
	Failed         []FailedScenario       `json:"failed,omitempty"`
	Recommendation Recommendation         `json:"recommendation"`
	Anomalies      AnomalyReport          `json:"anomalies"`
	Profile        analysis.EnergyProfile `json:"profile"`
	Config         config.Config          `json:"config"`
	Trajectory     *Trajectory            `json:"trajectory,omitempty"`
}

// Summary is an ROI summary with currency amounts rounded to cents.
type Summary struct {
	CapacityKWh        float64       `json:"capacity_kwh"`
	AnnualSavings      string        `json:"annual_savings"`
	Investment         string        `json:"investment"`
	PaybackYears       model.Payback `json:"payback_years"`
	LifetimeNetSavings string        `json:"lifetime_net_savings"`
}

// FailedScenario reports a capacity that could not be simulated.
type FailedScenario struct {
	CapacityKWh float64 `json:"capacity_kwh"`
	Error       string  `json:"error"`
}

// Recommendation carries the chosen capacity, or none when no capacity
// pays back within the lifetime.
type Recommendation struct {
	CostEffective bool     `json:"cost_effective"`
	CapacityKWh   *float64 `json:"capacity_kwh"`
	Summary       *Summary `json:"summary,omitempty"`
	Message       string   `json:"message"`
}

// AnomalyReport lists meter counter resets found while preprocessing.
type AnomalyReport struct {
	Count int                `json:"count"`
	Items []backtest.Anomaly `json:"items,omitempty"`
}

// Trajectory holds the chart series of one scenario.
type Trajectory struct {
	CapacityKWh     float64     `json:"capacity_kwh"`
	Time            []time.Time `json:"time"`
	Charge          []float64   `json:"charge_kwh"`
	CumBaselineCost []float64   `json:"cum_baseline_cost"`
	CumBatteryCost  []float64   `json:"cum_battery_cost"`
}

// LedgerResponse is the per-interval ledger of one scenario.
type LedgerResponse struct {
	CapacityKWh float64     `json:"capacity_kwh"`
	Rows        []LedgerRow `json:"rows"`
}

// LedgerRow represents one interval in the simulation ledger
type LedgerRow struct {
	Index             int       `json:"index"`
	Time              time.Time `json:"time"`
	Tariff            string    `json:"tariff"` // "day" or "night"
	Action            string    `json:"action"` // "CHARGING", "DISCHARGING", "IDLE"
	ImportKWh         float64   `json:"import_kwh"`
	ExportKWh         float64   `json:"export_kwh"`
	DischargedKWh     float64   `json:"discharged_kwh"`
	StoredKWh         float64   `json:"stored_kwh"`
	ResidualImportKWh float64   `json:"residual_import_kwh"`
	ResidualExportKWh float64   `json:"residual_export_kwh"`
	ChargeStart       float64   `json:"charge_start_kwh"`
	ChargeEnd         float64   `json:"charge_end_kwh"`
	BaselineCost      float64   `json:"baseline_cost"`
	BatteryCost       float64   `json:"battery_cost"`
	CumBaselineCost   float64   `json:"cum_baseline_cost"`
	CumBatteryCost    float64   `json:"cum_battery_cost"`
}

// PresetInfo represents a configuration preset file
type PresetInfo struct {
	ID     string        `json:"id"`
	File   string        `json:"file"`
	Config config.Config `json:"config"`
}

// ParameterInfo describes a configuration parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "float[]"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
