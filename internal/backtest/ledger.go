package backtest

import (
	"time"

	"home-battery-roi/internal/model"
)

// LedgerRow is one row of per-interval output.
// This is the primary artifact for "what happened" in a simulation.
type LedgerRow struct {
	Index int
	Time  time.Time

	IsDayTariff bool

	Action model.Action

	ImportKWh float64
	ExportKWh float64
	NetKWh    float64

	DischargedKWh float64
	StoredKWh     float64

	ResidualImportKWh float64
	ResidualExportKWh float64

	ChargeStart float64
	ChargeEnd   float64

	BaselineCost    float64
	BatteryCost     float64
	CumBaselineCost float64
	CumBatteryCost  float64
}

// SimulationResult is the outcome of replaying one series through one
// battery. Charge, BaselineCost and BatteryCost are parallel to the
// interval records.
type SimulationResult struct {
	CapacityKWh float64
	Efficiency  float64

	Charge       []float64
	BaselineCost []float64
	BatteryCost  []float64

	Ledger []LedgerRow
}

// TotalBaselineCost sums the no-battery cost trajectory.
func (r *SimulationResult) TotalBaselineCost() float64 { return sum(r.BaselineCost) }

// TotalBatteryCost sums the with-battery cost trajectory.
func (r *SimulationResult) TotalBatteryCost() float64 { return sum(r.BatteryCost) }

// Cumulative returns the running totals of the two cost trajectories,
// the series behind a cumulative-cost comparison chart.
func (r *SimulationResult) Cumulative() (baseline, battery []float64) {
	baseline = make([]float64, len(r.BaselineCost))
	battery = make([]float64, len(r.BatteryCost))
	var cb, cn float64
	for i := range r.BaselineCost {
		cb += r.BaselineCost[i]
		cn += r.BatteryCost[i]
		baseline[i] = cb
		battery[i] = cn
	}
	return baseline, battery
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}
