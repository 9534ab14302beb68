package analysis

import (
	"fmt"
	"math"

	"home-battery-roi/internal/backtest"
	"home-battery-roi/internal/model"
)

// Finance holds the economic inputs for an ROI calculation.
type Finance struct {
	CostPerKWh    float64 // purchase cost per kWh of capacity
	LifetimeYears float64
}

func (f Finance) Validate() error {
	if math.IsNaN(f.CostPerKWh) || math.IsInf(f.CostPerKWh, 0) || f.CostPerKWh < 0 {
		return fmt.Errorf("%w: cost per kWh must be a finite value >= 0, got %v", model.ErrInvalidInput, f.CostPerKWh)
	}
	if math.IsNaN(f.LifetimeYears) || math.IsInf(f.LifetimeYears, 0) || f.LifetimeYears <= 0 {
		return fmt.Errorf("%w: lifetime must be > 0 years, got %v", model.ErrInvalidInput, f.LifetimeYears)
	}
	return nil
}

// ROISummary reduces one simulation to its financial outcome.
type ROISummary struct {
	CapacityKWh        float64       `json:"capacity_kwh"`
	AnnualSavings      float64       `json:"annual_savings"`
	Investment         float64       `json:"investment"`
	Payback            model.Payback `json:"payback_years"`
	LifetimeNetSavings float64       `json:"lifetime_net_savings"`
}

// AnalyzeROI computes savings, investment and payback for a simulation.
//
// The simulated series is taken to span exactly one year; its total
// savings are reported as the annual savings without any scaling.
func AnalyzeROI(sim *backtest.SimulationResult, fin Finance) ROISummary {
	savings := sim.TotalBaselineCost() - sim.TotalBatteryCost()
	investment := sim.CapacityKWh * fin.CostPerKWh

	payback := model.NoPayback()
	if savings > 0 {
		payback = model.HasPayback(investment / savings)
	}

	return ROISummary{
		CapacityKWh:        sim.CapacityKWh,
		AnnualSavings:      savings,
		Investment:         investment,
		Payback:            payback,
		LifetimeNetSavings: savings*fin.LifetimeYears - investment,
	}
}
