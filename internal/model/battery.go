package model

import (
	"fmt"
	"math"
)

// InitialChargeFraction is the state of charge every scenario starts from.
const InitialChargeFraction = 0.5

// BatteryParams defines the physical parameters of a home battery.
// Units:
// - CapacityKWh: kWh of usable storage
// - Efficiency: round-trip efficiency in (0, 1], applied on the charging leg only
type BatteryParams struct {
	CapacityKWh float64
	Efficiency  float64
}

func (p BatteryParams) Validate() error {
	if math.IsNaN(p.CapacityKWh) || math.IsInf(p.CapacityKWh, 0) || p.CapacityKWh < 0 {
		return fmt.Errorf("%w: capacity must be a finite value >= 0, got %v", ErrInvalidInput, p.CapacityKWh)
	}
	if math.IsNaN(p.Efficiency) || p.Efficiency <= 0 || p.Efficiency > 1 {
		return fmt.Errorf("%w: round-trip efficiency must be in (0, 1], got %v", ErrInvalidInput, p.Efficiency)
	}
	return nil
}

// BatteryState is the only state carried from one interval to the next.
type BatteryState struct {
	ChargeKWh float64
}

// NewBatteryState returns the starting state for a battery of the given
// capacity.
func NewBatteryState(p BatteryParams) BatteryState {
	return BatteryState{ChargeKWh: p.CapacityKWh * InitialChargeFraction}
}

// StepResult captures what happened in one interval.
type StepResult struct {
	NetKWh float64 // import - export before the battery acts

	DischargedKWh float64 // energy delivered by the battery
	StoredKWh     float64 // energy that ended up in the battery
	AbsorbedKWh   float64 // surplus taken from the house to store StoredKWh (StoredKWh / efficiency)

	ResidualImportKWh float64
	ResidualExportKWh float64

	ChargeStart float64
	ChargeEnd   float64

	Cost float64 // cost of the interval with the battery present
}

// Step advances the battery through one interval and returns the new
// state. The receiver is not modified.
//
// A deficit is covered from the battery first; a surplus is stored up to
// the remaining headroom, losing (1 - efficiency) of what is absorbed.
// Discharge is lossless. A zero-capacity battery never acts, so its
// residual flows equal the raw flows and its cost equals the baseline.
func (s BatteryState) Step(rec IntervalRecord, p BatteryParams, t Tariff) (BatteryState, StepResult) {
	res := StepResult{
		NetKWh:      rec.NetKWh(),
		ChargeStart: s.ChargeKWh,
	}

	if p.CapacityKWh == 0 {
		res.ResidualImportKWh = rec.TotalImportKWh
		res.ResidualExportKWh = rec.TotalExportKWh
		res.Cost = rec.BaselineCost
		return s, res
	}

	charge := s.ChargeKWh
	if res.NetKWh > 0 {
		discharge := math.Min(res.NetKWh, charge)
		charge -= discharge
		res.DischargedKWh = discharge
		res.ResidualImportKWh = res.NetKWh - discharge
		res.Cost = res.ResidualImportKWh * t.ImportPrice(rec.IsDayTariff)
	} else {
		surplus := -res.NetKWh
		stored := math.Min(surplus*p.Efficiency, p.CapacityKWh-charge)
		if stored < 0 {
			stored = 0
		}
		charge = math.Min(p.CapacityKWh, charge+stored)
		res.StoredKWh = stored
		res.AbsorbedKWh = stored / p.Efficiency
		// stored/efficiency can round a hair above surplus.
		res.ResidualExportKWh = math.Max(0, surplus-res.AbsorbedKWh)
		res.Cost = 0 - res.ResidualExportKWh*t.FeedInPrice
	}

	res.ChargeEnd = charge
	return BatteryState{ChargeKWh: charge}, res
}
