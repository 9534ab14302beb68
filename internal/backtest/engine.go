package backtest

import (
	"fmt"

	"home-battery-roi/internal/model"
)

// Simulate replays the interval records through a single battery.
//
// It is a fold over the records: the state starts at half capacity and
// each step's output state is the next step's input. Records are never
// reordered, and the same inputs always give the same trajectories.
func Simulate(records []model.IntervalRecord, params model.BatteryParams, tariff model.Tariff) (*SimulationResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no intervals", model.ErrInvalidInput)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := tariff.Validate(); err != nil {
		return nil, err
	}

	n := len(records)
	res := &SimulationResult{
		CapacityKWh:  params.CapacityKWh,
		Efficiency:   params.Efficiency,
		Charge:       make([]float64, 0, n),
		BaselineCost: make([]float64, 0, n),
		BatteryCost:  make([]float64, 0, n),
		Ledger:       make([]LedgerRow, 0, n),
	}

	state := model.NewBatteryState(params)
	var cumBaseline, cumBattery float64

	for _, rec := range records {
		var step model.StepResult
		state, step = state.Step(rec, params, tariff)

		cumBaseline += rec.BaselineCost
		cumBattery += step.Cost

		res.Charge = append(res.Charge, step.ChargeEnd)
		res.BaselineCost = append(res.BaselineCost, rec.BaselineCost)
		res.BatteryCost = append(res.BatteryCost, step.Cost)

		res.Ledger = append(res.Ledger, LedgerRow{
			Index:       rec.Index,
			Time:        rec.Time,
			IsDayTariff: rec.IsDayTariff,

			Action: model.ActionFromStep(step),

			ImportKWh: rec.TotalImportKWh,
			ExportKWh: rec.TotalExportKWh,
			NetKWh:    step.NetKWh,

			DischargedKWh: step.DischargedKWh,
			StoredKWh:     step.StoredKWh,

			ResidualImportKWh: step.ResidualImportKWh,
			ResidualExportKWh: step.ResidualExportKWh,

			ChargeStart: step.ChargeStart,
			ChargeEnd:   step.ChargeEnd,

			BaselineCost:    rec.BaselineCost,
			BatteryCost:     step.Cost,
			CumBaselineCost: cumBaseline,
			CumBatteryCost:  cumBattery,
		})
	}

	return res, nil
}
