package analysis

import (
	"math"
	"sort"
	"time"

	"home-battery-roi/internal/model"
)

// EnergyProfile summarises a preprocessed series independent of any
// battery size. It shows how much surplus there is to shift and when the
// household pays day or night prices for its imports.
type EnergyProfile struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Count int `json:"count"`

	DayImportKWh   float64 `json:"day_import_kwh"`
	NightImportKWh float64 `json:"night_import_kwh"`
	DayExportKWh   float64 `json:"day_export_kwh"`
	NightExportKWh float64 `json:"night_export_kwh"`

	// SurplusIntervals counts intervals where export exceeded import.
	SurplusIntervals int `json:"surplus_intervals"`

	MaxDeficitKWh float64 `json:"max_deficit_kwh"`
	P95DeficitKWh float64 `json:"p95_deficit_kwh"`
	MaxSurplusKWh float64 `json:"max_surplus_kwh"`
	P95SurplusKWh float64 `json:"p95_surplus_kwh"`

	BaselineCost float64 `json:"baseline_cost"`
}

// Span returns the covered time range.
func (p EnergyProfile) Span() time.Duration { return p.End.Sub(p.Start) }

func ComputeProfile(records []model.IntervalRecord) EnergyProfile {
	p := EnergyProfile{}
	if len(records) == 0 {
		return p
	}
	p.Count = len(records)
	p.Start = records[0].Time
	p.End = records[len(records)-1].Time

	deficits := make([]float64, 0, len(records))
	surpluses := make([]float64, 0, len(records))
	for _, r := range records {
		if r.IsDayTariff {
			p.DayImportKWh += r.TotalImportKWh
			p.DayExportKWh += r.TotalExportKWh
		} else {
			p.NightImportKWh += r.TotalImportKWh
			p.NightExportKWh += r.TotalExportKWh
		}
		p.BaselineCost += r.BaselineCost

		switch net := r.NetKWh(); {
		case net > 0:
			deficits = append(deficits, net)
		case net < 0:
			surpluses = append(surpluses, -net)
		}
	}
	p.SurplusIntervals = len(surpluses)

	sort.Float64s(deficits)
	sort.Float64s(surpluses)
	p.MaxDeficitKWh = maxSorted(deficits)
	p.P95DeficitKWh = percentileSorted(deficits, 0.95)
	p.MaxSurplusKWh = maxSorted(surpluses)
	p.P95SurplusKWh = percentileSorted(surpluses, 0.95)
	return p
}

func maxSorted(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)-1]
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
