package model

import (
	"errors"
	"time"
)

// ErrInvalidInput is wrapped by every input-validation failure in the
// simulation core. Test for it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// MeterSample is one row of a smart meter export.
// All counters are cumulative kWh readings; band 1 and band 2 are the
// meter's two tariff registers (T1/T2).
type MeterSample struct {
	Time time.Time `json:"time"`

	ImportT1KWh float64 `json:"import_t1_kwh"`
	ImportT2KWh float64 `json:"import_t2_kwh"`
	ExportT1KWh float64 `json:"export_t1_kwh"`
	ExportT2KWh float64 `json:"export_t2_kwh"`
}

// IntervalRecord holds the energy that flowed between a sample and the one
// before it. The first record of a series always has zero flows.
type IntervalRecord struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`

	TotalImportKWh float64 `json:"total_import_kwh"`
	TotalExportKWh float64 `json:"total_export_kwh"`

	IsDayTariff bool `json:"is_day_tariff"`

	// BaselineCost is the cost of the interval without a battery.
	BaselineCost float64 `json:"baseline_cost"`
}

// NetKWh returns import minus export. Positive means a deficit the
// household has to cover, negative means a surplus.
func (r IntervalRecord) NetKWh() float64 {
	return r.TotalImportKWh - r.TotalExportKWh
}
