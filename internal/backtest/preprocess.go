package backtest

import (
	"fmt"
	"math"
	"time"

	"home-battery-roi/internal/model"
)

// Counter names used in Anomaly records.
const (
	CounterImportT1 = "import_t1"
	CounterImportT2 = "import_t2"
	CounterExportT1 = "export_t1"
	CounterExportT2 = "export_t2"
)

// Anomaly records a cumulative counter that went backwards (a meter reset
// or rollover). The delta was clamped to zero.
type Anomaly struct {
	Index    int     `json:"index"`
	Counter  string  `json:"counter"`
	DeltaKWh float64 `json:"delta_kwh"`
}

// Series is the preprocessed form of a meter export.
type Series struct {
	Records   []model.IntervalRecord
	Anomalies []Anomaly
}

// Preprocess turns cumulative meter samples into one IntervalRecord per
// sample. Samples must be ordered by strictly increasing time and carry
// finite counters; anything else is rejected with model.ErrInvalidInput.
func Preprocess(samples []model.MeterSample, tariff model.Tariff) (*Series, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", model.ErrInvalidInput)
	}
	if err := tariff.Validate(); err != nil {
		return nil, err
	}

	out := &Series{Records: make([]model.IntervalRecord, 0, len(samples))}
	for i, s := range samples {
		if err := checkSample(i, s); err != nil {
			return nil, err
		}
		rec := model.IntervalRecord{
			Index:       i,
			Time:        s.Time,
			IsDayTariff: tariff.IsDay(s.Time),
		}
		if i > 0 {
			prev := samples[i-1]
			if !s.Time.After(prev.Time) {
				return nil, fmt.Errorf("%w: sample %d at %s is not after sample %d at %s",
					model.ErrInvalidInput, i, s.Time.Format(time.RFC3339), i-1, prev.Time.Format(time.RFC3339))
			}
			imp1 := out.delta(i, CounterImportT1, s.ImportT1KWh-prev.ImportT1KWh)
			imp2 := out.delta(i, CounterImportT2, s.ImportT2KWh-prev.ImportT2KWh)
			exp1 := out.delta(i, CounterExportT1, s.ExportT1KWh-prev.ExportT1KWh)
			exp2 := out.delta(i, CounterExportT2, s.ExportT2KWh-prev.ExportT2KWh)
			rec.TotalImportKWh = imp1 + imp2
			rec.TotalExportKWh = exp1 + exp2
		}
		rec.BaselineCost = rec.TotalImportKWh*tariff.ImportPrice(rec.IsDayTariff) - rec.TotalExportKWh*tariff.FeedInPrice
		if !finite(rec.TotalImportKWh) || !finite(rec.TotalExportKWh) || !finite(rec.BaselineCost) {
			return nil, fmt.Errorf("%w: sample %d: counter delta overflows", model.ErrInvalidInput, i)
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// delta clamps a negative counter delta to zero and records it.
func (s *Series) delta(idx int, counter string, d float64) float64 {
	if d < 0 {
		s.Anomalies = append(s.Anomalies, Anomaly{Index: idx, Counter: counter, DeltaKWh: d})
		return 0
	}
	return d
}

func checkSample(i int, s model.MeterSample) error {
	if s.Time.IsZero() {
		return fmt.Errorf("%w: sample %d has no timestamp", model.ErrInvalidInput, i)
	}
	for _, c := range []struct {
		name string
		v    float64
	}{
		{CounterImportT1, s.ImportT1KWh},
		{CounterImportT2, s.ImportT2KWh},
		{CounterExportT1, s.ExportT1KWh},
		{CounterExportT2, s.ExportT2KWh},
	} {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return fmt.Errorf("%w: sample %d counter %s is not a number", model.ErrInvalidInput, i, c.name)
		}
	}
	return nil
}
