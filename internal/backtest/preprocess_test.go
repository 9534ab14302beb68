package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"home-battery-roi/internal/model"
)

func sample(ts time.Time, i1, i2, e1, e2 float64) model.MeterSample {
	return model.MeterSample{Time: ts, ImportT1KWh: i1, ImportT2KWh: i2, ExportT1KWh: e1, ExportT2KWh: e2}
}

func TestPreprocess_Deltas(t *testing.T) {
	night := time.Date(2024, 3, 14, 5, 45, 0, 0, time.UTC)
	samples := []model.MeterSample{
		sample(night, 100, 200, 50, 60),
		sample(night.Add(15*time.Minute), 100.5, 200.25, 50, 60),
		sample(night.Add(75*time.Minute), 100.5, 200.25, 51, 61.5),
	}

	s, err := Preprocess(samples, testTariff)
	require.NoError(t, err)
	require.Len(t, s.Records, 3)
	assert.Empty(t, s.Anomalies)

	first := s.Records[0]
	assert.Equal(t, 0.0, first.TotalImportKWh)
	assert.Equal(t, 0.0, first.TotalExportKWh)
	assert.Equal(t, 0.0, first.BaselineCost)
	assert.False(t, first.IsDayTariff)

	second := s.Records[1]
	assert.InDelta(t, 0.75, second.TotalImportKWh, 1e-9)
	assert.False(t, second.IsDayTariff, "06:00 is still night")
	assert.InDelta(t, 0.75*0.25, second.BaselineCost, 1e-9)

	third := s.Records[2]
	assert.True(t, third.IsDayTariff, "07:00 is day")
	assert.InDelta(t, 2.5, third.TotalExportKWh, 1e-9)
	assert.InDelta(t, -2.5*0.10, third.BaselineCost, 1e-9)
	assert.Equal(t, 2, third.Index)
}

func TestPreprocess_CounterResetIsClampedAndFlagged(t *testing.T) {
	samples := []model.MeterSample{
		sample(t0, 100, 200, 50, 60),
		sample(t0.Add(time.Hour), 101, 3, 50, 60),
		sample(t0.Add(2*time.Hour), 102, 4, 49, 60),
	}

	s, err := Preprocess(samples, testTariff)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, s.Records[1].TotalImportKWh, 1e-9)
	assert.InDelta(t, 2.0, s.Records[2].TotalImportKWh, 1e-9)
	assert.Equal(t, 0.0, s.Records[2].TotalExportKWh)
	assert.Equal(t, []Anomaly{
		{Index: 1, Counter: CounterImportT2, DeltaKWh: -197},
		{Index: 2, Counter: CounterExportT1, DeltaKWh: -1},
	}, s.Anomalies)
}

func TestPreprocess_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		samples []model.MeterSample
	}{
		{"empty", nil},
		{"duplicate timestamp", []model.MeterSample{sample(t0, 1, 1, 1, 1), sample(t0, 2, 1, 1, 1)}},
		{"out of order", []model.MeterSample{sample(t0, 1, 1, 1, 1), sample(t0.Add(-time.Minute), 2, 1, 1, 1)}},
		{"zero timestamp", []model.MeterSample{sample(time.Time{}, 1, 1, 1, 1)}},
		{"NaN counter", []model.MeterSample{sample(t0, 1, math.NaN(), 1, 1)}},
		{"infinite counter", []model.MeterSample{sample(t0, 1, 1, math.Inf(1), 1)}},
		{"overflowing delta", []model.MeterSample{sample(t0, -1.7e308, 0, 0, 0), sample(t0.Add(time.Hour), 1.7e308, 0, 0, 0)}},
		{"overflowing total", []model.MeterSample{sample(t0, 0, 0, 0, 0), sample(t0.Add(time.Hour), 1e308, 1e308, 0, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Preprocess(tt.samples, testTariff)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidInput), err.Error())
		})
	}
}

func TestPreprocess_RejectsBadTariff(t *testing.T) {
	bad := testTariff
	bad.DayEndHour = 25
	_, err := Preprocess([]model.MeterSample{sample(t0, 0, 0, 0, 0)}, bad)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}
