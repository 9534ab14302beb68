package model

import (
	"fmt"
	"math"
	"time"
)

// Tariff is a binary day/night import tariff plus a flat feed-in price.
// Prices are per kWh. The day window is [DayStartHour, DayEndHour) on the
// local clock of each sample.
type Tariff struct {
	DayPrice    float64
	NightPrice  float64
	FeedInPrice float64

	DayStartHour int
	DayEndHour   int
}

func (t Tariff) Validate() error {
	prices := []struct {
		name  string
		value float64
	}{
		{"day price", t.DayPrice},
		{"night price", t.NightPrice},
		{"feed-in price", t.FeedInPrice},
	}
	for _, p := range prices {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) || p.value < 0 {
			return fmt.Errorf("%w: %s must be a finite value >= 0, got %v", ErrInvalidInput, p.name, p.value)
		}
	}
	if t.DayStartHour < 0 || t.DayStartHour > 24 || t.DayEndHour < 0 || t.DayEndHour > 24 {
		return fmt.Errorf("%w: day tariff hours must be in [0,24], got [%d,%d)", ErrInvalidInput, t.DayStartHour, t.DayEndHour)
	}
	return nil
}

// IsDay reports whether the local hour of ts falls inside the day window.
func (t Tariff) IsDay(ts time.Time) bool {
	return inWindow(ts.Hour(), t.DayStartHour, t.DayEndHour)
}

// ImportPrice returns the import price for a day or night interval.
func (t Tariff) ImportPrice(isDay bool) float64 {
	if isDay {
		return t.DayPrice
	}
	return t.NightPrice
}

// inWindow checks whether h is in [start, end) on a 24h clock.
// start == end is an empty window; start > end wraps across midnight.
func inWindow(h, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return h >= start && h < end
	}
	return h >= start || h < end
}
