package config

import (
	"errors"
	"fmt"
	"os"

	"home-battery-roi/internal/analysis"
	"home-battery-roi/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Tariff     TariffConfig  `yaml:"tariff" json:"tariff"`
	Battery    BatteryConfig `yaml:"battery" json:"battery"`
	Capacities []float64     `yaml:"capacities" json:"capacities"`
}

type TariffConfig struct {
	DayPrice     float64 `yaml:"day_price" json:"day_price"`
	NightPrice   float64 `yaml:"night_price" json:"night_price"`
	FeedInPrice  float64 `yaml:"feed_in_price" json:"feed_in_price"`
	DayStartHour int     `yaml:"day_start_hour" json:"day_start_hour"`
	DayEndHour   int     `yaml:"day_end_hour" json:"day_end_hour"`
}

type BatteryConfig struct {
	CostPerKWh          float64 `yaml:"cost_per_kwh" json:"cost_per_kwh"`
	LifetimeYears       float64 `yaml:"lifetime_years" json:"lifetime_years"`
	RoundTripEfficiency float64 `yaml:"round_trip_efficiency" json:"round_trip_efficiency"`
}

// Default returns the configuration used when a field is not given.
func Default() Config {
	return Config{
		Tariff: TariffConfig{
			DayPrice:     0.30,
			NightPrice:   0.25,
			FeedInPrice:  0.10,
			DayStartHour: 7,
			DayEndHour:   23,
		},
		Battery: BatteryConfig{
			CostPerKWh:          400,
			LifetimeYears:       10,
			RoundTripEfficiency: 0.90,
		},
		Capacities: []float64{3, 5, 7, 10, 15, 20},
	}
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML over Default and validates the result. Keys that are
// absent keep their default; keys that are present replace it, including
// explicit zeros.
func Parse(raw []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Tariff.ToModel().Validate(); err != nil {
		return fmt.Errorf("tariff config invalid: %w", err)
	}
	if err := c.Finance().Validate(); err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	if err := c.BatteryParams(0).Validate(); err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	if len(c.Capacities) == 0 {
		return fmt.Errorf("%w: at least one capacity is required", model.ErrInvalidInput)
	}
	return nil
}

func (t TariffConfig) ToModel() model.Tariff {
	return model.Tariff{
		DayPrice:     t.DayPrice,
		NightPrice:   t.NightPrice,
		FeedInPrice:  t.FeedInPrice,
		DayStartHour: t.DayStartHour,
		DayEndHour:   t.DayEndHour,
	}
}

func (c *Config) Finance() analysis.Finance {
	return analysis.Finance{
		CostPerKWh:    c.Battery.CostPerKWh,
		LifetimeYears: c.Battery.LifetimeYears,
	}
}

// BatteryParams returns the battery parameters for one candidate capacity.
func (c *Config) BatteryParams(capacityKWh float64) model.BatteryParams {
	return model.BatteryParams{
		CapacityKWh: capacityKWh,
		Efficiency:  c.Battery.RoundTripEfficiency,
	}
}

// Overrides holds optional per-run replacements for configuration values.
// Nil fields leave the configuration untouched.
type Overrides struct {
	DayPrice            *float64  `json:"day_price,omitempty"`
	NightPrice          *float64  `json:"night_price,omitempty"`
	FeedInPrice         *float64  `json:"feed_in_price,omitempty"`
	DayStartHour        *int      `json:"day_start_hour,omitempty"`
	DayEndHour          *int      `json:"day_end_hour,omitempty"`
	CostPerKWh          *float64  `json:"cost_per_kwh,omitempty"`
	LifetimeYears       *float64  `json:"lifetime_years,omitempty"`
	RoundTripEfficiency *float64  `json:"round_trip_efficiency,omitempty"`
	Capacities          []float64 `json:"capacities,omitempty"`
}

// Merge overlays the set fields of o onto base. The result is not
// validated.
func Merge(base Config, o Overrides) Config {
	out := base
	out.Capacities = append([]float64(nil), base.Capacities...)
	if o.DayPrice != nil {
		out.Tariff.DayPrice = *o.DayPrice
	}
	if o.NightPrice != nil {
		out.Tariff.NightPrice = *o.NightPrice
	}
	if o.FeedInPrice != nil {
		out.Tariff.FeedInPrice = *o.FeedInPrice
	}
	if o.DayStartHour != nil {
		out.Tariff.DayStartHour = *o.DayStartHour
	}
	if o.DayEndHour != nil {
		out.Tariff.DayEndHour = *o.DayEndHour
	}
	if o.CostPerKWh != nil {
		out.Battery.CostPerKWh = *o.CostPerKWh
	}
	if o.LifetimeYears != nil {
		out.Battery.LifetimeYears = *o.LifetimeYears
	}
	if o.RoundTripEfficiency != nil {
		out.Battery.RoundTripEfficiency = *o.RoundTripEfficiency
	}
	if len(o.Capacities) > 0 {
		out.Capacities = append([]float64(nil), o.Capacities...)
	}
	return out
}
