package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"home-battery-roi/internal/config"
	"home-battery-roi/internal/data"
	"home-battery-roi/internal/logging"
	"home-battery-roi/internal/model"
	"home-battery-roi/internal/report"
	"home-battery-roi/internal/scenario"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Demo:
// - Generate a synthetic year of 15-minute meter readings
// - Optionally write it as a meter CSV to feed the CLI or the API
// - Evaluate the configured capacities and print the result table
func main() {
	days := flag.Int("days", 365, "Number of days to generate")
	year := flag.Int("year", 2024, "Calendar year the series starts in")
	seed := flag.Int64("seed", 1, "Random seed")
	dailyUse := flag.Float64("daily-use", 9.6, "Average consumption per day (kWh)")
	peakSolar := flag.Float64("peak-solar", 3.2, "Solar output at noon in midsummer (kW)")
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	outCSV := flag.String("out", "", "Optional path to write the generated meter CSV (e.g. results/meter.csv)")
	flag.Parse()

	logger, err := logging.New("development")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			logger.Fatal("load config", zap.Error(err))
		}
		cfg = *loaded
	}

	h := data.DefaultHousehold(time.Date(*year, 1, 1, 0, 0, 0, 0, time.UTC))
	h.Days = *days
	h.Seed = *seed
	h.DailyUseKWh = *dailyUse
	h.PeakSolarKW = *peakSolar
	h.DayStartHour = cfg.Tariff.DayStartHour
	h.DayEndHour = cfg.Tariff.DayEndHour
	samples := h.Samples()

	if *outCSV != "" {
		if err := writeCSV(*outCSV, samples); err != nil {
			logger.Fatal("write meter csv", zap.Error(err))
		}
		logger.Info("wrote meter csv", zap.String("path", *outCSV), zap.Int("rows", len(samples)))
	}

	rep, err := scenario.NewRunner(logger, 0).Run(samples, cfg)
	if err != nil {
		logger.Fatal("run scenarios", zap.Error(err))
	}

	fmt.Printf("Generated %d intervals (%d days, %.1f kWh/day use, %.1f kW peak solar)\n\n", len(samples), *days, *dailyUse, *peakSolar)
	if err := report.WriteProfile(os.Stdout, rep.Profile); err != nil {
		panic(err)
	}
	fmt.Println()
	if err := report.WriteTable(os.Stdout, rep, cfg.Battery.LifetimeYears); err != nil {
		panic(err)
	}
}

func writeCSV(path string, samples []model.MeterSample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := data.WriteMeterCSV(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
