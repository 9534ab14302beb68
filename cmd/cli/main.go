package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"home-battery-roi/internal/analysis"
	"home-battery-roi/internal/backtest"
	"home-battery-roi/internal/config"
	"home-battery-roi/internal/data"
	"home-battery-roi/internal/logging"
	"home-battery-roi/internal/model"
	"home-battery-roi/internal/report"
	"home-battery-roi/internal/scenario"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "simulate":
		err = cmdSimulate(os.Args[2:])
	case "profile":
		err = cmdProfile(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli simulate --data meter.csv [--config examples/config.yaml] [--capacities 3,5,10] [--out-dir results] [--rank]")
	fmt.Println("  cli profile --data meter.csv [--config examples/config.yaml]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - --data accepts a meter CSV export or a JSON array of samples (.json)")
	fmt.Println("  - simulate prints one row per capacity and the recommended size")
	fmt.Println("  - --out-dir writes the per-interval ledger of every capacity as CSV")
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	dataPath string
	cfgPath  string
	timezone string
	logEnv   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.dataPath, "data", "", "Meter export (CSV, or JSON sample array)")
	fs.StringVar(&c.cfgPath, "config", "", "YAML config (defaults apply when omitted)")
	fs.StringVar(&c.timezone, "timezone", "UTC", "Time zone of CSV timestamps without offset")
	fs.StringVar(&c.logEnv, "log-env", "development", `Logger flavour: "development" or "production"`)
}

func (c *commonFlags) load() ([]model.MeterSample, *config.Config, error) {
	if c.dataPath == "" {
		return nil, nil, fmt.Errorf("--data is required")
	}
	loc, err := time.LoadLocation(c.timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("--timezone: %w", err)
	}
	samples, err := data.LoadMeter(c.dataPath, loc)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.Default()
	if c.cfgPath != "" {
		loaded, err := config.Load(c.cfgPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = *loaded
	}
	return samples, &cfg, nil
}

func cmdSimulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	capacities := fs.Float64Slice("capacities", nil, "Candidate capacities in kWh (overrides config)")
	efficiency := fs.Float64("efficiency", 0, "Round-trip efficiency in (0, 1] (overrides config)")
	costPerKWh := fs.Float64("cost-per-kwh", 0, "Battery cost per kWh (overrides config)")
	lifetime := fs.Float64("lifetime", 0, "Battery lifetime in years (overrides config)")
	outDir := fs.String("out-dir", "", "Optional: directory for per-capacity ledger CSVs")
	workers := fs.IntP("workers", "w", 0, "Concurrent scenarios (0 = GOMAXPROCS)")
	rank := fs.Bool("rank", false, "Also list capacities ordered by payback")
	_ = fs.Parse(args)

	samples, cfg, err := common.load()
	if err != nil {
		return err
	}

	var o config.Overrides
	if fs.Changed("capacities") {
		o.Capacities = *capacities
	}
	if fs.Changed("efficiency") {
		o.RoundTripEfficiency = efficiency
	}
	if fs.Changed("cost-per-kwh") {
		o.CostPerKWh = costPerKWh
	}
	if fs.Changed("lifetime") {
		o.LifetimeYears = lifetime
	}
	merged := config.Merge(*cfg, o)

	logger, err := logging.New(common.logEnv)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rep, err := scenario.NewRunner(logger, *workers).Run(samples, merged)
	if err != nil {
		return err
	}

	if *outDir != "" {
		if err := writeLedgers(*outDir, rep, logger); err != nil {
			return err
		}
	}
	if err := report.WriteTable(os.Stdout, rep, merged.Battery.LifetimeYears); err != nil {
		return err
	}
	if *rank {
		fmt.Println()
		return report.WriteRanking(os.Stdout, rep)
	}
	return nil
}

func writeLedgers(dir string, rep *scenario.Report, logger *zap.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, res := range rep.Results {
		if res.Err != nil {
			continue
		}
		path := filepath.Join(dir, "ledger_"+strconv.FormatFloat(res.CapacityKWh, 'f', -1, 64)+"kwh.csv")
		if err := backtest.WriteLedgerCSV(path, res.Simulation.Ledger); err != nil {
			return err
		}
		logger.Info("wrote ledger", zap.String("path", path), zap.Int("rows", len(res.Simulation.Ledger)))
	}
	return nil
}

func cmdProfile(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	_ = fs.Parse(args)

	samples, cfg, err := common.load()
	if err != nil {
		return err
	}
	series, err := backtest.Preprocess(samples, cfg.Tariff.ToModel())
	if err != nil {
		return err
	}
	if err := report.WriteProfile(os.Stdout, analysis.ComputeProfile(series.Records)); err != nil {
		return err
	}
	for _, a := range series.Anomalies {
		fmt.Printf("counter reset: interval %d, %s went back %.3f kWh\n", a.Index, a.Counter, -a.DeltaKWh)
	}
	return nil
}
