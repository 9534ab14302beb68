package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"home-battery-roi/internal/analysis"
	"home-battery-roi/internal/scenario"
)

// Money rounds an amount to cents.
func Money(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x).Round(2)
}

// WriteTable writes one row per capacity followed by the recommendation.
func WriteTable(w io.Writer, r *scenario.Report, lifetimeYears float64) error {
	p := &printer{w: w}

	p.printf("%-15s %-20s %-15s %-18s %-25s\n", "capacity (kWh)", "annual savings", "investment", "payback (years)", "lifetime net savings")
	for _, res := range r.Results {
		if res.Err != nil {
			p.printf("%-15.1f failed: %v\n", res.CapacityKWh, res.Err)
			continue
		}
		s := res.Summary
		p.printf("%-15.1f %-20s %-15s %-18s %-25s\n",
			s.CapacityKWh,
			Money(s.AnnualSavings).StringFixed(2),
			Money(s.Investment).StringFixed(2),
			paybackCell(*s),
			Money(s.LifetimeNetSavings).StringFixed(2),
		)
	}

	if n := len(r.Anomalies); n > 0 {
		p.printf("\n%d meter counter reset(s) detected; affected intervals were counted as zero.\n", n)
	}

	p.printf("\n")
	if best := r.Recommendation.Best; best != nil {
		years, _ := best.Payback.Years()
		p.printf("Recommended capacity: %.1f kWh, paying back in %.2f years.\n", best.CapacityKWh, years)
		p.printf("Net savings after %g years: %s\n", lifetimeYears, Money(best.LifetimeNetSavings).StringFixed(2))
	} else {
		p.printf("No capacity pays back within the %g year lifetime; a battery is not cost-effective for this profile.\n", lifetimeYears)
	}
	return p.err
}

// WriteProfile writes a short summary of the meter series.
func WriteProfile(w io.Writer, prof analysis.EnergyProfile) error {
	p := &printer{w: w}
	p.printf("intervals:       %d (%s to %s)\n", prof.Count, prof.Start.Format("2006-01-02 15:04"), prof.End.Format("2006-01-02 15:04"))
	p.printf("span:            %.1f days\n", prof.Span().Hours()/24)
	p.printf("import day/night: %.2f / %.2f kWh\n", prof.DayImportKWh, prof.NightImportKWh)
	p.printf("export day/night: %.2f / %.2f kWh\n", prof.DayExportKWh, prof.NightExportKWh)
	p.printf("surplus intervals: %d\n", prof.SurplusIntervals)
	p.printf("deficit p95/max:  %.3f / %.3f kWh\n", prof.P95DeficitKWh, prof.MaxDeficitKWh)
	p.printf("surplus p95/max:  %.3f / %.3f kWh\n", prof.P95SurplusKWh, prof.MaxSurplusKWh)
	p.printf("cost without battery: %s\n", Money(prof.BaselineCost).StringFixed(2))
	return p.err
}

// WriteRanking lists the successful capacities by payback, shortest
// first, with capacities that never pay back at the end.
func WriteRanking(w io.Writer, r *scenario.Report) error {
	p := &printer{w: w}
	p.printf("%-5s %-15s %-18s %-20s %-25s\n", "rank", "capacity (kWh)", "payback (years)", "annual savings", "lifetime net savings")
	for i, s := range analysis.RankByPayback(r.Summaries) {
		p.printf("%-5d %-15.1f %-18s %-20s %-25s\n",
			i+1,
			s.CapacityKWh,
			paybackCell(s),
			Money(s.AnnualSavings).StringFixed(2),
			Money(s.LifetimeNetSavings).StringFixed(2),
		)
	}
	return p.err
}

func paybackCell(s analysis.ROISummary) string {
	years, ok := s.Payback.Years()
	if !ok {
		return "never"
	}
	return decimal.NewFromFloat(years).StringFixed(2)
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
