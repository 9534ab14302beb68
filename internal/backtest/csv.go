package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var ledgerHeader = []string{
	"index",
	"time",
	"tariff",
	"action",
	"import_kwh",
	"export_kwh",
	"net_kwh",
	"discharged_kwh",
	"stored_kwh",
	"residual_import_kwh",
	"residual_export_kwh",
	"charge_start_kwh",
	"charge_end_kwh",
	"baseline_cost",
	"battery_cost",
	"cum_baseline_cost",
	"cum_battery_cost",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLedger(f, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteLedger writes the ledger as CSV to w.
func WriteLedger(w io.Writer, ledger []LedgerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}

	for _, r := range ledger {
		tariff := "night"
		if r.IsDayTariff {
			tariff = "day"
		}
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Time),
			tariff,
			string(r.Action),
			fmtFloat(r.ImportKWh),
			fmtFloat(r.ExportKWh),
			fmtFloat(r.NetKWh),
			fmtFloat(r.DischargedKWh),
			fmtFloat(r.StoredKWh),
			fmtFloat(r.ResidualImportKWh),
			fmtFloat(r.ResidualExportKWh),
			fmtFloat(r.ChargeStart),
			fmtFloat(r.ChargeEnd),
			fmtFloat(r.BaselineCost),
			fmtFloat(r.BatteryCost),
			fmtFloat(r.CumBaselineCost),
			fmtFloat(r.CumBatteryCost),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
