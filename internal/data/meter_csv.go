package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"home-battery-roi/internal/model"
)

// Column names of a P1 meter export. Matching is case-insensitive and
// ignores surrounding whitespace; other columns are ignored.
const (
	ColTime     = "time"
	ColImportT1 = "import t1 kwh"
	ColImportT2 = "import t2 kwh"
	ColExportT1 = "export t1 kwh"
	ColExportT2 = "export t2 kwh"
)

var requiredColumns = []string{ColTime, ColImportT1, ColImportT2, ColExportT1, ColExportT2}

// timeLayouts are tried in order for the time column.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// LoadMeterCSV reads a meter export from a file. Timestamps without an
// offset are interpreted in loc (UTC when nil).
func LoadMeterCSV(path string, loc *time.Location) ([]model.MeterSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	samples, err := ReadMeterCSV(f, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// ReadMeterCSV parses a meter export. Rows are returned in file order;
// ordering is checked later by preprocessing. Unparseable cells are
// reported with their line number and wrap model.ErrInvalidInput.
func ReadMeterCSV(r io.Reader, loc *time.Location) ([]model.MeterSample, error) {
	if loc == nil {
		loc = time.UTC
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty meter file", model.ErrInvalidInput)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", model.ErrInvalidInput, name)
		}
	}

	var samples []model.MeterSample
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(record) {
			continue
		}
		s, err := parseRecord(record, cols, loc)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseRecord(record []string, cols map[string]int, loc *time.Location) (model.MeterSample, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	ts, err := parseTime(field(ColTime), loc)
	if err != nil {
		return model.MeterSample{}, err
	}
	s := model.MeterSample{Time: ts}
	for _, c := range []struct {
		name string
		dst  *float64
	}{
		{ColImportT1, &s.ImportT1KWh},
		{ColImportT2, &s.ImportT2KWh},
		{ColExportT1, &s.ExportT1KWh},
		{ColExportT2, &s.ExportT2KWh},
	} {
		v, err := strconv.ParseFloat(field(c.name), 64)
		if err != nil {
			return model.MeterSample{}, fmt.Errorf("%w: column %q: %q is not a number", model.ErrInvalidInput, c.name, field(c.name))
		}
		*c.dst = v
	}
	return s, nil
}

func parseTime(v string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, v, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised timestamp %q", model.ErrInvalidInput, v)
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
