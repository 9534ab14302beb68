package data

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"home-battery-roi/internal/model"
)

// LoadMeterJSON reads a JSON array of meter samples in the same shape the
// HTTP API accepts.
func LoadMeterJSON(path string) ([]model.MeterSample, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var samples []model.MeterSample
	if err := json.Unmarshal(raw, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// LoadMeter picks the reader by file extension: .json for a sample array,
// anything else is read as a meter CSV export.
func LoadMeter(path string, loc *time.Location) ([]model.MeterSample, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadMeterJSON(path)
	}
	return LoadMeterCSV(path, loc)
}
