package models

import (
	"home-battery-roi/internal/config"
	"home-battery-roi/internal/model"
)

// RunRequest represents the request body for evaluating battery capacities
// against a meter series.
type RunRequest struct {
	Samples []model.MeterSample `json:"samples" binding:"required,min=1"`

	// Preset names a YAML file in the preset directory used as the base
	// configuration. Empty means the built-in defaults.
	Preset    string           `json:"preset,omitempty"`
	Overrides config.Overrides `json:"config,omitempty"`
	Options   RunOptions       `json:"options,omitempty"`
}

// RunOptions contains optional run parameters
type RunOptions struct {
	IncludeTrajectory bool `json:"include_trajectory,omitempty"` // chart series for the featured capacity
	Workers           int  `json:"workers,omitempty"`            // 0 = server default
	SortByPayback     bool `json:"sort_by_payback,omitempty"`    // summaries shortest payback first
}

// SeriesQuery selects one scenario of a cached run.
type SeriesQuery struct {
	Capacity *float64 `form:"capacity"` // default: recommended, else first successful
}
