package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"home-battery-roi/internal/api/models"
	"home-battery-roi/internal/config"
	"home-battery-roi/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PresetHandler serves configuration presets: YAML config files in a
// directory, addressed by file name without extension.
type PresetHandler struct {
	dir    string
	logger *zap.Logger
}

// NewPresetHandler creates a preset handler. An empty dir resolves to
// PRESET_DIR, then ./examples/presets.
func NewPresetHandler(dir string, logger *zap.Logger) *PresetHandler {
	if dir == "" {
		dir = os.Getenv("PRESET_DIR")
	}
	if dir == "" {
		dir = filepath.Join("examples", "presets")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	logger.Info("using preset directory", zap.String("dir", dir))
	return &PresetHandler{dir: dir, logger: logger}
}

// ListPresets handles GET /api/v1/presets
func (h *PresetHandler) ListPresets(c *gin.Context) {
	presets := []models.PresetInfo{}

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		h.logger.Warn("cannot read preset directory", zap.String("dir", h.dir), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"presets": presets})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		cfg, err := h.Load(id)
		if err != nil {
			h.logger.Warn("skipping invalid preset", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		presets = append(presets, models.PresetInfo{
			ID:     id,
			File:   filepath.Join(h.dir, entry.Name()),
			Config: *cfg,
		})
	}

	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

// Load reads and validates a preset by id. An empty id returns the
// defaults.
func (h *PresetHandler) Load(id string) (*config.Config, error) {
	if id == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("%w: invalid preset name %q", model.ErrInvalidInput, id)
	}
	path := filepath.Join(h.dir, id+".yaml")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: unknown preset %q", model.ErrInvalidInput, id)
	}
	return config.Load(path)
}
