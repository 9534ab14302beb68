package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"home-battery-roi/internal/api/models"
	"home-battery-roi/internal/data"
	"home-battery-roi/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, presetDir string) *gin.Engine {
	t.Helper()
	cache := data.NewRunCache(time.Hour)
	t.Cleanup(cache.Close)
	if presetDir == "" {
		presetDir = t.TempDir()
	}
	return NewRouter(Options{Cache: cache, PresetDir: presetDir, Workers: 2, Logger: zaptest.NewLogger(t)})
}

// hourlySamples alternates a midday surplus with an evening deficit.
func hourlySamples(days int) []model.MeterSample {
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var out []model.MeterSample
	var imp1, imp2, exp1 float64
	for h := 0; h < days*24; h++ {
		ts := t0.Add(time.Duration(h) * time.Hour)
		switch hour := ts.Hour(); {
		case hour >= 11 && hour < 15:
			exp1 += 1.5
		case hour >= 18 && hour < 22:
			imp1 += 1.2
		case hour >= 23 || hour < 7:
			imp2 += 0.2
		}
		out = append(out, model.MeterSample{Time: ts, ImportT1KWh: imp1, ImportT2KWh: imp2, ExportT1KWh: exp1})
	}
	return out
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	w := doJSON(t, newTestRouter(t, ""), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRunScenarios(t *testing.T) {
	r := newTestRouter(t, "")
	cost := 20.0
	w := doJSON(t, r, http.MethodPost, "/api/v1/runs", gin.H{
		"samples": hourlySamples(7),
		"config":  gin.H{"cost_per_kwh": cost, "capacities": []float64{2, 4, 6}},
		"options": gin.H{"include_trajectory": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.RunResponse](t, w)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "completed", resp.Status)
	require.Len(t, resp.Summaries, 3)
	assert.Equal(t, 2.0, resp.Summaries[0].CapacityKWh)
	assert.Equal(t, "40.00", resp.Summaries[0].Investment)
	assert.Equal(t, 7*24, resp.Profile.Count)
	assert.Equal(t, cost, resp.Config.Battery.CostPerKWh)

	require.NotNil(t, resp.Trajectory)
	assert.Len(t, resp.Trajectory.Charge, 7*24)
	assert.Len(t, resp.Trajectory.Time, 7*24)

	if resp.Recommendation.CostEffective {
		require.NotNil(t, resp.Recommendation.CapacityKWh)
		assert.Equal(t, *resp.Recommendation.CapacityKWh, resp.Trajectory.CapacityKWh)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/runs/"+resp.ID+"/ledger?capacity=4", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ledger := decode[models.LedgerResponse](t, w)
	assert.Equal(t, 4.0, ledger.CapacityKWh)
	require.Len(t, ledger.Rows, 7*24)
	assert.Equal(t, 2.0, ledger.Rows[0].ChargeStart)
	for _, row := range ledger.Rows {
		assert.GreaterOrEqual(t, row.ChargeEnd, 0.0)
		assert.LessOrEqual(t, row.ChargeEnd, 4.0+1e-9)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/runs/"+resp.ID+"/trajectory?capacity=6", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	traj := decode[models.Trajectory](t, w)
	assert.Equal(t, 6.0, traj.CapacityKWh)
	assert.Len(t, traj.CumBatteryCost, 7*24)
}

func TestRunScenarios_SortByPayback(t *testing.T) {
	w := doJSON(t, newTestRouter(t, ""), http.MethodPost, "/api/v1/runs", gin.H{
		"samples": hourlySamples(7),
		"config":  gin.H{"cost_per_kwh": 20.0, "capacities": []float64{20, 2, 6, 4}},
		"options": gin.H{"sort_by_payback": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.RunResponse](t, w)
	require.Len(t, resp.Summaries, 4)
	for i := 1; i < len(resp.Summaries); i++ {
		assert.False(t, resp.Summaries[i].PaybackYears.Less(resp.Summaries[i-1].PaybackYears),
			"summary %d pays back sooner than summary %d", i, i-1)
	}
}

func TestRunScenarios_OverflowingCountersRejected(t *testing.T) {
	t1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := doJSON(t, newTestRouter(t, ""), http.MethodPost, "/api/v1/runs", gin.H{
		"samples": []model.MeterSample{
			{Time: t1, ImportT1KWh: -1.7e308},
			{Time: t1.Add(time.Hour), ImportT1KWh: 1.7e308},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "INVALID_INPUT", decode[models.ErrorResponse](t, w).Error.Code)
}

func TestRunScenarios_PartialFailure(t *testing.T) {
	w := doJSON(t, newTestRouter(t, ""), http.MethodPost, "/api/v1/runs", gin.H{
		"samples": hourlySamples(2),
		"config":  gin.H{"capacities": []float64{5, -2}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.RunResponse](t, w)
	assert.Equal(t, "partial", resp.Status)
	require.Len(t, resp.Summaries, 1)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, -2.0, resp.Failed[0].CapacityKWh)
	assert.Contains(t, resp.Failed[0].Error, "capacity")
}

func TestRunScenarios_NotCostEffective(t *testing.T) {
	w := doJSON(t, newTestRouter(t, ""), http.MethodPost, "/api/v1/runs", gin.H{
		"samples": hourlySamples(2),
		"config":  gin.H{"cost_per_kwh": 1e6, "capacities": []float64{5}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.RunResponse](t, w)
	assert.False(t, resp.Recommendation.CostEffective)
	assert.Nil(t, resp.Recommendation.CapacityKWh)
	assert.Contains(t, resp.Recommendation.Message, "not cost-effective")
}

func TestRunScenarios_BadInput(t *testing.T) {
	samples := hourlySamples(1)
	samples[3].Time = samples[2].Time

	tests := map[string]struct {
		body interface{}
		code string
	}{
		"no samples":       {gin.H{"samples": []model.MeterSample{}}, "INVALID_REQUEST"},
		"out of order":     {gin.H{"samples": samples}, "INVALID_INPUT"},
		"bad efficiency":   {gin.H{"samples": hourlySamples(1), "config": gin.H{"round_trip_efficiency": 1.4}}, "INVALID_INPUT"},
		"unknown preset":   {gin.H{"samples": hourlySamples(1), "preset": "nope"}, "INVALID_INPUT"},
		"preset traversal": {gin.H{"samples": hourlySamples(1), "preset": "../etc"}, "INVALID_INPUT"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, newTestRouter(t, ""), http.MethodPost, "/api/v1/runs", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tc.code, decode[models.ErrorResponse](t, w).Error.Code)
		})
	}
}

func TestRunScenarios_Preset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flat.yaml"), []byte(`
tariff:
  day_price: 0.28
  night_price: 0.28
capacities: [4]
`), 0o644))
	r := newTestRouter(t, dir)

	w := doJSON(t, r, http.MethodGet, "/api/v1/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	presets := decode[struct {
		Presets []models.PresetInfo `json:"presets"`
	}](t, w)
	require.Len(t, presets.Presets, 1)
	assert.Equal(t, "flat", presets.Presets[0].ID)

	w = doJSON(t, r, http.MethodPost, "/api/v1/runs", gin.H{"samples": hourlySamples(2), "preset": "flat"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.RunResponse](t, w)
	require.Len(t, resp.Summaries, 1)
	assert.Equal(t, 4.0, resp.Summaries[0].CapacityKWh)
	assert.Equal(t, 0.28, resp.Config.Tariff.NightPrice)
}

func TestRunScenariosCSV(t *testing.T) {
	var csvBody strings.Builder
	csvBody.WriteString("time,import t1 kWh,import t2 kWh,export t1 kWh,export t2 kWh\n")
	for _, s := range hourlySamples(3) {
		fmt.Fprintf(&csvBody, "%s,%g,%g,%g,%g\n", s.Time.Format("2006-01-02 15:04"), s.ImportT1KWh, s.ImportT2KWh, s.ExportT1KWh, s.ExportT2KWh)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "meter.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody.String()))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("config", "capacities: [3, 6]\n"))
	require.NoError(t, mw.WriteField("timezone", "UTC"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	newTestRouter(t, "").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.RunResponse](t, w)
	require.Len(t, resp.Summaries, 2)
	assert.Equal(t, 3*24, resp.Profile.Count)
}

func TestRunScenariosCSV_MissingFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("config", "capacities: [3]\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	newTestRouter(t, "").ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookupErrors(t *testing.T) {
	r := newTestRouter(t, "")
	w := doJSON(t, r, http.MethodGet, "/api/v1/runs/does-not-exist/ledger", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RUN_NOT_FOUND", decode[models.ErrorResponse](t, w).Error.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/runs", gin.H{"samples": hourlySamples(1), "config": gin.H{"capacities": []float64{5}}})
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[models.RunResponse](t, w).ID

	w = doJSON(t, r, http.MethodGet, "/api/v1/runs/"+id+"/trajectory?capacity=9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SCENARIO_NOT_FOUND", decode[models.ErrorResponse](t, w).Error.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/runs/"+id+"/trajectory?capacity=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParametersAndDefaults(t *testing.T) {
	r := newTestRouter(t, "")
	w := doJSON(t, r, http.MethodGet, "/api/v1/parameters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"round_trip_efficiency"`)

	w = doJSON(t, r, http.MethodGet, "/api/v1/defaults", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"day_start_hour":7`)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/runs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	newTestRouter(t, "").ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
