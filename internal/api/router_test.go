package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentsim/internal/api/models"
	"agentsim/internal/metrics"
	"agentsim/internal/runner"
	"agentsim/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, withStore bool) *gin.Engine {
	t.Helper()
	opts := runner.Options{Logger: zerolog.Nop(), Metrics: metrics.New()}
	if withStore {
		st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		opts.Store = st
	}
	return NewRouter(opts)
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
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

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t, false), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListNetlists(t *testing.T) {
	w := do(t, newTestRouter(t, false), http.MethodGet, "/api/v1/netlists", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Netlists []models.NetlistInfo `json:"netlists"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	names := make([]string, 0, len(resp.Netlists))
	for _, n := range resp.Netlists {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"coffeeshop", "exchange"}, names)
}

func TestRunSimulation(t *testing.T) {
	r := newTestRouter(t, true)
	w := do(t, r, http.MethodPost, "/api/v1/runs", map[string]any{
		"netlist": "coffeeshop",
		"seed":    7,
		"params":  map[string]any{"num_buyers": 5},
		"options": map[string]any{"include_series": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 10, resp.Summary.Ticks)
	assert.Equal(t, 10, resp.Summary.Rows)
	assert.Equal(t, 864000.0, resp.Summary.ElapsedSeconds)
	assert.Len(t, resp.Series["coffee_shop_wallet"], 10)

	w = do(t, r, http.MethodGet, "/api/v1/runs/"+resp.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var run store.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, store.StatusDone, run.Status)

	w = do(t, r, http.MethodGet, "/api/v1/runs/"+resp.ID+"/rows", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows struct {
		Rows []store.Row `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows.Rows, 10)
	assert.Zero(t, rows.Rows[0].Values["coffee_shop_wallet"])

	w = do(t, r, http.MethodGet, "/api/v1/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), resp.ID)

	w = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `agentsim_runs_total{netlist="coffeeshop",status="ok"} 1`)
}

func TestRunSimulationErrors(t *testing.T) {
	r := newTestRouter(t, false)

	tests := []struct {
		name string
		body any
		code int
		want string
	}{
		{"missing netlist", map[string]any{"seed": 1}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown netlist", map[string]any{"netlist": "moon"}, http.StatusBadRequest, "UNKNOWN_NETLIST"},
		{"zero step", map[string]any{"netlist": "coffeeshop", "strategy": map[string]any{"time_step": "0s"}}, http.StatusBadRequest, "INVALID_STRATEGY"},
		{"zero max ticks", map[string]any{"netlist": "coffeeshop", "strategy": map[string]any{"max_ticks": 0}}, http.StatusBadRequest, "INVALID_STRATEGY"},
		{"bad params", map[string]any{"netlist": "coffeeshop", "params": map[string]any{"num_buyers": -1}}, http.StatusBadRequest, "INVALID_PARAMS"},
		{"param of wrong type", map[string]any{"netlist": "coffeeshop", "params": map[string]any{"coffee_cost": "5"}}, http.StatusBadRequest, "INVALID_PARAMS"},
		{"fractional count", map[string]any{"netlist": "coffeeshop", "params": map[string]any{"num_buyers": 2.7}}, http.StatusBadRequest, "INVALID_PARAMS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/runs", tt.body)
			assert.Equal(t, tt.code, w.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Error.Code)
		})
	}
}

func TestCompareRuns(t *testing.T) {
	r := newTestRouter(t, false)
	seed := int64(3)
	w := do(t, r, http.MethodPost, "/api/v1/runs/compare", map[string]any{
		"base": map[string]any{"netlist": "coffeeshop", "params": map[string]any{"num_buyers": 4}},
		"variations": []map[string]any{
			{"name": "short", "strategy": map[string]any{"max_ticks": 2}},
			{"name": "seeded", "seed": seed, "params": map[string]any{"coffee_cost": 5.0}},
			{"name": "broken", "params": map[string]any{"num_buyers": -1}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CompareRunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Comparison, 3)
	assert.Equal(t, 2, resp.Comparison[0].Summary.Ticks)
	assert.Equal(t, 10, resp.Comparison[1].Summary.Ticks)
	assert.Empty(t, resp.Comparison[1].Error)
	assert.NotEmpty(t, resp.Comparison[2].Error)
}

func TestStoreDisabled(t *testing.T) {
	r := newTestRouter(t, false)

	w := do(t, r, http.MethodGet, "/api/v1/runs/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "STORE_DISABLED")

	w = do(t, r, http.MethodGet, "/api/v1/runs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"runs":[]}`, w.Body.String())
}

func TestRunNotFound(t *testing.T) {
	w := do(t, newTestRouter(t, true), http.MethodGet, "/api/v1/runs/abc/rows", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "RUN_NOT_FOUND")
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/runs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	newTestRouter(t, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
