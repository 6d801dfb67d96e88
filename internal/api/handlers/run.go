package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"agentsim/internal/api/models"
	"agentsim/internal/config"
	"agentsim/internal/netlist"
	"agentsim/internal/runner"
	"agentsim/internal/sim"
	"agentsim/internal/store"
	"agentsim/internal/strategy"

	"github.com/gin-gonic/gin"
)

// RunHandler handles simulation run requests
type RunHandler struct {
	opts runner.Options
}

// NewRunHandler creates a new run handler. opts.Store may be nil, in which
// case runs are not kept and the row endpoints answer 404.
func NewRunHandler(opts runner.Options) *RunHandler {
	return &RunHandler{opts: opts}
}

// RunSimulation handles POST /api/v1/runs
func (h *RunHandler) RunSimulation(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	outcome, err := runner.Run(c.Request.Context(), toRunnerRequest(req), h.opts)
	if err != nil {
		writeRunError(c, err)
		return
	}

	resp := models.RunResponse{
		ID:      outcome.RunID,
		Status:  "completed",
		Summary: buildSummary(outcome),
	}
	if req.Options.IncludeSeries && outcome.Series != nil {
		resp.Series = seriesMap(outcome.Series)
	}
	c.JSON(http.StatusOK, resp)
}

// CompareRuns handles POST /api/v1/runs/compare
func (h *RunHandler) CompareRuns(c *gin.Context) {
	var req models.CompareRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	comparison := make([]models.ComparisonResult, 0, len(req.Variations))
	for _, v := range req.Variations {
		rr := toRunnerRequest(req.Base)
		rr.Strategy = config.MergeStrategy(rr.Strategy, v.Strategy)
		rr.Params = mergeParams(req.Base.Params, v.Params)
		if v.Seed != nil {
			rr.Seed = *v.Seed
		}

		result := models.ComparisonResult{Name: v.Name}
		outcome, err := runner.Run(c.Request.Context(), rr, h.opts)
		if err != nil {
			// A failed variation is reported, not fatal to the comparison.
			result.Error = err.Error()
		} else {
			result.ID = outcome.RunID
			result.Summary = buildSummary(outcome)
		}
		comparison = append(comparison, result)
	}

	c.JSON(http.StatusOK, models.CompareRunResponse{Comparison: comparison})
}

// ListRuns handles GET /api/v1/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	if h.opts.Store == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []store.Run{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := h.opts.Store.ListRuns(limit)
	if err != nil {
		internalError(c, "STORE_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	run, err := h.opts.Store.GetRun(c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetRows handles GET /api/v1/runs/:id/rows
func (h *RunHandler) GetRows(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	rows, err := h.opts.Store.Rows(c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "rows": rows})
}

func (h *RunHandler) requireStore(c *gin.Context) bool {
	if h.opts.Store != nil {
		return true
	}
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "STORE_DISABLED",
			Message: "Run storage is not configured on this server.",
		},
	})
	return false
}

// Helper functions

func toRunnerRequest(req models.RunRequest) runner.Request {
	return runner.Request{
		Netlist:  req.Netlist,
		Seed:     req.Seed,
		Strategy: req.Strategy,
		Params:   netlist.Params(req.Params),
	}
}

func mergeParams(base, override map[string]interface{}) netlist.Params {
	out := netlist.Params{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func buildSummary(o *runner.Outcome) models.RunSummary {
	return models.RunSummary{
		Netlist:        o.Netlist,
		Strategy:       o.Strategy.String(),
		Ticks:          o.Result.Ticks,
		Rows:           o.Result.Rows,
		ElapsedSeconds: o.Result.Elapsed.Seconds(),
		Final:          o.Result.Final,
		Metrics:        o.Summary,
	}
}

func seriesMap(s *sim.Series) map[string][]float64 {
	out := make(map[string][]float64, len(s.Names()))
	for _, name := range s.Names() {
		out[name] = s.Values(name)
	}
	return out
}

func writeRunError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, netlist.ErrUnknownNetlist):
		badRequest(c, "UNKNOWN_NETLIST", err)
	case errors.Is(err, strategy.ErrConfiguration):
		badRequest(c, "INVALID_STRATEGY", err)
	case errors.Is(err, netlist.ErrInvalidParam):
		badRequest(c, "INVALID_PARAMS", err)
	default:
		internalError(c, "RUN_ERROR", err)
	}
}

func writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "RUN_NOT_FOUND", Message: err.Error()},
		})
		return
	}
	internalError(c, "STORE_ERROR", err)
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: err.Error()},
	})
}

func internalError(c *gin.Context, code string, err error) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: err.Error()},
	})
}
