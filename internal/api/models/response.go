package models

import (
	"agentsim/internal/analysis"
	"agentsim/internal/netlist"
)

// RunResponse represents the response from a simulation run
type RunResponse struct {
	ID      string               `json:"id"`
	Status  string               `json:"status"`
	Summary RunSummary           `json:"summary"`
	Series  map[string][]float64 `json:"series,omitempty"`
}

// RunSummary contains aggregated run results
type RunSummary struct {
	Netlist        string                   `json:"netlist"`
	Strategy       string                   `json:"strategy"`
	Ticks          int                      `json:"ticks"`
	Rows           int                      `json:"rows"`
	ElapsedSeconds float64                  `json:"elapsed_seconds"`
	Final          map[string]float64       `json:"final"`
	Metrics        []analysis.SeriesSummary `json:"metrics,omitempty"`
}

// CompareRunResponse represents the response from a comparison
type CompareRunResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name    string     `json:"name"`
	ID      string     `json:"id,omitempty"`
	Summary RunSummary `json:"summary"`
	Error   string     `json:"error,omitempty"`
}

// NetlistInfo represents information about a netlist
type NetlistInfo struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Parameters  []netlist.ParamInfo `json:"parameters"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
