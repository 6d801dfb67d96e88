package models

import "agentsim/internal/config"

// RunRequest represents the request body for running a simulation
type RunRequest struct {
	Netlist  string                 `json:"netlist" binding:"required"`
	Seed     int64                  `json:"seed,omitempty"`
	Strategy config.StrategyConfig  `json:"strategy,omitempty"` // empty fields take the netlist defaults
	Params   map[string]interface{} `json:"params,omitempty"`
	Options  RunOptions             `json:"options,omitempty"`
}

// RunOptions contains optional response settings
type RunOptions struct {
	IncludeSeries bool `json:"include_series,omitempty"` // default: false
}

// CompareRunRequest runs one base request plus variations of it
type CompareRunRequest struct {
	Base       RunRequest     `json:"base" binding:"required"`
	Variations []RunVariation `json:"variations" binding:"required"`
}

// RunVariation overrides parts of the base request
type RunVariation struct {
	Name     string                 `json:"name" binding:"required"`
	Seed     *int64                 `json:"seed,omitempty"`
	Strategy config.StrategyConfig  `json:"strategy,omitempty"`
	Params   map[string]interface{} `json:"params,omitempty"`
}
