// Package netlist holds the registry of agent populations a run can be built from.
package netlist

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"agentsim/internal/config"
	"agentsim/internal/engine"
	"agentsim/internal/sim"
	"agentsim/internal/strategy"
)

var ErrUnknownNetlist = errors.New("unknown netlist")

// ParamInfo describes a netlist parameter.
type ParamInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "string"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

type BuildInput struct {
	Strategy strategy.Strategy
	Params   Params
	Rand     sim.Rand
}

// Simulation is a ready-to-run population plus the columns it logs.
type Simulation struct {
	State   *sim.State
	LogFunc engine.LogFunc
}

type Netlist struct {
	Name            string
	Description     string
	Params          []ParamInfo
	DefaultStrategy config.StrategyConfig
	Build           func(in BuildInput) (*Simulation, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Netlist{}
)

// Register makes a netlist available by name. It panics on duplicates.
func Register(n Netlist) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[n.Name]; ok {
		panic(fmt.Sprintf("netlist %q registered twice", n.Name))
	}
	registry[n.Name] = n
}

func Lookup(name string) (Netlist, error) {
	mu.RLock()
	defer mu.RUnlock()
	n, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Netlist{}, fmt.Errorf("%w: %q", ErrUnknownNetlist, name)
	}
	return n, nil
}

// All returns every registered netlist sorted by name.
func All() []Netlist {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Netlist, 0, len(registry))
	for _, n := range registry {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
