package sim

import (
	"fmt"
	"math/rand"

	"agentsim/internal/strategy"
)

// Rand is the random source agents draw from. *rand.Rand satisfies it;
// tests substitute fixed sequences.
type Rand interface {
	Float64() float64
	NormFloat64() float64
}

// State is everything one run mutates: the tick, the population and the KPIs.
// It never decides when to log or stop; the engine does.
type State struct {
	tick     int
	strategy strategy.Strategy
	order    []string
	agents   map[string]Agent
	kpis     KPITracker
	rng      Rand
	started  bool
}

type StateOption func(*State)

func WithKPIs(k KPITracker) StateOption {
	return func(s *State) { s.kpis = k }
}

func WithRand(r Rand) StateOption {
	return func(s *State) { s.rng = r }
}

// WithSeed is WithRand over a math/rand source seeded with seed.
func WithSeed(seed int64) StateOption {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func NewState(strat strategy.Strategy, opts ...StateOption) *State {
	s := &State{
		strategy: strat,
		agents:   map[string]Agent{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.kpis == nil {
		s.kpis = NewSeries(strat.TimeStep())
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(1))
	}
	return s
}

// AddAgent appends a to the population. Insertion order is stepping order.
func (s *State) AddAgent(a Agent) error {
	if s.started {
		return fmt.Errorf("add %q: %w", a.Name(), ErrPopulationSealed)
	}
	if _, ok := s.agents[a.Name()]; ok {
		return fmt.Errorf("add %q: %w", a.Name(), ErrDuplicateAgent)
	}
	s.agents[a.Name()] = a
	s.order = append(s.order, a.Name())
	return nil
}

func (s *State) Agent(name string) (Agent, error) {
	a, ok := s.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, name)
	}
	return a, nil
}

// Agents returns the population in stepping order.
func (s *State) Agents() []Agent {
	out := make([]Agent, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.agents[name])
	}
	return out
}

// TakeStep steps every agent once, in insertion order, then samples the KPIs.
// The first agent error aborts the tick.
func (s *State) TakeStep() error {
	s.started = true
	for _, name := range s.order {
		if err := s.agents[name].Step(s); err != nil {
			return fmt.Errorf("tick %d: agent %q: %w", s.tick, name, err)
		}
	}
	s.kpis.Track(s)
	return nil
}

// IncrementTick advances the tick counter by one. Only the engine calls it.
func (s *State) IncrementTick() { s.tick++ }

func (s *State) Tick() int                   { return s.tick }
func (s *State) Strategy() strategy.Strategy { return s.strategy }
func (s *State) KPIs() KPITracker            { return s.kpis }
func (s *State) Rand() Rand                  { return s.rng }

// ElapsedSeconds is the simulated time at the start of the current tick.
func (s *State) ElapsedSeconds() int64 {
	return int64(s.tick) * s.strategy.TimeStepSeconds()
}

// TotalBalance sums currency over the population.
func (s *State) TotalBalance(currency string) float64 {
	total := 0.0
	for _, name := range s.order {
		total += s.agents[name].Balance(currency)
	}
	return total
}
