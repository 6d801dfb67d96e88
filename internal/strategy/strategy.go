package strategy

import (
	"errors"
	"fmt"
	"time"
)

// ErrConfiguration is returned for run parameters that cannot drive a simulation.
var ErrConfiguration = errors.New("invalid simulation configuration")

const (
	DefaultTimeStep    = time.Hour
	DefaultLogInterval = SecondsPerDay * time.Second
)

// Strategy is the timing configuration of one simulation run.
// It is a value type; once New returns, nothing can change it.
type Strategy struct {
	timeStep    time.Duration
	maxTicks    int
	logInterval time.Duration
}

type settings struct {
	timeStep    time.Duration
	logInterval time.Duration

	maxTicks    int
	maxTicksSet bool

	maxTimeValue float64
	maxTimeUnit  Unit
	maxTimeSet   bool
}

// Option configures a Strategy under construction.
type Option func(*settings)

func WithTimeStep(d time.Duration) Option {
	return func(s *settings) { s.timeStep = d }
}

func WithLogInterval(d time.Duration) Option {
	return func(s *settings) { s.logInterval = d }
}

func WithMaxTicks(n int) Option {
	return func(s *settings) {
		s.maxTicks = n
		s.maxTicksSet = true
		s.maxTimeSet = false
	}
}

// WithMaxTime sets the run length as a duration in calendar units.
// It is resolved against the final time step, so option order does not matter.
func WithMaxTime(value float64, unit Unit) Option {
	return func(s *settings) {
		s.maxTimeValue = value
		s.maxTimeUnit = unit
		s.maxTimeSet = true
		s.maxTicksSet = false
	}
}

// New builds a Strategy. The run length must be given with WithMaxTicks or WithMaxTime.
func New(opts ...Option) (Strategy, error) {
	s := settings{
		timeStep:    DefaultTimeStep,
		logInterval: DefaultLogInterval,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if s.timeStep <= 0 {
		return Strategy{}, fmt.Errorf("%w: time step must be > 0, got %s", ErrConfiguration, s.timeStep)
	}
	if s.timeStep%time.Second != 0 {
		return Strategy{}, fmt.Errorf("%w: time step must be a whole number of seconds, got %s", ErrConfiguration, s.timeStep)
	}
	if s.logInterval <= 0 {
		return Strategy{}, fmt.Errorf("%w: log interval must be > 0, got %s", ErrConfiguration, s.logInterval)
	}

	maxTicks := s.maxTicks
	switch {
	case s.maxTimeSet:
		n, err := resolveMaxTicks(s.maxTimeValue, s.maxTimeUnit, s.timeStep)
		if err != nil {
			return Strategy{}, err
		}
		maxTicks = n
	case !s.maxTicksSet:
		return Strategy{}, fmt.Errorf("%w: run length not set", ErrConfiguration)
	}
	if maxTicks < 1 {
		return Strategy{}, fmt.Errorf("%w: max ticks must be >= 1, got %d", ErrConfiguration, maxTicks)
	}

	return Strategy{
		timeStep:    s.timeStep,
		maxTicks:    maxTicks,
		logInterval: s.logInterval,
	}, nil
}

func resolveMaxTicks(value float64, unit Unit, step time.Duration) (int, error) {
	if value < 0 {
		return 0, fmt.Errorf("%w: max time must be >= 0, got %g", ErrConfiguration, value)
	}
	if unit == UnitTicks {
		return int(value), nil
	}
	perUnit, err := unit.Seconds()
	if err != nil {
		return 0, err
	}
	return int(value * float64(perUnit) / step.Seconds()), nil
}

func (s Strategy) TimeStep() time.Duration    { return s.timeStep }
func (s Strategy) MaxTicks() int              { return s.maxTicks }
func (s Strategy) LogInterval() time.Duration { return s.logInterval }

// TimeStepSeconds is the tick length in whole seconds.
func (s Strategy) TimeStepSeconds() int64 { return int64(s.timeStep / time.Second) }

// LogDue reports whether the simulated time at the start of tick is a
// whole multiple of the log interval.
func (s Strategy) LogDue(tick int) bool {
	return (time.Duration(tick)*s.timeStep)%s.logInterval == 0
}

func (s Strategy) String() string {
	return fmt.Sprintf("Strategy={time_step=%s, max_ticks=%d, log_interval=%s}", s.timeStep, s.maxTicks, s.logInterval)
}
