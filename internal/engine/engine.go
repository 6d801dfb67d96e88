package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"agentsim/internal/sim"
)

var (
	// ErrIO means a log record could not be persisted.
	ErrIO         = errors.New("metrics persistence failed")
	ErrAlreadyRun = errors.New("engine has already run")
)

type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Recorder persists log records somewhere besides the CSV file.
type Recorder interface {
	Record(rec Record) error
}

// Observer is told about every completed tick and every log record.
type Observer interface {
	ObserveTick(tick int)
	ObserveRecord(rec Record)
}

// Result summarizes a finished run.
type Result struct {
	Ticks   int
	Rows    int
	Elapsed time.Duration
	Final   map[string]float64
}

// Engine drives one State from tick 0 to the strategy's max ticks.
type Engine struct {
	state     *sim.State
	outputDir string
	clock     Clock
	logFunc   LogFunc
	log       zerolog.Logger
	recorders []Recorder
	observers []Observer

	status Status
	rows   int
}

type Option func(*Engine)

// WithOutputDir enables data.csv persistence in dir.
func WithOutputDir(dir string) Option {
	return func(e *Engine) { e.outputDir = dir }
}

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogFunc(fn LogFunc) Option {
	return func(e *Engine) { e.logFunc = fn }
}

// WithLogger sets the diagnostic sink.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorders = append(e.recorders, r) }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

func New(state *sim.State, opts ...Option) *Engine {
	e := &Engine{
		state: state,
		clock: nopClock{},
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) State() *sim.State { return e.state }
func (e *Engine) Status() Status    { return e.status }

// Rows is the number of log records emitted so far.
func (e *Engine) Rows() int { return e.rows }

// Run executes the simulation. Each iteration logs (when the elapsed time is a
// multiple of the log interval) using the state before this tick's step, steps
// every agent, increments the tick, and then either stops or advances the clock.
// Exactly max ticks steps are performed. Cancellation is honoured between ticks.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.status != StatusIdle {
		return nil, ErrAlreadyRun
	}
	e.status = StatusRunning
	defer func() { e.status = StatusStopped }()

	var csvw *CSVWriter
	recorders := e.recorders
	if e.outputDir != "" {
		csvw = NewCSVWriter(e.outputDir)
		defer csvw.Close()
		recorders = append([]Recorder{csvw}, recorders...)
	}

	strat := e.state.Strategy()
	e.log.Info().Str("strategy", strat.String()).Msg("Begin.")

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("interrupted at tick %d: %w", e.state.Tick(), err)
		}
		if err := e.takeStep(recorders); err != nil {
			return nil, err
		}
		e.state.IncrementTick()
		if e.DoStop() {
			break
		}
		e.clock.Advance(strat.TimeStep())
	}

	if csvw != nil {
		if err := csvw.Close(); err != nil {
			return nil, fmt.Errorf("%w: close %s: %v", ErrIO, csvw.Path(), err)
		}
	}
	e.log.Info().Int("rows", e.rows).Msg("Done")
	return e.result(), nil
}

func (e *Engine) takeStep(recorders []Recorder) error {
	tick := e.state.Tick()
	e.log.Debug().Int("tick", tick).Msg("begin")

	if e.state.Strategy().LogDue(tick) {
		rec, err := e.CreateLogData()
		if err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		e.log.Info().Int("tick", tick).Int64("elapsed_s", e.state.ElapsedSeconds()).Msg(rec.Summary)
		for _, r := range recorders {
			if err := r.Record(rec); err != nil {
				if !errors.Is(err, ErrIO) {
					err = fmt.Errorf("%w: %v", ErrIO, err)
				}
				return fmt.Errorf("tick %d: %w", tick, err)
			}
		}
		e.rows++
		for _, o := range e.observers {
			o.ObserveRecord(rec)
		}
	}

	if err := e.state.TakeStep(); err != nil {
		return err
	}
	for _, o := range e.observers {
		o.ObserveTick(tick)
	}

	e.log.Debug().Int("tick", tick).Msg("done")
	return nil
}

// CreateLogData builds the record for the current tick without persisting it.
func (e *Engine) CreateLogData() (Record, error) {
	return buildRecord(e.state, e.logFunc)
}

// DoStop reports whether the run is complete.
func (e *Engine) DoStop() bool {
	if e.state.Tick() >= e.state.Strategy().MaxTicks() {
		e.log.Info().Int("tick", e.state.Tick()).Int("max_ticks", e.state.Strategy().MaxTicks()).Msg("Stop: tick >= max")
		return true
	}
	return false
}

func (e *Engine) result() *Result {
	res := &Result{
		Ticks:   e.state.Tick(),
		Rows:    e.rows,
		Elapsed: time.Duration(e.state.Tick()) * e.state.Strategy().TimeStep(),
		Final:   map[string]float64{},
	}
	if series, ok := e.state.KPIs().(*sim.Series); ok {
		res.Final = series.Last()
	}
	return res
}
