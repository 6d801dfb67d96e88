package sim

import (
	"time"
)

// KPITracker samples derived metrics from the state. Track must not mutate the state.
type KPITracker interface {
	Track(s *State)
}

// Metric is one named KPI computed from the state.
type Metric struct {
	Name    string
	Compute func(s *State) float64
}

// Series is an append-only KPITracker: each Track call appends one sample per metric.
type Series struct {
	samplingFrequency time.Duration
	metrics           []Metric
	samples           map[string][]float64
}

func NewSeries(samplingFrequency time.Duration, metrics ...Metric) *Series {
	samples := make(map[string][]float64, len(metrics))
	for _, m := range metrics {
		samples[m.Name] = nil
	}
	return &Series{
		samplingFrequency: samplingFrequency,
		metrics:           metrics,
		samples:           samples,
	}
}

func (k *Series) Track(s *State) {
	for _, m := range k.metrics {
		k.samples[m.Name] = append(k.samples[m.Name], m.Compute(s))
	}
}

func (k *Series) SamplingFrequency() time.Duration { return k.samplingFrequency }

// Names returns metric names in registration order.
func (k *Series) Names() []string {
	out := make([]string, 0, len(k.metrics))
	for _, m := range k.metrics {
		out = append(out, m.Name)
	}
	return out
}

// Values returns a copy of every sample collected so far for name.
func (k *Series) Values(name string) []float64 {
	v := k.samples[name]
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// Len is the number of Track calls seen so far.
func (k *Series) Len() int {
	if len(k.metrics) == 0 {
		return 0
	}
	return len(k.samples[k.metrics[0].Name])
}

// Last returns the most recent sample of every metric that has one.
func (k *Series) Last() map[string]float64 {
	out := make(map[string]float64, len(k.metrics))
	for _, m := range k.metrics {
		if v := k.samples[m.Name]; len(v) > 0 {
			out[m.Name] = v[len(v)-1]
		}
	}
	return out
}
