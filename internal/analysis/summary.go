package analysis

import (
	"math"
	"sort"

	"agentsim/internal/sim"
)

// SeriesSummary is a per-metric summary of a KPI series.
type SeriesSummary struct {
	Metric string  `json:"metric"`
	Count  int     `json:"count"`
	First  float64 `json:"first"`
	Last   float64 `json:"last"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	P05    float64 `json:"p05"`
	P95    float64 `json:"p95"`
}

// Summarize computes one summary per metric, sorted by metric name.
// Metrics without samples are reported with Count 0 and zero stats.
func Summarize(series *sim.Series) []SeriesSummary {
	if series == nil {
		return nil
	}
	names := series.Names()
	sort.Strings(names)

	out := make([]SeriesSummary, 0, len(names))
	for _, name := range names {
		out = append(out, ComputeSummary(name, series.Values(name)))
	}
	return out
}

func ComputeSummary(metric string, values []float64) SeriesSummary {
	s := SeriesSummary{Metric: metric, Count: len(values)}
	if len(values) == 0 {
		return s
	}
	s.First = values[0]
	s.Last = values[len(values)-1]

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		sorted = append(sorted, v)
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
	}
	sort.Float64s(sorted)
	s.Min = minv
	s.Max = maxv
	s.Mean = sum / float64(len(sorted))
	s.P05 = percentileSorted(sorted, 0.05)
	s.P95 = percentileSorted(sorted, 0.95)
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
