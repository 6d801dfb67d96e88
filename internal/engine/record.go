package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"agentsim/internal/sim"
	"agentsim/internal/strategy"
)

// BaseColumns start every record, in this order.
var BaseColumns = []string{"Tick", "Second", "Min", "Hour", "Day", "Month", "Year"}

// LogData is what a population contributes to a log record.
type LogData struct {
	Annotations []string
	Columns     []string
	Values      []float64
}

// LogFunc computes a population's log columns from the current state.
type LogFunc func(s *sim.State) LogData

// Record is one log event: a console summary plus one persisted row.
// Values is parallel to Columns; Values[0] is the tick.
type Record struct {
	Tick    int
	Columns []string
	Values  []float64
	Summary string
}

// Fields renders the row the way it is persisted.
func (r Record) Fields() []string {
	out := make([]string, len(r.Values))
	for i, v := range r.Values {
		if i == 0 {
			out[i] = strconv.Itoa(r.Tick)
			continue
		}
		out[i] = FormatValue(v)
	}
	return out
}

// FormatValue prints the shortest representation that reads back as the same
// float: 4 -> "4.0", 0.25 -> "0.25". Exponents below -4 or from 16 up switch to
// exponent form: 1e21 -> "1e+21", 0.00001 -> "1e-05".
func FormatValue(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	}
	e := strconv.FormatFloat(v, 'e', -1, 64)
	if exp, err := strconv.Atoi(e[strings.LastIndexByte(e, 'e')+1:]); err == nil && v != 0 && (exp < -4 || exp >= 16) {
		return e
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func buildRecord(s *sim.State, fn LogFunc) (Record, error) {
	es := float64(s.ElapsedSeconds())
	emi := es / strategy.SecondsPerMinute
	eh := es / strategy.SecondsPerHour
	ed := es / strategy.SecondsPerDay
	emo := es / strategy.SecondsPerMonth
	ey := es / strategy.SecondsPerYear

	rec := Record{
		Tick:    s.Tick(),
		Columns: append([]string(nil), BaseColumns...),
		Values:  []float64{float64(s.Tick()), es, emi, eh, ed, emo, ey},
	}
	summary := fmt.Sprintf("Tick=%d (%.1f h, %.1f d, %.1f mo, %.1f y)", s.Tick(), eh, ed, emo, ey)

	if fn != nil {
		data := fn(s)
		if len(data.Columns) != len(data.Values) {
			return Record{}, fmt.Errorf("log function returned %d columns and %d values", len(data.Columns), len(data.Values))
		}
		rec.Columns = append(rec.Columns, data.Columns...)
		rec.Values = append(rec.Values, data.Values...)
		if len(data.Annotations) > 0 {
			summary += " " + strings.Join(data.Annotations, "; ")
		}
	}
	rec.Summary = summary
	return rec, nil
}
