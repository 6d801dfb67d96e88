package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agentsim/internal/engine"
)

// Metrics holds the Prometheus collectors for simulation runs.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal    *prometheus.CounterVec
	TicksTotal   *prometheus.CounterVec
	RecordsTotal *prometheus.CounterVec
	KPI          *prometheus.GaugeVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentsim_runs_total",
				Help: "Total number of simulation runs by outcome",
			},
			[]string{"netlist", "status"},
		),
		TicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentsim_ticks_total",
				Help: "Total number of simulated ticks",
			},
			[]string{"netlist"},
		),
		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentsim_log_records_total",
				Help: "Total number of log records emitted",
			},
			[]string{"netlist"},
		),
		KPI: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "agentsim_kpi",
				Help: "Most recently logged value of a netlist column",
			},
			[]string{"netlist", "column"},
		),
	}

	registry.MustRegister(m.RunsTotal, m.TicksTotal, m.RecordsTotal, m.KPI)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RunFinished counts a run outcome ("ok" or "error").
func (m *Metrics) RunFinished(netlist string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RunsTotal.WithLabelValues(netlist, status).Inc()
}

// Observer returns an engine.Observer labelled with netlist.
func (m *Metrics) Observer(netlist string) engine.Observer {
	return &runObserver{m: m, netlist: netlist}
}

type runObserver struct {
	m       *Metrics
	netlist string
}

func (o *runObserver) ObserveTick(int) {
	o.m.TicksTotal.WithLabelValues(o.netlist).Inc()
}

func (o *runObserver) ObserveRecord(rec engine.Record) {
	o.m.RecordsTotal.WithLabelValues(o.netlist).Inc()
	for i := len(engine.BaseColumns); i < len(rec.Columns) && i < len(rec.Values); i++ {
		o.m.KPI.WithLabelValues(o.netlist, rec.Columns[i]).Set(rec.Values[i])
	}
}
