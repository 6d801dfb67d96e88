// Package exchange is a closed economy: traders with finite reserves pay each
// other random amounts, so total money is conserved while its distribution drifts.
package exchange

import (
	"errors"
	"fmt"
	"math"

	"agentsim/internal/config"
	"agentsim/internal/engine"
	"agentsim/internal/netlist"
	"agentsim/internal/sim"
)

const (
	Name     = "exchange"
	Currency = "USD"
)

func init() {
	netlist.Register(netlist.Netlist{
		Name:        Name,
		Description: "Traders with finite reserves make random payments to each other; total USD is conserved.",
		Params: []netlist.ParamInfo{
			{Name: "num_traders", Type: "int", Description: "Number of traders", Default: 20},
			{Name: "initial_balance", Type: "float", Description: "Starting USD per trader", Default: 100.0},
			{Name: "trade_prob", Type: "float", Description: "Probability a trader pays someone each tick", Default: 0.5},
			{Name: "max_payment", Type: "float", Description: "Upper bound of a single payment", Default: 20.0},
		},
		DefaultStrategy: config.StrategyConfig{
			TimeStep:    "1h",
			MaxTime:     &config.MaxTimeConfig{Value: 30, Unit: "days"},
			LogInterval: "24h",
		},
		Build: Build,
	})
}

// Trader pays a uniformly chosen other trader a uniform amount in [0, MaxPayment).
type Trader struct {
	sim.Base
	TradeProb  float64
	MaxPayment float64
	Peers      []string

	Bounced int
}

func (t *Trader) Step(s *sim.State) error {
	rng := s.Rand()
	if len(t.Peers) == 0 || rng.Float64() >= t.TradeProb {
		return nil
	}
	peer, err := s.Agent(t.Peers[int(rng.Float64()*float64(len(t.Peers)))])
	if err != nil {
		return err
	}
	err = t.TransferTo(peer, Currency, rng.Float64()*t.MaxPayment)
	if errors.Is(err, sim.ErrInsufficientFunds) {
		t.Bounced++
		return nil
	}
	return err
}

func Build(in netlist.BuildInput) (*netlist.Simulation, error) {
	p := in.Params.Reader()
	n := p.Int("num_traders", 20)
	initial := p.Float("initial_balance", 100)
	prob := p.Float("trade_prob", 0.5)
	maxPay := p.Float("max_payment", 20)
	if err := p.Err(); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, netlist.Invalid("num_traders must be >= 2, got %d", n)
	}
	if initial < 0 || maxPay < 0 {
		return nil, netlist.Invalid("initial_balance and max_payment must be >= 0")
	}

	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("trader_%d", i)
	}

	state := sim.NewState(in.Strategy,
		sim.WithRand(in.Rand),
		sim.WithKPIs(sim.NewSeries(in.Strategy.TimeStep(),
			sim.Metric{Name: "total_usd", Compute: totalUSD},
			sim.Metric{Name: "min_usd", Compute: minUSD},
			sim.Metric{Name: "max_usd", Compute: maxUSD},
		)),
	)
	for i, name := range names {
		peers := make([]string, 0, n-1)
		peers = append(peers, names[:i]...)
		peers = append(peers, names[i+1:]...)
		t := &Trader{Base: sim.NewBase(name), TradeProb: prob, MaxPayment: maxPay, Peers: peers}
		t.Ledger().Open(Currency, initial)
		if err := state.AddAgent(t); err != nil {
			return nil, err
		}
	}
	return &netlist.Simulation{State: state, LogFunc: LogData}, nil
}

func LogData(s *sim.State) engine.LogData {
	total, lo, hi := totalUSD(s), minUSD(s), maxUSD(s)
	return engine.LogData{
		Annotations: []string{fmt.Sprintf("USD total=%.2f min=%.2f max=%.2f", total, lo, hi)},
		Columns:     []string{"total_usd", "min_usd", "max_usd"},
		Values:      []float64{total, lo, hi},
	}
}

func totalUSD(s *sim.State) float64 { return s.TotalBalance(Currency) }

func minUSD(s *sim.State) float64 {
	v := math.Inf(1)
	for _, a := range s.Agents() {
		v = math.Min(v, a.Balance(Currency))
	}
	return v
}

func maxUSD(s *sim.State) float64 {
	v := math.Inf(-1)
	for _, a := range s.Agents() {
		v = math.Max(v, a.Balance(Currency))
	}
	return v
}
