// Package coffeeshop is a population of coffee buyers paying a single shop.
package coffeeshop

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"agentsim/internal/config"
	"agentsim/internal/engine"
	"agentsim/internal/netlist"
	"agentsim/internal/sim"
)

const (
	Name       = "coffeeshop"
	ShopName   = "coffee_shop"
	WalletKPI  = "coffee_shop_wallet"
	buyerNameF = "coffee_buyer_%d"
)

func init() {
	netlist.Register(netlist.Netlist{
		Name:        Name,
		Description: "Buyers with a normally distributed taste for coffee pay a fixed price to one shop.",
		Params: []netlist.ParamInfo{
			{Name: "num_buyers", Type: "int", Description: "Number of buyers", Default: 100},
			{Name: "coffee_cost", Type: "float", Description: "USD paid per coffee", Default: 4.0},
			{Name: "likeness_mean", Type: "float", Description: "Mean purchase probability per tick", Default: 0.8},
			{Name: "likeness_stddev", Type: "float", Description: "Stddev of purchase probability", Default: 0.25},
			{Name: "buyer_reserve", Type: "float", Description: "Finite USD per buyer; 0 means externally backed", Default: 0.0},
		},
		DefaultStrategy: config.StrategyConfig{
			TimeStep:    "24h",
			MaxTime:     &config.MaxTimeConfig{Value: 10, Unit: "days"},
			LogInterval: "24h",
		},
		Build: Build,
	})
}

// Build creates the shop followed by num_buyers buyers.
func Build(in netlist.BuildInput) (*netlist.Simulation, error) {
	p := in.Params.Reader()
	n := p.Int("num_buyers", 100)
	cost := p.Float("coffee_cost", 4.0)
	mean := p.Float("likeness_mean", 0.8)
	stddev := p.Float("likeness_stddev", 0.25)
	reserve := p.Float("buyer_reserve", 0)
	if err := p.Err(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, netlist.Invalid("num_buyers must be >= 0, got %d", n)
	}
	if cost < 0 {
		return nil, netlist.Invalid("coffee_cost must be >= 0, got %g", cost)
	}

	state := sim.NewState(in.Strategy,
		sim.WithRand(in.Rand),
		sim.WithKPIs(NewKPIs(in.Strategy.TimeStep())),
	)
	if err := state.AddAgent(NewShop(ShopName)); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		likeness := mean + stddev*state.Rand().NormFloat64()
		if err := state.AddAgent(NewBuyer(fmt.Sprintf(buyerNameF, i), ShopName, likeness, cost, reserve)); err != nil {
			return nil, err
		}
	}
	return &netlist.Simulation{State: state, LogFunc: LogData}, nil
}

// LogData contributes the shop's USD balance to every log record.
func LogData(s *sim.State) engine.LogData {
	wallet := shopUSD(s)
	return engine.LogData{
		Annotations: []string{"Coffee Shop Wallet Balance: $" + humanize.FormatFloat("#,###.##", wallet)},
		Columns:     []string{WalletKPI},
		Values:      []float64{wallet},
	}
}
