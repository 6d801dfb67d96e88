package coffeeshop

import (
	"time"

	"agentsim/internal/sim"
)

func NewKPIs(samplingFrequency time.Duration) *sim.Series {
	return sim.NewSeries(samplingFrequency, sim.Metric{Name: WalletKPI, Compute: shopUSD})
}

func shopUSD(s *sim.State) float64 {
	shop, err := s.Agent(ShopName)
	if err != nil {
		return 0
	}
	return shop.Balance(USD)
}
