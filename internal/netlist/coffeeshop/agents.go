package coffeeshop

import (
	"errors"

	"agentsim/internal/sim"
)

const (
	USD   = "USD"
	OCEAN = "OCEAN"
)

// Shop only receives payments.
type Shop struct {
	sim.Base
}

func NewShop(name string) *Shop {
	s := &Shop{Base: sim.NewBase(name)}
	s.Ledger().Open(USD, 0)
	s.Ledger().Open(OCEAN, 0)
	return s
}

func (s *Shop) Step(*sim.State) error { return nil }

// Buyer buys one coffee per tick with probability Likeness.
type Buyer struct {
	sim.Base
	Likeness float64
	Cost     float64
	Shop     string

	// Skipped counts purchases a finite reserve could not cover.
	Skipped int
}

// NewBuyer creates a buyer. A reserve <= 0 gives an externally backed USD account.
func NewBuyer(name, shop string, likeness, cost, reserve float64) *Buyer {
	b := &Buyer{
		Base:     sim.NewBase(name),
		Likeness: likeness,
		Cost:     cost,
		Shop:     shop,
	}
	if reserve > 0 {
		b.Ledger().Open(USD, reserve)
	} else {
		b.Ledger().OpenUnlimited(USD, 0)
	}
	b.Ledger().Open(OCEAN, 0)
	return b
}

func (b *Buyer) Step(s *sim.State) error {
	if s.Rand().Float64() >= b.Likeness {
		return nil
	}
	shop, err := s.Agent(b.Shop)
	if err != nil {
		return err
	}
	err = b.TransferTo(shop, USD, b.Cost)
	if errors.Is(err, sim.ErrInsufficientFunds) {
		b.Skipped++
		return nil
	}
	return err
}
