package sim

import (
	"fmt"
)

// Agent is one behavioural unit of a population.
//
// Step is called exactly once per tick, in population order. It may read any
// part of the State and call TransferTo any number of times, but must not
// change the tick or the population.
type Agent interface {
	Name() string
	Step(s *State) error
	Balance(currency string) float64
	TransferTo(to Agent, currency string, amount float64) error
	Ledger() *Ledger
}

// Base carries a name and a ledger. Concrete agents embed it and add Step.
type Base struct {
	name   string
	ledger *Ledger
}

func NewBase(name string) Base {
	return Base{name: name, ledger: NewLedger()}
}

func (b *Base) Name() string                     { return b.name }
func (b *Base) Ledger() *Ledger                  { return b.ledger }
func (b *Base) Balance(currency string) float64 { return b.ledger.Balance(currency) }

// TransferTo moves amount of currency from b to the receiving agent.
// Either both sides change or neither does.
func (b *Base) TransferTo(to Agent, currency string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%s -> %s: %w (got %g)", b.name, to.Name(), ErrNegativeAmount, amount)
	}
	if !b.ledger.CanDebit(currency, amount) {
		return &InsufficientFundsError{
			Agent:    b.name,
			Currency: currency,
			Amount:   amount,
			Balance:  b.ledger.Balance(currency),
		}
	}
	// Both calls are infallible once CanDebit passed: the debit is allowed and a credit never fails.
	_ = b.ledger.Adjust(currency, -amount)
	_ = to.Ledger().Adjust(currency, amount)
	return nil
}
