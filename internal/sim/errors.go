package sim

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownAgent      = errors.New("unknown agent")
	ErrDuplicateAgent    = errors.New("duplicate agent name")
	ErrPopulationSealed  = errors.New("agent population is fixed once stepping starts")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeAmount    = errors.New("transfer amount must be >= 0")
)

// InsufficientFundsError reports a finite-reserve debit larger than the balance.
type InsufficientFundsError struct {
	Agent    string
	Currency string
	Amount   float64
	Balance  float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: %s needs %g %s, has %g", ErrInsufficientFunds, e.Agent, e.Amount, e.Currency, e.Balance)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }
