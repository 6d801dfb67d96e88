package sim

import (
	"sort"
)

// Reserve is the balance constraint of one currency account.
type Reserve int

const (
	// Finite accounts can never go below zero.
	Finite Reserve = iota
	// Unlimited accounts are externally backed: they are a source/sink and may go negative.
	Unlimited
)

type account struct {
	balance float64
	reserve Reserve
}

// Ledger maps currency symbols to balances.
// Currencies that were never opened read as a zero finite balance.
type Ledger struct {
	accounts map[string]*account
}

func NewLedger() *Ledger {
	return &Ledger{accounts: map[string]*account{}}
}

// Open creates (or resets) a finite-reserve account.
func (l *Ledger) Open(currency string, balance float64) {
	l.accounts[currency] = &account{balance: balance, reserve: Finite}
}

// OpenUnlimited creates (or resets) an unlimited account with a starting balance.
func (l *Ledger) OpenUnlimited(currency string, balance float64) {
	l.accounts[currency] = &account{balance: balance, reserve: Unlimited}
}

func (l *Ledger) Balance(currency string) float64 {
	if a, ok := l.accounts[currency]; ok {
		return a.balance
	}
	return 0
}

func (l *Ledger) Unlimited(currency string) bool {
	a, ok := l.accounts[currency]
	return ok && a.reserve == Unlimited
}

// CanDebit reports whether amount can be removed from the account.
func (l *Ledger) CanDebit(currency string, amount float64) bool {
	if l.Unlimited(currency) {
		return true
	}
	return amount <= l.Balance(currency)
}

// Adjust applies a signed change. A finite account that would go negative
// is left untouched and an *InsufficientFundsError is returned (with an empty Agent).
func (l *Ledger) Adjust(currency string, delta float64) error {
	if delta < 0 && !l.CanDebit(currency, -delta) {
		return &InsufficientFundsError{Currency: currency, Amount: -delta, Balance: l.Balance(currency)}
	}
	a, ok := l.accounts[currency]
	if !ok {
		a = &account{reserve: Finite}
		l.accounts[currency] = a
	}
	a.balance += delta
	return nil
}

// Currencies lists the opened currencies in sorted order.
func (l *Ledger) Currencies() []string {
	out := make([]string, 0, len(l.accounts))
	for c := range l.accounts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
