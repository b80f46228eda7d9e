// Package ledger maintains per-group running balances.
//
// A Ledger is the single mutable entity in the core: expenses and
// settlements are applied to it, and everything else reads snapshots.
// Positive balance means the member owes the group pool; negative means the
// member is owed. The sum of all balances is exactly zero after every
// applied operation.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/adhamsal/splitkit/internal/money"
)

var (
	ErrUnknownMember     = errors.New("member not tracked by ledger")
	ErrDuplicateMember   = errors.New("member already in ledger")
	ErrMemberHasBalance  = errors.New("member has outstanding balance")
	ErrCurrencyMismatch  = errors.New("amount currency does not match ledger currency")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrShareMismatch     = errors.New("shares do not sum to the expense total")
)

// Share is one member's portion of an applied expense.
type Share struct {
	MemberID string
	Amount   money.Money
}

// Ledger maps members to signed balances in a single currency.
//
// Mutations are serialized by an internal lock: one writer at a time per
// ledger, snapshot reads never observe a partially applied mutation.
// Ledgers of different groups are fully independent.
type Ledger struct {
	mu       sync.RWMutex
	currency string
	balances map[string]int64
}

// New creates an empty ledger for the given currency with the given
// members, all at zero balance.
func New(currency string, members []string) *Ledger {
	l := &Ledger{
		currency: currency,
		balances: make(map[string]int64, len(members)),
	}
	for _, m := range members {
		l.balances[m] = 0
	}
	return l
}

// Restore rebuilds a ledger from a persisted balance snapshot.
func Restore(currency string, balances map[string]int64) *Ledger {
	l := &Ledger{
		currency: currency,
		balances: make(map[string]int64, len(balances)),
	}
	for m, cents := range balances {
		l.balances[m] = cents
	}
	return l
}

// Currency returns the ledger's currency code.
func (l *Ledger) Currency() string {
	return l.currency
}

// AddMember starts tracking a member at zero balance.
func (l *Ledger) AddMember(memberID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.balances[memberID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMember, memberID)
	}
	l.balances[memberID] = 0
	return nil
}

// RemoveMember stops tracking a member. It fails unless the member's
// balance is exactly zero.
func (l *Ledger) RemoveMember(memberID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[memberID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMember, memberID)
	}
	if balance != 0 {
		return fmt.Errorf("%w: %s is at %s", ErrMemberHasBalance, memberID, money.FormatCents(balance))
	}
	delete(l.balances, memberID)
	return nil
}

// HasMember reports whether the member is tracked.
func (l *Ledger) HasMember(memberID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.balances[memberID]
	return ok
}

// Members returns the tracked member IDs in sorted order.
func (l *Ledger) Members() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	members := make([]string, 0, len(l.balances))
	for m := range l.balances {
		members = append(members, m)
	}
	sort.Strings(members)
	return members
}

// ApplyExpense debits the payer by the total and credits every share. All
// validation happens before any balance changes, so either the whole
// expense lands or the ledger is untouched. If the payer is also a
// participant their own share nets against the debit; the net effect across
// all members is always zero.
func (l *Ledger) ApplyExpense(payerID string, total money.Money, shares []Share) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if total.Currency != l.currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, total.Currency, l.currency)
	}
	if total.Cents <= 0 {
		return ErrNonPositiveAmount
	}
	if _, ok := l.balances[payerID]; !ok {
		return fmt.Errorf("%w: payer %s", ErrUnknownMember, payerID)
	}

	var sum int64
	for _, s := range shares {
		if s.Amount.Currency != l.currency {
			return fmt.Errorf("%w: share for %s", ErrCurrencyMismatch, s.MemberID)
		}
		if _, ok := l.balances[s.MemberID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownMember, s.MemberID)
		}
		sum += s.Amount.Cents
	}
	if sum != total.Cents {
		return fmt.Errorf("%w: %s vs %s", ErrShareMismatch,
			money.FormatCents(sum), money.FormatCents(total.Cents))
	}

	l.balances[payerID] -= total.Cents
	for _, s := range shares {
		l.balances[s.MemberID] += s.Amount.Cents
	}
	return nil
}

// ApplySettlement records a payment from payer to payee: the payer's
// balance drops by the amount, the payee's rises. The amount is
// caller-supplied and may be partial; no upper bound is enforced at this
// layer.
func (l *Ledger) ApplySettlement(payerID, payeeID string, amount money.Money) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount.Currency != l.currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, amount.Currency, l.currency)
	}
	if amount.Cents <= 0 {
		return ErrNonPositiveAmount
	}
	if _, ok := l.balances[payerID]; !ok {
		return fmt.Errorf("%w: payer %s", ErrUnknownMember, payerID)
	}
	if _, ok := l.balances[payeeID]; !ok {
		return fmt.Errorf("%w: payee %s", ErrUnknownMember, payeeID)
	}

	l.balances[payerID] -= amount.Cents
	l.balances[payeeID] += amount.Cents
	return nil
}

// Balances returns a point-in-time snapshot of all balances. The copy never
// changes under the caller, so debt simplification is unaffected by
// concurrent mutation.
func (l *Ledger) Balances() map[string]money.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make(map[string]money.Money, len(l.balances))
	for m, cents := range l.balances {
		snapshot[m] = money.New(cents, l.currency)
	}
	return snapshot
}

// Snapshot returns the raw balance cents, for persistence.
func (l *Ledger) Snapshot() map[string]int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make(map[string]int64, len(l.balances))
	for m, cents := range l.balances {
		snapshot[m] = cents
	}
	return snapshot
}

// Balance returns one member's balance.
func (l *Ledger) Balance(memberID string) (money.Money, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cents, ok := l.balances[memberID]
	if !ok {
		return money.Money{}, fmt.Errorf("%w: %s", ErrUnknownMember, memberID)
	}
	return money.New(cents, l.currency), nil
}

// IsSettled reports whether the member's balance is exactly zero.
func (l *Ledger) IsSettled(memberID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[memberID] == 0
}
